package chat

import "context"

// Repository defines the interface for conversation turn storage
type Repository interface {
	// Create appends a turn, assigning ID and CreatedAt when unset
	Create(ctx context.Context, turn *Turn) error

	// ListRecent returns at most limit turns of the user, newest first
	ListRecent(ctx context.Context, userID string, limit int) ([]*Turn, error)
}
