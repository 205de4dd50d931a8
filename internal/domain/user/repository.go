package user

import "context"

// Repository defines the interface for user data access
type Repository interface {
	// Create creates a new user. Implementations must reject duplicate emails.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)

	// GetByEmail retrieves a user by synthetic email
	GetByEmail(ctx context.Context, email string) (*User, error)
}
