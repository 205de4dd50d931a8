package user

import "context"

// Service defines the interface for account operations
type Service interface {
	// Register normalizes rawUsername and creates an account for it
	Register(ctx context.Context, rawUsername, password string) (*User, error)

	// Authenticate verifies the password of the account behind rawUsername
	Authenticate(ctx context.Context, rawUsername, password string) (*User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id string) (*User, error)
}
