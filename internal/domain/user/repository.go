package user

import "context"

// Repository defines the interface for user persistence operations
type Repository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*User, error)

	// Update updates an existing user
	Update(ctx context.Context, user *User) error
}
