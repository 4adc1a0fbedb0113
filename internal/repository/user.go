package repository

import (
	"context"

	"docvault/internal/model"
)

// UserRepository defines data access for identities.
type UserRepository interface {
	// Create inserts a new identity. A taken username or email returns ErrDuplicate.
	Create(ctx context.Context, u *model.User) error

	// FindByID returns an identity by ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns an identity by its normalized email, or ErrNotFound.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ExistsByUsernameOrEmail reports whether either value is already registered.
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
}
