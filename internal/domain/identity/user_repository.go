package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// ExistsByEmail checks if an email is used by any user other than excludeID.
	// Pass uuid.Nil to check all users.
	ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)

	// FindAll returns one page of users
	FindAll(ctx context.Context, filter UserFilter) ([]User, int64, error)

	// CountByRole returns the number of users holding the role
	CountByRole(ctx context.Context, role Role) (int64, error)

	// DeleteWithDependents removes the user's cart items, carts, addresses and
	// the user itself, in that order, inside one transaction
	DeleteWithDependents(ctx context.Context, id uuid.UUID) error
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	// Search keyword matched against name or email
	Keyword string

	// Role restricts results to one role; empty means all
	Role Role

	// SortBy is one of created_at, name, email
	SortBy string

	// SortOrder is asc or desc
	SortOrder string

	Page     int
	PageSize int
}
