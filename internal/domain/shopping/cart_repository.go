package shopping

import (
	"context"

	"github.com/google/uuid"
)

// CartRepository defines the interface for cart persistence
type CartRepository interface {
	// FindOpenByUser loads the user's open cart with items, products and images.
	// Returns shared.ErrNotFound when the user has no open cart.
	FindOpenByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)

	// Create inserts an empty cart. Returns shared.ErrAlreadyExists when the
	// user already has an open cart.
	Create(ctx context.Context, cart *Cart) error

	// AddOrMergeItem inserts the line or atomically adds quantity to the
	// existing line for the same product. Returns ErrCartClosed when the cart
	// has been ordered.
	AddOrMergeItem(ctx context.Context, item *CartItem) error

	// UpdateItemQuantity sets the quantity of a line in the user's open cart.
	// Returns shared.ErrNotFound when the line is missing, not owned, or in an
	// ordered cart.
	UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error

	// DeleteItem removes a line from the user's open cart, with the same
	// shared.ErrNotFound rule as UpdateItemQuantity
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error

	// ClearOpenCart removes every line of the user's open cart. It reports
	// false when the user has no open cart.
	ClearOpenCart(ctx context.Context, userID uuid.UUID) (bool, error)

	// CountOpenByUser returns the number of open carts the user holds
	CountOpenByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}
