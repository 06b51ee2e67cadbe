package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
)

// OrderBuilder turns the locked open cart into the address and order to insert.
// Returning an error aborts the placement with nothing written.
type OrderBuilder func(cart *shopping.Cart) (*Address, *Order, error)

// Placement is the result of a committed checkout
type Placement struct {
	Order     *Order
	Address   *Address
	NewCartID uuid.UUID
}

// OrderRepository defines the interface for order persistence
type OrderRepository interface {
	// Place runs checkout atomically: load the open cart, build the order,
	// insert address and order, attach the order to the cart only if the cart
	// is still open, then open a fresh cart. ErrCartAlreadyCheckedOut is
	// returned when another placement attached the cart first.
	Place(ctx context.Context, userID uuid.UUID, build OrderBuilder) (*Placement, error)

	// FindByID loads an order with address, cart, items, products and customer
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByIDForUser loads an order only if its cart belongs to the user
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*Order, error)

	// FindByUser lists the user's orders newest first
	FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Order, error)

	// FindAll returns one admin page. Supported filter keys: "status".
	// Search matches the customer's name or email.
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)

	// UpdateStatus persists a status change only if the stored status still equals from.
	// Returns shared.ErrConcurrencyConflict otherwise.
	UpdateStatus(ctx context.Context, order *Order, from OrderStatus) error

	// CountByUser returns the number of orders the user has placed
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// UserOrderStats aggregates a customer's order history
type UserOrderStats struct {
	TotalOrders     int64
	PendingOrders   int64
	CompletedOrders int64
	TotalSpent      decimal.Decimal
}

// CustomerOrderSummary aggregates the paid orders of one customer for admin listings
type CustomerOrderSummary struct {
	UserID        uuid.UUID
	OrderCount    int64
	TotalSpent    decimal.Decimal
	LastOrderDate *time.Time
}

// DashboardStats holds store-wide counters
type DashboardStats struct {
	TotalOrders   int64
	TotalRevenue  decimal.Decimal
	PendingOrders int64
}

// OrderStatsRepository answers aggregate queries over orders
type OrderStatsRepository interface {
	// UserStats counts all, pending (PENDING, PAID, SHIPPED) and completed (DELIVERED)
	// orders and sums every order's total
	UserStats(ctx context.Context, userID uuid.UUID) (*UserOrderStats, error)

	// CustomerSummaries sums PAID and DELIVERED orders per user, with the
	// newest order date across all statuses
	CustomerSummaries(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]CustomerOrderSummary, error)

	// Dashboard counts all orders, sums PAID and DELIVERED revenue and counts PENDING and PAID orders
	Dashboard(ctx context.Context) (*DashboardStats, error)

	// Recent returns the newest orders with customer loaded
	Recent(ctx context.Context, limit int) ([]Order, error)
}

// AddressRepository reads shipping addresses. Addresses are only written by Place.
type AddressRepository interface {
	// FindByUser lists the user's addresses newest first
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Address, error)
}
