package storefront

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartContainer holds the local copy of the open cart. Every mutation goes
// to the source first and is followed by a full Refresh, whether or not the
// mutation succeeded.
type CartContainer struct {
	source CartSource

	mu     sync.RWMutex
	cart   *Cart
	loaded bool
}

// NewCartContainer creates an empty container over source
func NewCartContainer(source CartSource) *CartContainer {
	return &CartContainer{source: source}
}

// Refresh replaces the snapshot from the source. On failure the previous
// snapshot is kept.
func (c *CartContainer) Refresh(ctx context.Context) error {
	cart, err := c.source.Fetch(ctx)
	if err != nil {
		return err
	}
	c.mu.Lock()
	c.cart = cart
	c.loaded = true
	c.mu.Unlock()
	return nil
}

// Add adds quantity of a product
func (c *CartContainer) Add(ctx context.Context, productID uuid.UUID, quantity int) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.source.Add(ctx, productID, quantity)
	})
}

// SetQuantity sets a line's quantity. Zero or less removes the line.
func (c *CartContainer) SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return c.Remove(ctx, itemID)
	}
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.source.Update(ctx, itemID, quantity)
	})
}

// Remove deletes a line
func (c *CartContainer) Remove(ctx context.Context, itemID uuid.UUID) error {
	return c.mutate(ctx, func(ctx context.Context) error {
		return c.source.Remove(ctx, itemID)
	})
}

// Clear empties the cart
func (c *CartContainer) Clear(ctx context.Context) error {
	return c.mutate(ctx, c.source.Clear)
}

// Reset drops the snapshot without calling the source, e.g. after logout
func (c *CartContainer) Reset() {
	c.mu.Lock()
	c.cart = nil
	c.loaded = false
	c.mu.Unlock()
}

// Loaded reports whether a snapshot has been fetched since the last Reset
func (c *CartContainer) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// CartID returns the open cart's id, or uuid.Nil before the first Refresh
func (c *CartContainer) CartID() uuid.UUID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cart == nil {
		return uuid.Nil
	}
	return c.cart.ID
}

// Items returns a copy of the snapshot's lines
func (c *CartContainer) Items() []CartItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cart == nil {
		return nil
	}
	items := make([]CartItem, len(c.cart.Items))
	copy(items, c.cart.Items)
	return items
}

// TotalItems is the number of units across all lines
func (c *CartContainer) TotalItems() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.cart == nil {
		return 0
	}
	total := 0
	for _, item := range c.cart.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice sums effective price times quantity over all lines
func (c *CartContainer) TotalPrice() decimal.Decimal {
	c.mu.RLock()
	defer c.mu.RUnlock()
	total := decimal.Zero
	if c.cart == nil {
		return total
	}
	for _, item := range c.cart.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// mutate runs op and refreshes unconditionally. The op error wins over the refresh error.
func (c *CartContainer) mutate(ctx context.Context, op func(context.Context) error) error {
	opErr := op(ctx)
	refreshErr := c.Refresh(ctx)
	if opErr != nil {
		return opErr
	}
	return refreshErr
}
