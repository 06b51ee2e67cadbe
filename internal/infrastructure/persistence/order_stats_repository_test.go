package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOrderStatsRepository(t *testing.T) {
	db := setupTestDB(t)
	stats := NewGormOrderStatsRepository(db)
	orders := NewGormOrderRepository(db)
	ctx := context.Background()

	alice := seedCustomer(t, db, "alice@example.com", "")
	bob := seedCustomer(t, db, "bob@example.com", "Bob")
	idle := seedCustomer(t, db, "idle@example.com", "Idle")
	tee := seedProduct(t, db, "tee", "shirt", "male", 100, nil)
	hat := seedProduct(t, db, "cap", "hat", "unisex", 40, nil)

	// alice: one PENDING order of 100 and one DELIVERED order of 40
	seedOpenCart(t, db, alice.ID, map[uuid.UUID]int{tee.ID: 1})
	pending := placeOrder(t, db, alice.ID, trade.PaymentMethodCOD)
	addToOpenCart(t, db, alice.ID, hat.ID, 1)
	delivered := placeOrder(t, db, alice.ID, trade.PaymentMethodOnline)
	_, err := delivered.Order.ChangeStatus(trade.OrderStatusDelivered)
	require.NoError(t, err)
	require.NoError(t, orders.UpdateStatus(ctx, delivered.Order, trade.OrderStatusPaid))

	// bob: one PAID order of 200
	seedOpenCart(t, db, bob.ID, map[uuid.UUID]int{tee.ID: 2})
	paid := placeOrder(t, db, bob.ID, trade.PaymentMethodOnline)

	backdate(t, db, "orders", pending.Order.ID, 3*time.Hour)
	backdate(t, db, "orders", delivered.Order.ID, 2*time.Hour)
	backdate(t, db, "orders", paid.Order.ID, time.Hour)

	t.Run("user stats", func(t *testing.T) {
		s, err := stats.UserStats(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), s.TotalOrders)
		assert.Equal(t, int64(1), s.PendingOrders)
		assert.Equal(t, int64(1), s.CompletedOrders)
		assert.True(t, s.TotalSpent.Equal(decimal.NewFromInt(140)), s.TotalSpent.String())
	})

	t.Run("user without orders", func(t *testing.T) {
		s, err := stats.UserStats(ctx, idle.ID)
		require.NoError(t, err)
		assert.Zero(t, s.TotalOrders)
		assert.True(t, s.TotalSpent.IsZero())
	})

	t.Run("customer summaries count all orders and sum paid revenue", func(t *testing.T) {
		summaries, err := stats.CustomerSummaries(ctx, []uuid.UUID{alice.ID, bob.ID, idle.ID})
		require.NoError(t, err)

		a := summaries[alice.ID]
		assert.Equal(t, int64(2), a.OrderCount)
		assert.True(t, a.TotalSpent.Equal(decimal.NewFromInt(40)), a.TotalSpent.String())
		require.NotNil(t, a.LastOrderDate)
		assert.WithinDuration(t, time.Now().Add(-2*time.Hour), *a.LastOrderDate, time.Minute)

		b := summaries[bob.ID]
		assert.Equal(t, int64(1), b.OrderCount)
		assert.True(t, b.TotalSpent.Equal(decimal.NewFromInt(200)))

		_, ok := summaries[idle.ID]
		assert.False(t, ok)

		empty, err := stats.CustomerSummaries(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, empty)
	})

	t.Run("dashboard", func(t *testing.T) {
		d, err := stats.Dashboard(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(3), d.TotalOrders)
		assert.Equal(t, int64(2), d.PendingOrders)
		assert.True(t, d.TotalRevenue.Equal(decimal.NewFromInt(240)), d.TotalRevenue.String())
	})

	t.Run("recent orders carry the customer", func(t *testing.T) {
		recent, err := stats.Recent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, recent, 2)
		assert.Equal(t, paid.Order.ID, recent[0].ID)
		assert.Equal(t, delivered.Order.ID, recent[1].ID)
		require.NotNil(t, recent[1].Cart)
		require.NotNil(t, recent[1].Cart.User)
		assert.Equal(t, "alice@example.com", recent[1].Cart.User.DisplayName())
	})
}
