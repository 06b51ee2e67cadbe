package persistence

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/trade"
	"gorm.io/gorm"
)

var (
	pendingStatuses   = []trade.OrderStatus{trade.OrderStatusPending, trade.OrderStatusPaid, trade.OrderStatusShipped}
	revenueStatuses   = []trade.OrderStatus{trade.OrderStatusPaid, trade.OrderStatusDelivered}
	dashboardPending  = []trade.OrderStatus{trade.OrderStatusPending, trade.OrderStatusPaid}
	completedStatuses = []trade.OrderStatus{trade.OrderStatusDelivered}
)

// GormOrderStatsRepository implements OrderStatsRepository using GORM aggregates
type GormOrderStatsRepository struct {
	db *gorm.DB
}

// NewGormOrderStatsRepository creates a new GormOrderStatsRepository
func NewGormOrderStatsRepository(db *gorm.DB) *GormOrderStatsRepository {
	return &GormOrderStatsRepository{db: db}
}

type userStatsRow struct {
	TotalOrders     int64
	PendingOrders   int64
	CompletedOrders int64
	TotalSpent      decimal.Decimal
}

// UserStats aggregates one customer's orders
func (r *GormOrderStatsRepository) UserStats(ctx context.Context, userID uuid.UUID) (*trade.UserOrderStats, error) {
	var row userStatsRow
	if err := r.db.WithContext(ctx).
		Table("orders").
		Select(
			"COUNT(*) AS total_orders, "+
				"COALESCE(SUM(CASE WHEN orders.status IN ? THEN 1 ELSE 0 END), 0) AS pending_orders, "+
				"COALESCE(SUM(CASE WHEN orders.status IN ? THEN 1 ELSE 0 END), 0) AS completed_orders, "+
				"COALESCE(SUM(orders.total_amount), 0) AS total_spent",
			pendingStatuses, completedStatuses,
		).
		Joins("JOIN carts ON carts.id = orders.cart_id").
		Where("carts.user_id = ?", userID).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return &trade.UserOrderStats{
		TotalOrders:     row.TotalOrders,
		PendingOrders:   row.PendingOrders,
		CompletedOrders: row.CompletedOrders,
		TotalSpent:      row.TotalSpent,
	}, nil
}

type customerOrderRow struct {
	UserID      uuid.UUID
	Status      trade.OrderStatus
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// CustomerSummaries folds the orders of the given users into per-user summaries.
// Rows are aggregated in Go so the newest order date keeps its column type on every driver.
func (r *GormOrderStatsRepository) CustomerSummaries(ctx context.Context, userIDs []uuid.UUID) (map[uuid.UUID]trade.CustomerOrderSummary, error) {
	summaries := make(map[uuid.UUID]trade.CustomerOrderSummary, len(userIDs))
	if len(userIDs) == 0 {
		return summaries, nil
	}

	var rows []customerOrderRow
	if err := r.db.WithContext(ctx).
		Table("orders").
		Select("carts.user_id, orders.status, orders.total_amount, orders.created_at").
		Joins("JOIN carts ON carts.id = orders.cart_id").
		Where("carts.user_id IN ?", userIDs).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	for _, row := range rows {
		s := summaries[row.UserID]
		s.UserID = row.UserID
		s.OrderCount++
		if slices.Contains(revenueStatuses, row.Status) {
			s.TotalSpent = s.TotalSpent.Add(row.TotalAmount)
		}
		if s.LastOrderDate == nil || row.CreatedAt.After(*s.LastOrderDate) {
			created := row.CreatedAt
			s.LastOrderDate = &created
		}
		summaries[row.UserID] = s
	}
	return summaries, nil
}

type dashboardRow struct {
	TotalOrders   int64
	PendingOrders int64
	TotalRevenue  decimal.Decimal
}

// Dashboard computes store-wide counters
func (r *GormOrderStatsRepository) Dashboard(ctx context.Context) (*trade.DashboardStats, error) {
	var row dashboardRow
	if err := r.db.WithContext(ctx).
		Table("orders").
		Select(
			"COUNT(*) AS total_orders, "+
				"COALESCE(SUM(CASE WHEN status IN ? THEN 1 ELSE 0 END), 0) AS pending_orders, "+
				"COALESCE(SUM(CASE WHEN status IN ? THEN total_amount ELSE 0 END), 0) AS total_revenue",
			dashboardPending, revenueStatuses,
		).
		Scan(&row).Error; err != nil {
		return nil, err
	}
	return &trade.DashboardStats{
		TotalOrders:   row.TotalOrders,
		TotalRevenue:  row.TotalRevenue,
		PendingOrders: row.PendingOrders,
	}, nil
}

// Recent returns the newest orders with customer loaded
func (r *GormOrderStatsRepository) Recent(ctx context.Context, limit int) ([]trade.Order, error) {
	if limit < 1 {
		limit = 5
	}
	var orders []trade.Order
	if err := r.db.WithContext(ctx).
		Preload("Cart.User").
		Order("created_at DESC").
		Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Ensure GormOrderStatsRepository implements OrderStatsRepository
var _ trade.OrderStatsRepository = (*GormOrderStatsRepository)(nil)
