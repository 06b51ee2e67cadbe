package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountStatsResponse summarizes the caller's order history
type AccountStatsResponse struct {
	TotalOrders     int64           `json:"total_orders"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	PendingOrders   int64           `json:"pending_orders"`
	CompletedOrders int64           `json:"completed_orders"`
}

// AccountOrdersQuery pages through the caller's orders
type AccountOrdersQuery struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// RecentOrder is a dashboard row
type RecentOrder struct {
	ID           uuid.UUID       `json:"id"`
	CustomerName string          `json:"customer_name"`
	Total        decimal.Decimal `json:"total"`
	Status       string          `json:"status"`
	CreatedAt    time.Time       `json:"created_at"`
}

// DashboardResponse holds the admin dashboard counters
type DashboardResponse struct {
	TotalOrders    int64           `json:"total_orders"`
	TotalRevenue   decimal.Decimal `json:"total_revenue"`
	TotalProducts  int64           `json:"total_products"`
	TotalCustomers int64           `json:"total_customers"`
	PendingOrders  int64           `json:"pending_orders"`
	RecentOrders   []RecentOrder   `json:"recent_orders"`
}
