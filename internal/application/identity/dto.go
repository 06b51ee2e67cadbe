package identity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// RegisterInput contains the input for customer self-registration
type RegisterInput struct {
	Email    string
	Password string
	Name     string
}

// LoginInput contains the input for user login
type LoginInput struct {
	Email    string
	Password string
}

// AuthResult is returned by Register and Login
type AuthResult struct {
	User    UserInfo
	Session *auth.SessionToken
}

// LogoutInput identifies the session token to revoke
type LogoutInput struct {
	TokenJTI  string
	ExpiresAt time.Time
}

// UserInfo is the public view of a user
type UserInfo struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

// ToUserInfo converts a domain user to UserInfo
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}

// CustomerListInput holds the admin customer listing query
type CustomerListInput struct {
	Page      int
	PageSize  int
	Search    string
	Role      string
	SortBy    string
	SortOrder string
}

// CustomerListItem is one row of the admin customer listing
type CustomerListItem struct {
	ID            uuid.UUID       `json:"id"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Role          string          `json:"role"`
	CreatedAt     time.Time       `json:"created_at"`
	TotalOrders   int64           `json:"total_orders"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	LastOrderDate *time.Time      `json:"last_order_date"`
}

// CustomerStats summarises a customer's order history
type CustomerStats struct {
	TotalOrders     int64           `json:"total_orders"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	PendingOrders   int64           `json:"pending_orders"`
	CompletedOrders int64           `json:"completed_orders"`
}

// ToCustomerStats converts repository stats
func ToCustomerStats(s *trade.UserOrderStats) CustomerStats {
	if s == nil {
		return CustomerStats{TotalSpent: decimal.Zero}
	}
	return CustomerStats{
		TotalOrders:     s.TotalOrders,
		TotalSpent:      s.TotalSpent,
		PendingOrders:   s.PendingOrders,
		CompletedOrders: s.CompletedOrders,
	}
}

// CustomerDetail is the admin customer detail view
type CustomerDetail struct {
	User      UserInfo
	CreatedAt time.Time
	Addresses []trade.Address
	Orders    []trade.Order
	Stats     CustomerStats
}

// UpdateCustomerInput holds the admin customer edit. Nil fields are left unchanged.
type UpdateCustomerInput struct {
	Name  *string
	Email *string
	Role  *string
}
