package trade

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
)

// Order errors
var (
	ErrOrderNotFound         = shared.NewDomainError("NOT_FOUND", "Order not found")
	ErrEmptyCart             = shared.NewDomainError("EMPTY_CART", "Cart is empty")
	ErrOrderCreationFailed   = shared.NewDomainError("ORDER_CREATION_FAILED", "Failed to create order")
	ErrCartAlreadyCheckedOut = shared.NewDomainError("CART_ALREADY_CHECKED_OUT", "Cart has already been checked out")
	ErrTotalMismatch         = shared.NewDomainError("TOTAL_MISMATCH", "Submitted total does not match the cart total")
	ErrDuplicateRequest      = shared.NewDomainError("DUPLICATE_REQUEST", "This checkout request has already been processed")
	ErrInvalidStatus         = shared.NewDomainError("INVALID_STATUS", "Invalid status")
	ErrInvalidPaymentMethod  = shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be cod or online")
)

// OrderStatus represents the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusPaid      OrderStatus = "PAID"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// AllOrderStatuses lists every status in lifecycle order
var AllOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusPaid,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusPaid, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transition is allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

// CanTransitionTo checks if the status can move to the target status
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	if !target.IsValid() || s == target {
		return false
	}
	return s.IsValid() && !s.IsTerminal()
}

// ParseOrderStatus parses an admin-supplied status, case-insensitively
func ParseOrderStatus(v string) (OrderStatus, error) {
	s := OrderStatus(strings.ToUpper(strings.TrimSpace(v)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

// PaymentMethod is how the customer pays
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "cod"
	PaymentMethodOnline PaymentMethod = "online"
)

// ParsePaymentMethod accepts "cod" or "online" in any case
func ParsePaymentMethod(v string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(v)))
	if !m.IsValid() {
		return "", ErrInvalidPaymentMethod
	}
	return m, nil
}

// IsValid checks if the method is one the shop accepts
func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodOnline
}

// InitialStatus returns the status a new order starts in
func (m PaymentMethod) InitialStatus() OrderStatus {
	if m == PaymentMethodOnline {
		return OrderStatusPaid
	}
	return OrderStatusPending
}

// Order is a placed purchase. It owns exactly one closed cart.
type Order struct {
	shared.BaseAggregateRoot
	CartID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex"`
	AddressID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	TotalAmount   decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null"`
	Status        OrderStatus     `gorm:"type:varchar(20);not null;index"`
	Address       *Address        `gorm:"foreignKey:AddressID"`
	Cart          *shopping.Cart  `gorm:"foreignKey:CartID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an order for an open, non-empty cart
func NewOrder(cart *shopping.Cart, address *Address, method PaymentMethod, total decimal.Decimal) (*Order, error) {
	if cart == nil || cart.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if !cart.IsOpen() {
		return nil, ErrCartAlreadyCheckedOut
	}
	if address == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "Shipping address is required")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Total amount cannot be negative")
	}
	if !method.IsValid() {
		return nil, ErrInvalidPaymentMethod
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CartID:            cart.ID,
		AddressID:         address.ID,
		TotalAmount:       total.Round(2),
		PaymentMethod:     method,
		Status:            method.InitialStatus(),
		Address:           address,
	}
	order.AddDomainEvent(NewOrderPlacedEvent(order, cart.UserID))
	return order, nil
}

// ChangeStatus moves the order to the target status.
// Setting the current status again is a no-op and reports changed=false.
func (o *Order) ChangeStatus(target OrderStatus) (bool, error) {
	if !target.IsValid() {
		return false, ErrInvalidStatus
	}
	if o.Status == target {
		return false, nil
	}
	if !o.Status.CanTransitionTo(target) {
		return false, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change order status from %s to %s", o.Status, target))
	}
	from := o.Status
	o.Status = target
	o.Touch()
	o.AddDomainEvent(NewOrderStatusChangedEvent(o, from))
	return true, nil
}

// ItemCount returns the number of units in the order's cart, when loaded
func (o *Order) ItemCount() int {
	if o.Cart == nil {
		return 0
	}
	return o.Cart.ItemCount()
}
