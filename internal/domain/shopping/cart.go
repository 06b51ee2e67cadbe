package shopping

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
)

// Cart errors
var (
	ErrCartItemNotFound = shared.NewDomainError("NOT_FOUND", "Cart item not found")
	ErrCartClosed       = shared.NewDomainError("CART_CLOSED", "Cart has already been ordered")
	ErrInvalidQuantity  = shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
)

// Cart is a user's basket. A cart with no order is the user's open cart;
// once an order is attached the cart is closed for good.
type Cart struct {
	shared.BaseAggregateRoot
	UserID  uuid.UUID      `gorm:"type:uuid;not null;index"`
	OrderID *uuid.UUID     `gorm:"type:uuid;uniqueIndex"`
	Items   []CartItem     `gorm:"foreignKey:CartID"`
	User    *identity.User `gorm:"foreignKey:UserID"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// CartItem is one product line in a cart
type CartItem struct {
	shared.BaseEntity
	CartID    uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product,priority:1"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;uniqueIndex:idx_cart_items_cart_product,priority:2;index"`
	Quantity  int              `gorm:"not null"`
	Product   *catalog.Product `gorm:"foreignKey:ProductID"`
}

// TableName returns the table name for GORM
func (CartItem) TableName() string {
	return "cart_items"
}

// NewCart creates an empty open cart for the user
func NewCart(userID uuid.UUID) *Cart {
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Items:             make([]CartItem, 0),
	}
}

// IsOpen reports whether no order has been attached yet
func (c *Cart) IsOpen() bool {
	return c.OrderID == nil
}

// IsEmpty reports whether the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddItem merges quantity into an existing line for the product or appends a new line.
// It returns the resulting line.
func (c *Cart) AddItem(productID uuid.UUID, quantity int) (*CartItem, error) {
	if !c.IsOpen() {
		return nil, ErrCartClosed
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	if existing := c.FindItemByProduct(productID); existing != nil {
		existing.Quantity += quantity
		existing.Touch()
		return existing, nil
	}
	item := CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     c.ID,
		ProductID:  productID,
		Quantity:   quantity,
	}
	c.Items = append(c.Items, item)
	return &c.Items[len(c.Items)-1], nil
}

// SetItemQuantity sets a line's quantity verbatim
func (c *Cart) SetItemQuantity(itemID uuid.UUID, quantity int) error {
	if !c.IsOpen() {
		return ErrCartClosed
	}
	item := c.FindItem(itemID)
	if item == nil {
		return ErrCartItemNotFound
	}
	item.Quantity = quantity
	item.Touch()
	return nil
}

// RemoveItem drops a line from the cart
func (c *Cart) RemoveItem(itemID uuid.UUID) error {
	if !c.IsOpen() {
		return ErrCartClosed
	}
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return nil
		}
	}
	return ErrCartItemNotFound
}

// FindItem returns the line with the given id, or nil
func (c *Cart) FindItem(itemID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// FindItemByProduct returns the line holding the product, or nil
func (c *Cart) FindItemByProduct(productID uuid.UUID) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// ItemCount returns the sum of line quantities
func (c *Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Subtotal sums effective price times quantity over lines whose product is loaded
func (c *Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// LineTotal returns effective price times quantity, or zero when the product is not loaded
func (i *CartItem) LineTotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}
