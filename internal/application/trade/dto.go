package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/trade"
)

// ShippingAddressInput is the customer-supplied shipping address
type ShippingAddressInput struct {
	Street     string `json:"street" binding:"required,max=255"`
	City       string `json:"city" binding:"required,max=100"`
	State      string `json:"state" binding:"max=100"`
	PostalCode string `json:"postal_code" binding:"max=20"`
	Country    string `json:"country" binding:"max=100"`
}

func (in ShippingAddressInput) toDomain() trade.ShippingInput {
	return trade.ShippingInput{
		Street:     in.Street,
		City:       in.City,
		State:      in.State,
		PostalCode: in.PostalCode,
		Country:    in.Country,
	}
}

// PlaceOrderInput is the body of POST /orders/create
type PlaceOrderInput struct {
	PaymentMethod   string               `json:"payment_method" binding:"required,oneof=cod online" enums:"cod,online"`
	ShippingAddress ShippingAddressInput `json:"shipping_address" binding:"required"`
	Total           *decimal.Decimal     `json:"total"`
	// IdempotencyKey comes from the Idempotency-Key header
	IdempotencyKey string `json:"-"`
}

// AddressResponse is a shipping address
type AddressResponse struct {
	ID         uuid.UUID `json:"id"`
	Street     string    `json:"street"`
	City       string    `json:"city"`
	State      string    `json:"state"`
	PostalCode string    `json:"postal_code"`
	Country    string    `json:"country"`
	IsDefault  bool      `json:"is_default"`
	CreatedAt  time.Time `json:"created_at"`
}

// ToAddressResponse converts a domain address
func ToAddressResponse(a *trade.Address) AddressResponse {
	return AddressResponse{
		ID:         a.ID,
		Street:     a.Street,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
		IsDefault:  a.IsDefault,
		CreatedAt:  a.CreatedAt,
	}
}

// OrderProduct is the product summary of an order line
type OrderProduct struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	Images    []string         `json:"images"`
}

// OrderItemResponse is one line of the order's cart
type OrderItemResponse struct {
	ID        uuid.UUID     `json:"id"`
	ProductID uuid.UUID     `json:"product_id"`
	Quantity  int           `json:"quantity"`
	Product   *OrderProduct `json:"product,omitempty"`
}

// OrderCustomer identifies who placed an order
type OrderCustomer struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// OrderResponse is an order with its address, lines and customer when loaded
type OrderResponse struct {
	ID            uuid.UUID           `json:"id"`
	CartID        uuid.UUID           `json:"cart_id"`
	TotalAmount   decimal.Decimal     `json:"total_amount"`
	PaymentMethod string              `json:"payment_method"`
	Status        string              `json:"status"`
	Address       *AddressResponse    `json:"address,omitempty"`
	Items         []OrderItemResponse `json:"items"`
	Customer      *OrderCustomer      `json:"customer,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// ToOrderResponse converts a domain order
func ToOrderResponse(o *trade.Order) OrderResponse {
	resp := OrderResponse{
		ID:            o.ID,
		CartID:        o.CartID,
		TotalAmount:   o.TotalAmount,
		PaymentMethod: string(o.PaymentMethod),
		Status:        string(o.Status),
		Items:         []OrderItemResponse{},
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.Address != nil {
		addr := ToAddressResponse(o.Address)
		resp.Address = &addr
	}
	if o.Cart != nil {
		resp.Items = make([]OrderItemResponse, len(o.Cart.Items))
		for i, item := range o.Cart.Items {
			line := OrderItemResponse{ID: item.ID, ProductID: item.ProductID, Quantity: item.Quantity}
			if p := item.Product; p != nil {
				line.Product = &OrderProduct{
					ID:        p.ID,
					Name:      p.Name,
					Price:     p.Price,
					SalePrice: p.SalePrice,
					Images:    p.ImageURLs(),
				}
			}
			resp.Items[i] = line
		}
		if u := o.Cart.User; u != nil {
			resp.Customer = &OrderCustomer{ID: u.ID, Name: u.Name, Email: u.Email}
		}
	}
	return resp
}

// ToOrderResponses converts a slice of domain orders
func ToOrderResponses(orders []trade.Order) []OrderResponse {
	result := make([]OrderResponse, len(orders))
	for i := range orders {
		result[i] = ToOrderResponse(&orders[i])
	}
	return result
}

// PlaceOrderResult is returned by a committed checkout
type PlaceOrderResult struct {
	OrderID   uuid.UUID       `json:"order_id"`
	Order     OrderResponse   `json:"order"`
	Address   AddressResponse `json:"address"`
	NewCartID uuid.UUID       `json:"new_cart_id"`
}

// AdminOrderListQuery holds the admin order listing query
type AdminOrderListQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	Search   string `form:"search"`
}

// ChangeStatusInput is the body of PATCH /admin/orders/{id}
type ChangeStatusInput struct {
	Status string `json:"status" binding:"required,max=20"`
}

// ChangeStatusResult reports the outcome of a status change
type ChangeStatusResult struct {
	Order   OrderResponse `json:"order"`
	Changed bool          `json:"changed"`
}
