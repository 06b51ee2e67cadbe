package storefront

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartImage is a product image shown in the cart
type CartImage struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// CartProduct is the product summary of a cart line
type CartProduct struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	Images    []CartImage      `json:"images"`
}

// EffectivePrice is the sale price when set, otherwise the list price
func (p *CartProduct) EffectivePrice() decimal.Decimal {
	if p.SalePrice != nil {
		return *p.SalePrice
	}
	return p.Price
}

// CartItem is one line of the cart
type CartItem struct {
	ID        uuid.UUID    `json:"id"`
	ProductID uuid.UUID    `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Product   *CartProduct `json:"product"`
}

// LineTotal is the effective unit price times quantity, zero when the product is unknown
func (i CartItem) LineTotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.EffectivePrice().Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the server's view of the caller's open cart
type Cart struct {
	ID     uuid.UUID  `json:"id"`
	UserID uuid.UUID  `json:"user_id"`
	Items  []CartItem `json:"items"`
}

// CartSource is where a CartContainer reads and writes the cart
type CartSource interface {
	Fetch(ctx context.Context) (*Cart, error)
	Add(ctx context.Context, productID uuid.UUID, quantity int) error
	Update(ctx context.Context, itemID uuid.UUID, quantity int) error
	Remove(ctx context.Context, itemID uuid.UUID) error
	Clear(ctx context.Context) error
}

// HTTPCartSource is a CartSource backed by the /cart endpoints
type HTTPCartSource struct {
	client *Client
}

// NewHTTPCartSource creates a cart source using the client's session
func NewHTTPCartSource(client *Client) *HTTPCartSource {
	return &HTTPCartSource{client: client}
}

// Fetch loads the open cart, creating it server-side when missing
func (s *HTTPCartSource) Fetch(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := s.client.Do(ctx, http.MethodGet, "/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

// Add adds quantity of a product, merging into an existing line
func (s *HTTPCartSource) Add(ctx context.Context, productID uuid.UUID, quantity int) error {
	return s.client.Do(ctx, http.MethodPost, "/cart/add", map[string]any{
		"product_id": productID,
		"quantity":   quantity,
	}, nil)
}

// Update sets a line's quantity
func (s *HTTPCartSource) Update(ctx context.Context, itemID uuid.UUID, quantity int) error {
	return s.client.Do(ctx, http.MethodPut, "/cart/update", map[string]any{
		"item_id":  itemID,
		"quantity": quantity,
	}, nil)
}

// Remove deletes a line
func (s *HTTPCartSource) Remove(ctx context.Context, itemID uuid.UUID) error {
	return s.client.Do(ctx, http.MethodDelete, "/cart/remove", map[string]any{
		"item_id": itemID,
	}, nil)
}

// Clear empties the cart
func (s *HTTPCartSource) Clear(ctx context.Context) error {
	return s.client.Do(ctx, http.MethodDelete, "/cart/clear", nil, nil)
}

var _ CartSource = (*HTTPCartSource)(nil)
