package shopping

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shopping"
)

// AddItemInput is the body of POST /cart/add
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1,max=999"`
}

// UpdateItemInput is the body of PUT /cart/update
type UpdateItemInput struct {
	ItemID   uuid.UUID `json:"item_id" binding:"required"`
	Quantity int       `json:"quantity" binding:"required,min=1,max=999"`
}

// RemoveItemInput is the body of DELETE /cart/remove
type RemoveItemInput struct {
	ItemID uuid.UUID `json:"item_id" binding:"required"`
}

// CartImage is an image of a product in the cart
type CartImage struct {
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// CartProduct is the product summary embedded in a cart line
type CartProduct struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Price     decimal.Decimal  `json:"price"`
	SalePrice *decimal.Decimal `json:"sale_price"`
	Images    []CartImage      `json:"images"`
}

// CartItemResponse is one cart line
type CartItemResponse struct {
	ID        uuid.UUID    `json:"id"`
	ProductID uuid.UUID    `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Product   *CartProduct `json:"product,omitempty"`
}

// CartResponse is the open cart with derived totals
type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	UserID     uuid.UUID          `json:"user_id"`
	Items      []CartItemResponse `json:"items"`
	TotalItems int                `json:"total_items"`
	Subtotal   decimal.Decimal    `json:"subtotal"`
}

// ToCartResponse converts a domain cart
func ToCartResponse(cart *shopping.Cart) CartResponse {
	items := make([]CartItemResponse, len(cart.Items))
	for i := range cart.Items {
		items[i] = toCartItemResponse(&cart.Items[i])
	}
	return CartResponse{
		ID:         cart.ID,
		UserID:     cart.UserID,
		Items:      items,
		TotalItems: cart.ItemCount(),
		Subtotal:   cart.Subtotal(),
	}
}

func toCartItemResponse(item *shopping.CartItem) CartItemResponse {
	resp := CartItemResponse{
		ID:        item.ID,
		ProductID: item.ProductID,
		Quantity:  item.Quantity,
	}
	if p := item.Product; p != nil {
		images := make([]CartImage, len(p.Images))
		for i, img := range p.Images {
			images[i] = CartImage{URL: img.URL, Alt: img.Alt}
		}
		resp.Product = &CartProduct{
			ID:        p.ID,
			Name:      p.Name,
			Price:     p.Price,
			SalePrice: p.SalePrice,
			Images:    images,
		}
	}
	return resp
}
