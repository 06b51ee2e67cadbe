package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/shopping"
)

// CartHandler serves the caller's open cart
type CartHandler struct {
	BaseHandler
	cartService *shopping.CartService
}

// NewCartHandler creates a new cart handler
func NewCartHandler(cartService *shopping.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// GetCart godoc
// @ID           getCart
// @Summary      Get the open cart
// @Description  Returns the caller's open cart, creating an empty one on first use
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[shopping.CartResponse]
// @Failure      401 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /cart [get]
func (h *CartHandler) GetCart(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), sessionUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
// @ID           addCartItem
// @Summary      Add a product to the cart
// @Description  Merges into an existing line for the same product
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body shopping.AddItemInput true "Product and quantity"
// @Success      200 {object} APIResponse[dto.MessageData]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /cart/add [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req shopping.AddItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.cartService.AddItem(c.Request.Context(), sessionUserID(c), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Item added to cart")
}

// UpdateItem godoc
// @ID           updateCartItem
// @Summary      Set a cart line quantity
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body shopping.UpdateItemInput true "Item and quantity"
// @Success      200 {object} APIResponse[dto.MessageData]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /cart/update [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req shopping.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.cartService.UpdateItemQuantity(c.Request.Context(), sessionUserID(c), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Cart updated")
}

// RemoveItem godoc
// @ID           removeCartItem
// @Summary      Remove a cart line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body shopping.RemoveItemInput true "Item to remove"
// @Success      200 {object} APIResponse[dto.MessageData]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /cart/remove [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req shopping.RemoveItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.cartService.RemoveItem(c.Request.Context(), sessionUserID(c), req.ItemID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Item removed from cart")
}

// Clear godoc
// @ID           clearCart
// @Summary      Empty the cart
// @Description  Removes every line of the open cart; a no-op without one
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[dto.MessageData]
// @Failure      401 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /cart/clear [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), sessionUserID(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Cart cleared")
}
