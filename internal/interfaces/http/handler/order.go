package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/trade"
)

// IdempotencyKeyHeader de-duplicates checkout retries
const IdempotencyKeyHeader = "Idempotency-Key"

// OrderHandler serves checkout and the customer's own orders
type OrderHandler struct {
	BaseHandler
	checkoutService *trade.CheckoutService
	orderService    *trade.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(checkoutService *trade.CheckoutService, orderService *trade.OrderService) *OrderHandler {
	return &OrderHandler{
		checkoutService: checkoutService,
		orderService:    orderService,
	}
}

// Create godoc
// @ID           createOrder
// @Summary      Place an order
// @Description  Converts the open cart into an order in one transaction and opens a fresh cart.
// @Description  payment_method "online" marks the order PAID; anything else is cash on delivery and stays PENDING.
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        Idempotency-Key header string false "Replays within the TTL are rejected"
// @Param        request body trade.PlaceOrderInput true "Checkout details"
// @Success      200 {object} APIResponse[trade.PlaceOrderResult]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /orders/create [post]
func (h *OrderHandler) Create(c *gin.Context) {
	var req trade.PlaceOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	req.IdempotencyKey = c.GetHeader(IdempotencyKeyHeader)

	result, err := h.checkoutService.PlaceOrder(c.Request.Context(), sessionUserID(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Get godoc
// @ID           getOrder
// @Summary      Get one of the caller's orders
// @Description  Includes the shipping address and the ordered lines; other users' orders are reported as missing
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[trade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /orders/{id} [get]
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.GetForUser(c.Request.Context(), sessionUserID(c), orderID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}
