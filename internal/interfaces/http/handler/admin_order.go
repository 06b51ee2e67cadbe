package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/trade"
)

// AdminOrderHandler serves back-office order management
type AdminOrderHandler struct {
	BaseHandler
	orderService *trade.OrderService
}

// NewAdminOrderHandler creates a new admin order handler
func NewAdminOrderHandler(orderService *trade.OrderService) *AdminOrderHandler {
	return &AdminOrderHandler{orderService: orderService}
}

// List godoc
// @ID           adminListOrders
// @Summary      List orders
// @Description  Paginated, newest first, with customer name and email. search matches the customer name or email.
// @Tags         admin-orders
// @Produce      json
// @Param        page      query int    false "Page number" default(1)
// @Param        page_size query int    false "Page size" default(20)
// @Param        status    query string false "Order status" Enums(PENDING, PAID, SHIPPED, DELIVERED, CANCELLED)
// @Param        search    query string false "Search term"
// @Success      200 {object} APIResponse[[]trade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/orders [get]
func (h *AdminOrderHandler) List(c *gin.Context) {
	var query trade.AdminOrderListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	page, err := h.orderService.List(c.Request.Context(), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           adminGetOrder
// @Summary      Get an order
// @Tags         admin-orders
// @Produce      json
// @Param        id path string true "Order ID" format(uuid)
// @Success      200 {object} APIResponse[trade.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/orders/{id} [get]
func (h *AdminOrderHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	order, err := h.orderService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ChangeStatus godoc
// @ID           adminChangeOrderStatus
// @Summary      Change order status
// @Description  DELIVERED and CANCELLED are terminal. Setting the current status again is a no-op.
// @Tags         admin-orders
// @Accept       json
// @Produce      json
// @Param        id      path string                  true "Order ID" format(uuid)
// @Param        request body trade.ChangeStatusInput true "New status"
// @Success      200 {object} APIResponse[trade.ChangeStatusResult]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/orders/{id} [patch]
func (h *AdminOrderHandler) ChangeStatus(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req trade.ChangeStatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.orderService.ChangeStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
