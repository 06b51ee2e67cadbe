package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/identity"
)

// CustomerHandler serves back-office customer management
type CustomerHandler struct {
	BaseHandler
	customerService *identity.CustomerService
}

// NewCustomerHandler creates a new customer handler
func NewCustomerHandler(customerService *identity.CustomerService) *CustomerHandler {
	return &CustomerHandler{customerService: customerService}
}

// List godoc
// @ID           adminListCustomers
// @Summary      List customers
// @Description  Paginated, with order count, total spent and last order date per customer
// @Tags         admin-customers
// @Produce      json
// @Param        page       query int    false "Page number" default(1)
// @Param        limit      query int    false "Page size" default(20)
// @Param        search     query string false "Matches name or email"
// @Param        role       query string false "Role filter" Enums(ADMIN, CUSTOMER)
// @Param        sort_by    query string false "Sort field" Enums(created_at, name, email)
// @Param        sort_order query string false "Sort direction" Enums(asc, desc)
// @Success      200 {object} APIResponse[[]identity.CustomerListItem]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/customers [get]
func (h *CustomerHandler) List(c *gin.Context) {
	var req CustomerListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	page, err := h.customerService.List(c.Request.Context(), identity.CustomerListInput{
		Page:      req.Page,
		PageSize:  req.Limit,
		Search:    req.Search,
		Role:      req.Role,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get godoc
// @ID           adminGetCustomer
// @Summary      Get a customer
// @Description  Includes addresses, the ten most recent orders and order stats
// @Tags         admin-customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[CustomerDetailResponse]
// @Failure      404 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/customers/{id} [get]
func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	detail, err := h.customerService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCustomerDetailResponse(detail))
}

// Update godoc
// @ID           adminUpdateCustomer
// @Summary      Update a customer
// @Description  A role change revokes the customer's active sessions
// @Tags         admin-customers
// @Accept       json
// @Produce      json
// @Param        id      path string                true "Customer ID" format(uuid)
// @Param        request body UpdateCustomerRequest true "Fields to change"
// @Success      200 {object} APIResponse[identity.UserInfo]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/customers/{id} [put]
func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	user, err := h.customerService.Update(c.Request.Context(), id, identity.UpdateCustomerInput{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Delete godoc
// @ID           adminDeleteCustomer
// @Summary      Delete a customer
// @Description  Refused with 409 when the customer has placed orders
// @Tags         admin-customers
// @Produce      json
// @Param        id path string true "Customer ID" format(uuid)
// @Success      200 {object} APIResponse[dto.MessageData]
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/customers/{id} [delete]
func (h *CustomerHandler) Delete(c *gin.Context) {
	id, ok := h.parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.customerService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Customer deleted")
}
