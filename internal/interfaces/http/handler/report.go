package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/report"
)

// ReportHandler serves account and dashboard read models
type ReportHandler struct {
	BaseHandler
	reportService *report.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService *report.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// AccountStats godoc
// @ID           getAccountStats
// @Summary      Get the caller's order stats
// @Tags         account
// @Produce      json
// @Success      200 {object} APIResponse[report.AccountStatsResponse]
// @Failure      401 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /account/stats [get]
func (h *ReportHandler) AccountStats(c *gin.Context) {
	stats, err := h.reportService.AccountStats(c.Request.Context(), sessionUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// AccountOrders godoc
// @ID           listAccountOrders
// @Summary      List the caller's orders
// @Description  Newest first, with shipping address and items
// @Tags         account
// @Produce      json
// @Param        limit  query int false "Page size" default(10)
// @Param        offset query int false "Rows to skip" default(0)
// @Success      200 {object} APIResponse[[]trade.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /account/orders [get]
func (h *ReportHandler) AccountOrders(c *gin.Context) {
	var query report.AccountOrdersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BindError(c, err)
		return
	}
	orders, err := h.reportService.AccountOrders(c.Request.Context(), sessionUserID(c), query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

// Dashboard godoc
// @ID           getAdminDashboard
// @Summary      Get dashboard counters
// @Tags         admin-dashboard
// @Produce      json
// @Success      200 {object} APIResponse[report.DashboardResponse]
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse
// @Security     SessionCookie
// @Router       /admin/dashboard [get]
func (h *ReportHandler) Dashboard(c *gin.Context) {
	dashboard, err := h.reportService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}
