package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/application/report"
	"github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportHandler_Account(t *testing.T) {
	env := newTestEnv(t)
	h := NewReportHandler(env.reportService)
	router := env.customerRouter(func(rg *gin.RouterGroup) {
		rg.GET("/account/stats", h.AccountStats)
		rg.GET("/account/orders", h.AccountOrders)
	})

	product := env.createProduct(t, "scarf", "15.00", "")
	cara := env.createUser(t, "cara@example.com", "Cara", identity.RoleCustomer)
	cookie := env.cookieFor(t, cara)
	first := placeOrder(t, env, cookie, product.ID, "cod")
	placeOrder(t, env, cookie, product.ID, "online")
	last := placeOrder(t, env, cookie, product.ID, "online")

	t.Run("stats", func(t *testing.T) {
		w := testutil.DoJSON(t, router, http.MethodGet, "/account/stats", nil, testutil.WithCookie(cookie))
		testutil.AssertSuccess(t, w, http.StatusOK)

		stats := testutil.Decode[report.AccountStatsResponse](t, w).Data
		assert.Equal(t, int64(3), stats.TotalOrders)
		assert.Equal(t, int64(3), stats.PendingOrders)
		assert.Equal(t, int64(0), stats.CompletedOrders)
		assert.Equal(t, "45.00", stats.TotalSpent.StringFixed(2))
	})

	t.Run("orders paged newest first", func(t *testing.T) {
		w := testutil.DoJSON(t, router, http.MethodGet, "/account/orders?limit=2", nil, testutil.WithCookie(cookie))
		testutil.AssertSuccess(t, w, http.StatusOK)
		orders := testutil.Decode[[]trade.OrderResponse](t, w).Data
		require.Len(t, orders, 2)
		assert.Equal(t, last.Order.ID, orders[0].ID)

		w = testutil.DoJSON(t, router, http.MethodGet, "/account/orders?limit=2&offset=2", nil, testutil.WithCookie(cookie))
		testutil.AssertSuccess(t, w, http.StatusOK)
		orders = testutil.Decode[[]trade.OrderResponse](t, w).Data
		require.Len(t, orders, 1)
		assert.Equal(t, first.Order.ID, orders[0].ID)
		assert.Len(t, orders[0].Items, 1)
	})

	t.Run("other customers see nothing", func(t *testing.T) {
		stranger := env.cookieFor(t, env.createUser(t, "quiet@example.com", "", identity.RoleCustomer))
		w := testutil.DoJSON(t, router, http.MethodGet, "/account/orders", nil, testutil.WithCookie(stranger))
		testutil.AssertSuccess(t, w, http.StatusOK)
		assert.Empty(t, testutil.Decode[[]trade.OrderResponse](t, w).Data)

		w = testutil.DoJSON(t, router, http.MethodGet, "/account/stats", nil, testutil.WithCookie(stranger))
		stats := testutil.Decode[report.AccountStatsResponse](t, w).Data
		assert.Equal(t, int64(0), stats.TotalOrders)
		assert.True(t, stats.TotalSpent.IsZero())
	})

	t.Run("malformed paging", func(t *testing.T) {
		w := testutil.DoJSON(t, router, http.MethodGet, "/account/orders?limit=ten", nil, testutil.WithCookie(cookie))
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")
	})

	t.Run("requires session", func(t *testing.T) {
		w := testutil.DoJSON(t, router, http.MethodGet, "/account/stats", nil)
		testutil.AssertError(t, w, http.StatusUnauthorized, "ERR_UNAUTHORIZED")
	})
}

func TestReportHandler_Dashboard(t *testing.T) {
	env := newTestEnv(t)
	h := NewReportHandler(env.reportService)
	router := env.adminRouter(func(rg *gin.RouterGroup) {
		rg.GET("/admin/dashboard", h.Dashboard)
	})

	admin := env.createUser(t, "admin@example.com", "Admin", identity.RoleAdmin)
	product := env.createProduct(t, "belt", "20.00", "")
	env.createProduct(t, "cap", "10.00", "")
	dana := env.createUser(t, "dana@example.com", "Dana", identity.RoleCustomer)
	env.createUser(t, "eli@example.com", "Eli", identity.RoleCustomer)
	danaCookie := env.cookieFor(t, dana)
	placeOrder(t, env, danaCookie, product.ID, "cod")
	placeOrder(t, env, danaCookie, product.ID, "online")

	w := testutil.DoJSON(t, router, http.MethodGet, "/admin/dashboard", nil, testutil.WithCookie(env.cookieFor(t, admin)))
	testutil.AssertSuccess(t, w, http.StatusOK)

	dashboard := testutil.Decode[report.DashboardResponse](t, w).Data
	assert.Equal(t, int64(2), dashboard.TotalOrders)
	assert.Equal(t, int64(2), dashboard.PendingOrders)
	assert.Equal(t, "20.00", dashboard.TotalRevenue.StringFixed(2))
	assert.Equal(t, int64(2), dashboard.TotalProducts)
	assert.Equal(t, int64(2), dashboard.TotalCustomers)
	require.Len(t, dashboard.RecentOrders, 2)
	assert.Equal(t, "Dana", dashboard.RecentOrders[0].CustomerName)

	w = testutil.DoJSON(t, router, http.MethodGet, "/admin/dashboard", nil, testutil.WithCookie(danaCookie))
	testutil.AssertError(t, w, http.StatusForbidden, "ERR_FORBIDDEN")
}
