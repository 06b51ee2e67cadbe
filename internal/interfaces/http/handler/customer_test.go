package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminCustomerRouter(env *testEnv) *gin.Engine {
	h := NewCustomerHandler(env.customerService)
	return env.adminRouter(func(rg *gin.RouterGroup) {
		rg.GET("/admin/customers", h.List)
		rg.GET("/admin/customers/:id", h.Get)
		rg.PUT("/admin/customers/:id", h.Update)
		rg.DELETE("/admin/customers/:id", h.Delete)
	})
}

func TestCustomerHandler_List(t *testing.T) {
	env := newTestEnv(t)
	router := adminCustomerRouter(env)
	admin := testutil.WithCookie(env.cookieFor(t, env.createUser(t, "admin@example.com", "Zed Admin", identity.RoleAdmin)))
	product := env.createProduct(t, "mug", "15.00", "")

	amy := env.createUser(t, "amy@example.com", "Amy", identity.RoleCustomer)
	env.createUser(t, "bob@example.com", "Bob", identity.RoleCustomer)
	amyCookie := env.cookieFor(t, amy)
	placeOrder(t, env, amyCookie, product.ID, "cod")
	placeOrder(t, env, amyCookie, product.ID, "online")

	t.Run("customers sorted by name with order summary", func(t *testing.T) {
		w := testutil.DoJSON(t, router, http.MethodGet, "/admin/customers?role=CUSTOMER&sort_by=name&sort_order=asc", nil, admin)
		testutil.AssertSuccess(t, w, http.StatusOK)

		page := testutil.Decode[[]identityapp.CustomerListItem](t, w)
		require.Len(t, page.Data, 2)
		assert.Equal(t, int64(2), page.Meta.Total)
		assert.Equal(t, "Amy", page.Data[0].Name)
		assert.Equal(t, int64(2), page.Data[0].TotalOrders)
		assert.Equal(t, "15.00", page.Data[0].TotalSpent.StringFixed(2))
		assert.NotNil(t, page.Data[0].LastOrderDate)
		assert.Equal(t, int64(0), page.Data[1].TotalOrders)
		assert.Nil(t, page.Data[1].LastOrderDate)
	})

	t.Run("search", func(t *testing.T) {
		w := testutil.DoJSON(t, router, http.MethodGet, "/admin/customers?search=BOB", nil, admin)
		testutil.AssertSuccess(t, w, http.StatusOK)
		items := testutil.Decode[[]identityapp.CustomerListItem](t, w).Data
		require.Len(t, items, 1)
		assert.Equal(t, "bob@example.com", items[0].Email)
	})

	t.Run("sort field is whitelisted", func(t *testing.T) {
		w := testutil.DoJSON(t, router, http.MethodGet, "/admin/customers?sort_by=password_hash", nil, admin)
		testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")
	})
}

func TestCustomerHandler_Get(t *testing.T) {
	env := newTestEnv(t)
	router := adminCustomerRouter(env)
	admin := testutil.WithCookie(env.cookieFor(t, env.createUser(t, "admin@example.com", "", identity.RoleAdmin)))
	product := env.createProduct(t, "lamp", "40.00", "")
	customer := env.createUser(t, "detail@example.com", "Detail", identity.RoleCustomer)
	placeOrder(t, env, env.cookieFor(t, customer), product.ID, "online")

	w := testutil.DoJSON(t, router, http.MethodGet, "/admin/customers/"+customer.ID.String(), nil, admin)
	testutil.AssertSuccess(t, w, http.StatusOK)

	detail := testutil.Decode[CustomerDetailResponse](t, w).Data
	assert.Equal(t, "detail@example.com", detail.Email)
	assert.Len(t, detail.Addresses, 1)
	require.Len(t, detail.Orders, 1)
	assert.Len(t, detail.Orders[0].Items, 1)
	assert.Equal(t, int64(1), detail.Stats.TotalOrders)
	assert.Equal(t, int64(1), detail.Stats.PendingOrders)
	assert.Equal(t, "40.00", detail.Stats.TotalSpent.StringFixed(2))

	w = testutil.DoJSON(t, router, http.MethodGet, "/admin/customers/"+uuid.NewString(), nil, admin)
	testutil.AssertError(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
}

func TestCustomerHandler_Update(t *testing.T) {
	env := newTestEnv(t)
	router := adminCustomerRouter(env)
	admin := testutil.WithCookie(env.cookieFor(t, env.createUser(t, "admin@example.com", "", identity.RoleAdmin)))
	customer := env.createUser(t, "edit@example.com", "Before", identity.RoleCustomer)
	env.createUser(t, "taken@example.com", "", identity.RoleCustomer)
	path := "/admin/customers/" + customer.ID.String()

	w := testutil.DoJSON(t, router, http.MethodPut, path, map[string]any{"name": "After", "role": "admin"}, admin)
	testutil.AssertSuccess(t, w, http.StatusOK)
	updated := testutil.Decode[identityapp.UserInfo](t, w).Data
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "ADMIN", updated.Role)
	assert.Equal(t, "edit@example.com", updated.Email)

	w = testutil.DoJSON(t, router, http.MethodPut, path, map[string]any{"email": "taken@example.com"}, admin)
	testutil.AssertError(t, w, http.StatusConflict, "ERR_EMAIL_TAKEN")

	w = testutil.DoJSON(t, router, http.MethodPut, path, map[string]any{"role": "OWNER"}, admin)
	testutil.AssertError(t, w, http.StatusBadRequest, "ERR_VALIDATION")

	w = testutil.DoJSON(t, router, http.MethodPut, "/admin/customers/"+uuid.NewString(), map[string]any{"name": "x"}, admin)
	testutil.AssertError(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
}

func TestCustomerHandler_Delete(t *testing.T) {
	env := newTestEnv(t)
	router := adminCustomerRouter(env)
	admin := testutil.WithCookie(env.cookieFor(t, env.createUser(t, "admin@example.com", "", identity.RoleAdmin)))
	product := env.createProduct(t, "pen", "2.00", "")

	buyer := env.createUser(t, "buyer@example.com", "", identity.RoleCustomer)
	placeOrder(t, env, env.cookieFor(t, buyer), product.ID, "cod")
	w := testutil.DoJSON(t, router, http.MethodDelete, "/admin/customers/"+buyer.ID.String(), nil, admin)
	testutil.AssertError(t, w, http.StatusConflict, "ERR_CUSTOMER_HAS_ORDERS")

	browser := env.createUser(t, "browser@example.com", "", identity.RoleCustomer)
	fillCart(t, orderRouter(env), env.cookieFor(t, browser), product.ID, 3)
	w = testutil.DoJSON(t, router, http.MethodDelete, "/admin/customers/"+browser.ID.String(), nil, admin)
	testutil.AssertSuccess(t, w, http.StatusOK)

	w = testutil.DoJSON(t, router, http.MethodGet, "/admin/customers/"+browser.ID.String(), nil, admin)
	testutil.AssertError(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
}
