package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/application/shopping"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cartRouter(env *testEnv) *gin.Engine {
	h := NewCartHandler(env.cartService)
	return env.customerRouter(func(rg *gin.RouterGroup) {
		rg.GET("/cart", h.GetCart)
		rg.POST("/cart/add", h.AddItem)
		rg.PUT("/cart/update", h.UpdateItem)
		rg.DELETE("/cart/remove", h.RemoveItem)
		rg.DELETE("/cart/clear", h.Clear)
	})
}

func getCart(t *testing.T, router http.Handler, cookie *http.Cookie) shopping.CartResponse {
	t.Helper()
	w := testutil.DoJSON(t, router, http.MethodGet, "/cart", nil, testutil.WithCookie(cookie))
	testutil.AssertSuccess(t, w, http.StatusOK)
	return testutil.Decode[shopping.CartResponse](t, w).Data
}

func TestCartHandler_RequiresSession(t *testing.T) {
	env := newTestEnv(t)
	w := testutil.DoJSON(t, cartRouter(env), http.MethodGet, "/cart", nil)
	testutil.AssertError(t, w, http.StatusUnauthorized, "ERR_UNAUTHORIZED")
}

func TestCartHandler_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	router := cartRouter(env)
	user := env.createUser(t, "cart@example.com", "Cart", identity.RoleCustomer)
	cookie := env.cookieFor(t, user)
	tee := env.createProduct(t, "tee", "20.00", "15.00")
	hoodie := env.createProduct(t, "hoodie", "50.00", "")

	empty := getCart(t, router, cookie)
	assert.NotEqual(t, uuid.Nil, empty.ID)
	assert.Empty(t, empty.Items)

	w := testutil.DoJSON(t, router, http.MethodPost, "/cart/add",
		map[string]any{"product_id": tee.ID, "quantity": 2}, testutil.WithCookie(cookie))
	testutil.AssertSuccess(t, w, http.StatusOK)
	assert.Equal(t, "Item added to cart", testutil.Decode[map[string]string](t, w).Data["message"])

	// same product merges into the existing line
	w = testutil.DoJSON(t, router, http.MethodPost, "/cart/add",
		map[string]any{"product_id": tee.ID, "quantity": 1}, testutil.WithCookie(cookie))
	testutil.AssertSuccess(t, w, http.StatusOK)
	w = testutil.DoJSON(t, router, http.MethodPost, "/cart/add",
		map[string]any{"product_id": hoodie.ID, "quantity": 1}, testutil.WithCookie(cookie))
	testutil.AssertSuccess(t, w, http.StatusOK)

	cart := getCart(t, router, cookie)
	assert.Equal(t, empty.ID, cart.ID)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, 4, cart.TotalItems)
	assert.Equal(t, "95.00", cart.Subtotal.StringFixed(2))

	var teeLine shopping.CartItemResponse
	for _, item := range cart.Items {
		if item.ProductID == tee.ID {
			teeLine = item
		}
	}
	assert.Equal(t, 3, teeLine.Quantity)
	require.NotNil(t, teeLine.Product)
	assert.Equal(t, "tee", teeLine.Product.Name)

	w = testutil.DoJSON(t, router, http.MethodPut, "/cart/update",
		map[string]any{"item_id": teeLine.ID, "quantity": 1}, testutil.WithCookie(cookie))
	testutil.AssertSuccess(t, w, http.StatusOK)

	w = testutil.DoJSON(t, router, http.MethodDelete, "/cart/remove",
		map[string]any{"item_id": teeLine.ID}, testutil.WithCookie(cookie))
	testutil.AssertSuccess(t, w, http.StatusOK)

	cart = getCart(t, router, cookie)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, hoodie.ID, cart.Items[0].ProductID)

	w = testutil.DoJSON(t, router, http.MethodDelete, "/cart/clear", nil, testutil.WithCookie(cookie))
	testutil.AssertSuccess(t, w, http.StatusOK)
	assert.Empty(t, getCart(t, router, cookie).Items)
}

func TestCartHandler_Errors(t *testing.T) {
	env := newTestEnv(t)
	router := cartRouter(env)
	user := env.createUser(t, "cart-errors@example.com", "", identity.RoleCustomer)
	cookie := testutil.WithCookie(env.cookieFor(t, user))
	product := env.createProduct(t, "cap", "10.00", "")

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"unknown product", http.MethodPost, "/cart/add", map[string]any{"product_id": uuid.New(), "quantity": 1}, http.StatusNotFound, "ERR_NOT_FOUND"},
		{"zero quantity", http.MethodPost, "/cart/add", map[string]any{"product_id": product.ID, "quantity": 0}, http.StatusBadRequest, "ERR_VALIDATION"},
		{"missing product id", http.MethodPost, "/cart/add", map[string]any{"quantity": 1}, http.StatusBadRequest, "ERR_VALIDATION"},
		{"update to zero", http.MethodPut, "/cart/update", map[string]any{"item_id": uuid.New(), "quantity": 0}, http.StatusBadRequest, "ERR_VALIDATION"},
		{"update unknown line", http.MethodPut, "/cart/update", map[string]any{"item_id": uuid.New(), "quantity": 2}, http.StatusNotFound, "ERR_NOT_FOUND"},
		{"remove unknown line", http.MethodDelete, "/cart/remove", map[string]any{"item_id": uuid.New()}, http.StatusNotFound, "ERR_NOT_FOUND"},
		{"empty body", http.MethodDelete, "/cart/remove", nil, http.StatusBadRequest, "ERR_INVALID_JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := testutil.DoJSON(t, router, tt.method, tt.path, tt.body, cookie)
			testutil.AssertError(t, w, tt.status, tt.code)
		})
	}
}

func TestCartHandler_IsolatedPerUser(t *testing.T) {
	env := newTestEnv(t)
	router := cartRouter(env)
	alice := env.cookieFor(t, env.createUser(t, "alice@example.com", "Alice", identity.RoleCustomer))
	bob := env.cookieFor(t, env.createUser(t, "bob@example.com", "Bob", identity.RoleCustomer))
	product := env.createProduct(t, "sock", "5.00", "")

	w := testutil.DoJSON(t, router, http.MethodPost, "/cart/add",
		map[string]any{"product_id": product.ID, "quantity": 1}, testutil.WithCookie(alice))
	testutil.AssertSuccess(t, w, http.StatusOK)

	aliceCart := getCart(t, router, alice)
	require.Len(t, aliceCart.Items, 1)

	// bob cannot touch alice's line
	w = testutil.DoJSON(t, router, http.MethodDelete, "/cart/remove",
		map[string]any{"item_id": aliceCart.Items[0].ID}, testutil.WithCookie(bob))
	testutil.AssertError(t, w, http.StatusNotFound, "ERR_NOT_FOUND")
	assert.Empty(t, getCart(t, router, bob).Items)
}
