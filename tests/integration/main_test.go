//go:build integration

package integration

import (
	"context"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	code := m.Run()
	CleanupSharedContainer()
	os.Exit(code)
}

// freshDB returns the shared database with every table emptied
func freshDB(t *testing.T) *gorm.DB {
	t.Helper()
	tdb := NewSharedTestDB(t)
	tdb.CleanTables()
	return tdb.DB
}

func seedUser(t *testing.T, db *gorm.DB, email, name string, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser(email, "secret123", name, role)
	require.NoError(t, err)
	require.NoError(t, persistence.NewGormUserRepository(db).Create(context.Background(), user))
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name, productType, gender, price string, salePrice string, sizes ...string) *catalog.Product {
	t.Helper()
	details := catalog.ProductDetails{
		Name:   name,
		Type:   productType,
		Gender: gender,
		Price:  decimal.RequireFromString(price),
	}
	if salePrice != "" {
		sp := decimal.RequireFromString(salePrice)
		details.SalePrice = &sp
	}
	product, err := catalog.NewProduct(details)
	require.NoError(t, err)
	require.NoError(t, product.ReplaceFacets(
		[]catalog.ImageInput{{URL: "https://cdn.test/" + name + ".jpg", Alt: name}},
		[]catalog.ColorInput{{Name: "Black", Color: "#000000"}},
		sizes,
	))
	require.NoError(t, persistence.NewGormProductRepository(db).Create(context.Background(), product))
	return product
}

func seedOpenCart(t *testing.T, db *gorm.DB, userID uuid.UUID, lines map[uuid.UUID]int) *shopping.Cart {
	t.Helper()
	ctx := context.Background()
	repo := persistence.NewGormCartRepository(db)
	cart := shopping.NewCart(userID)
	require.NoError(t, repo.Create(ctx, cart))
	for productID, qty := range lines {
		require.NoError(t, repo.AddOrMergeItem(ctx, newLine(cart.ID, productID, qty)))
	}
	return cart
}

func newLine(cartID, productID uuid.UUID, qty int) *shopping.CartItem {
	return &shopping.CartItem{
		BaseEntity: shared.NewBaseEntity(),
		CartID:     cartID,
		ProductID:  productID,
		Quantity:   qty,
	}
}
