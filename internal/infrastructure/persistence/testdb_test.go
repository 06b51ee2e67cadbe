package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return testutil.NewSQLiteDB(t, newGormConfig(logger.Default.LogMode(logger.Silent)))
}

func seedCustomer(t *testing.T, db *gorm.DB, email, name string) *identity.User {
	t.Helper()
	user, err := identity.NewCustomer(email, "secret123", name)
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Create(context.Background(), user))
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name, productType, gender string, price int64, salePrice *int64, sizes ...string) *catalog.Product {
	t.Helper()
	details := catalog.ProductDetails{
		Name:   name,
		Type:   productType,
		Gender: gender,
		Price:  decimal.NewFromInt(price),
	}
	if salePrice != nil {
		sp := decimal.NewFromInt(*salePrice)
		details.SalePrice = &sp
	}
	product, err := catalog.NewProduct(details)
	require.NoError(t, err)
	require.NoError(t, product.ReplaceFacets(
		[]catalog.ImageInput{{URL: "https://cdn.example.com/" + name + ".jpg"}},
		[]catalog.ColorInput{{Name: "Black", Color: "#000000"}},
		sizes,
	))
	require.NoError(t, NewGormProductRepository(db).Create(context.Background(), product))
	return product
}

func seedOpenCart(t *testing.T, db *gorm.DB, userID uuid.UUID, lines map[uuid.UUID]int) *shopping.Cart {
	t.Helper()
	ctx := context.Background()
	repo := NewGormCartRepository(db)
	cart := shopping.NewCart(userID)
	require.NoError(t, repo.Create(ctx, cart))
	for productID, qty := range lines {
		item, err := cart.AddItem(productID, qty)
		require.NoError(t, err)
		require.NoError(t, repo.AddOrMergeItem(ctx, item))
	}
	return cart
}

func int64Ptr(v int64) *int64 {
	return &v
}
