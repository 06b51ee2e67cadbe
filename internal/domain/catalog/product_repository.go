package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
)

// ProductSort enumerates the storefront listing orders
type ProductSort string

const (
	SortDefault   ProductSort = "default"
	SortNewest    ProductSort = "new"
	SortPriceAsc  ProductSort = "price-asc"
	SortPriceDesc ProductSort = "price-desc"
)

// ParseProductSort maps a query value to a ProductSort, falling back to SortDefault
func ParseProductSort(v string) ProductSort {
	switch ProductSort(v) {
	case SortNewest, SortPriceAsc, SortPriceDesc:
		return ProductSort(v)
	default:
		return SortDefault
	}
}

// ProductFilter holds the public catalog listing predicates.
// A price range matches when either the list price or the sale price falls inside it.
type ProductFilter struct {
	Type     string
	Gender   string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sizes    []string
	Sort     ProductSort
}

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	// FindByID loads a product with its images, colors and sizes
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// List returns the storefront listing for the given predicates
	List(ctx context.Context, filter ProductFilter) ([]Product, error)

	// FindPage returns one admin page. Supported filter keys: "type", "gender".
	// Search matches name or description.
	FindPage(ctx context.Context, filter shared.Filter) ([]Product, int64, error)

	// Create inserts the product and its children in one transaction
	Create(ctx context.Context, product *Product) error

	// Update replaces the children and scalar fields in one transaction
	Update(ctx context.Context, product *Product) error

	// Delete removes the product, its children and any open-cart lines referencing it
	Delete(ctx context.Context, id uuid.UUID) error

	// HasBeenOrdered reports whether any ordered cart contains the product
	HasBeenOrdered(ctx context.Context, id uuid.UUID) (bool, error)

	// Count returns the number of products
	Count(ctx context.Context) (int64, error)
}
