package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func preloadFacets(db *gorm.DB) *gorm.DB {
	return db.Preload("Images").Preload("Colors").Preload("Sizes")
}

// FindByID loads a product with its images, colors and sizes
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var product catalog.Product
	if err := preloadFacets(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&product).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &product, nil
}

// List returns the storefront listing for the given predicates
// effectivePriceSQL mirrors Product.EffectivePrice: a NULL or zero sale price falls back to the list price
const effectivePriceSQL = "CASE WHEN sale_price > 0 THEN sale_price ELSE price END"

func (r *GormProductRepository) List(ctx context.Context, filter catalog.ProductFilter) ([]catalog.Product, error) {
	query := preloadFacets(r.db.WithContext(ctx).Model(&catalog.Product{}))

	if t := catalog.NormalizeFacet(filter.Type); t != "" && t != catalog.FacetAll {
		query = query.Where("type = ?", t)
	}
	if g := catalog.NormalizeFacet(filter.Gender); g != "" && g != catalog.FacetAll {
		query = query.Where("gender = ?", g)
	}

	switch {
	case filter.MinPrice != nil && filter.MaxPrice != nil:
		query = query.Where("((price >= ? AND price <= ?) OR (sale_price > 0 AND sale_price >= ? AND sale_price <= ?))",
			*filter.MinPrice, *filter.MaxPrice, *filter.MinPrice, *filter.MaxPrice)
	case filter.MinPrice != nil:
		query = query.Where("(price >= ? OR sale_price >= ?)", *filter.MinPrice, *filter.MinPrice)
	case filter.MaxPrice != nil:
		query = query.Where("(price <= ? OR (sale_price > 0 AND sale_price <= ?))", *filter.MaxPrice, *filter.MaxPrice)
	}

	if sizes := nonEmpty(filter.Sizes); len(sizes) > 0 {
		query = query.Where(
			"EXISTS (SELECT 1 FROM product_sizes ps WHERE ps.product_id = products.id AND ps.value IN ?)",
			sizes,
		)
	}

	switch filter.Sort {
	case catalog.SortPriceAsc:
		query = query.Order(effectivePriceSQL + " ASC").Order("created_at DESC")
	case catalog.SortPriceDesc:
		query = query.Order(effectivePriceSQL + " DESC").Order("created_at DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var products []catalog.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// FindPage returns one admin page
func (r *GormProductRepository) FindPage(ctx context.Context, filter shared.Filter) ([]catalog.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&catalog.Product{})

	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern)
	}
	if t, ok := filterString(filter, "type"); ok && catalog.NormalizeFacet(t) != catalog.FacetAll {
		query = query.Where("type = ?", catalog.NormalizeFacet(t))
	}
	if g, ok := filterString(filter, "gender"); ok && catalog.NormalizeFacet(g) != catalog.FacetAll {
		query = query.Where("gender = ?", catalog.NormalizeFacet(g))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	var products []catalog.Product
	if err := preloadFacets(query).
		Order(orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// Create inserts the product and its children in one transaction
func (r *GormProductRepository) Create(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(product).Error; err != nil {
			return err
		}
		return insertFacets(tx, product)
	})
}

// Update replaces the children and scalar fields in one transaction
func (r *GormProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&catalog.Product{}).
			Where("id = ?", product.ID).
			Updates(map[string]any{
				"name":        product.Name,
				"description": product.Description,
				"material":    product.Material,
				"type":        product.Type,
				"gender":      product.Gender,
				"price":       product.Price,
				"sale_price":  product.SalePrice,
				"updated_at":  product.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		if err := deleteFacets(tx, product.ID); err != nil {
			return err
		}
		return insertFacets(tx, product)
	})
}

// Delete removes the product, its children and any open-cart lines referencing it.
// Returns catalog.ErrProductOrdered when an ordered cart references the product.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ordered, err := hasBeenOrdered(tx, id)
		if err != nil {
			return err
		}
		if ordered {
			return catalog.ErrProductOrdered
		}

		openCarts := tx.Model(&shopping.Cart{}).Select("id").Where("order_id IS NULL")
		if err := tx.Where("product_id = ? AND cart_id IN (?)", id, openCarts).
			Delete(&shopping.CartItem{}).Error; err != nil {
			return err
		}
		if err := deleteFacets(tx, id); err != nil {
			return err
		}

		result := tx.Where("id = ?", id).Delete(&catalog.Product{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// HasBeenOrdered reports whether any ordered cart contains the product
func (r *GormProductRepository) HasBeenOrdered(ctx context.Context, id uuid.UUID) (bool, error) {
	return hasBeenOrdered(r.db.WithContext(ctx), id)
}

// Count returns the number of products
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&catalog.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func hasBeenOrdered(db *gorm.DB, productID uuid.UUID) (bool, error) {
	var count int64
	if err := db.Model(&shopping.CartItem{}).
		Joins("JOIN carts ON carts.id = cart_items.cart_id").
		Where("cart_items.product_id = ? AND carts.order_id IS NOT NULL", productID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func insertFacets(tx *gorm.DB, product *catalog.Product) error {
	if len(product.Images) > 0 {
		if err := tx.Create(&product.Images).Error; err != nil {
			return err
		}
	}
	if len(product.Colors) > 0 {
		if err := tx.Create(&product.Colors).Error; err != nil {
			return err
		}
	}
	if len(product.Sizes) > 0 {
		if err := tx.Create(&product.Sizes).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteFacets(tx *gorm.DB, productID uuid.UUID) error {
	for _, model := range []any{&catalog.ProductImage{}, &catalog.ProductColor{}, &catalog.ProductSize{}} {
		if err := tx.Where("product_id = ?", productID).Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
