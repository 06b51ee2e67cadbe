package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/domain/trade"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func preloadOrderDetail(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Address").
		Preload("Cart.User").
		Preload("Cart.Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Preload("Cart.Items.Product.Images")
}

// Place runs checkout in one transaction. The cart is attached with a
// compare-and-set on order_id so two concurrent placements cannot both succeed.
func (r *GormOrderRepository) Place(ctx context.Context, userID uuid.UUID, build trade.OrderBuilder) (*trade.Placement, error) {
	var placement *trade.Placement

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOpenCart(tx, userID, nil); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return trade.ErrEmptyCart
			}
			return err
		}
		cart, err := findOpenCart(tx, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return trade.ErrEmptyCart
			}
			return err
		}
		if cart.IsEmpty() {
			return trade.ErrEmptyCart
		}

		address, order, err := build(cart)
		if err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(address).Error; err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Create(order).Error; err != nil {
			if isDuplicateKey(err) {
				return trade.ErrCartAlreadyCheckedOut
			}
			return err
		}

		result := tx.Model(&shopping.Cart{}).
			Where("id = ? AND order_id IS NULL", cart.ID).
			Update("order_id", order.ID)
		if result.Error != nil {
			if isDuplicateKey(result.Error) {
				return trade.ErrCartAlreadyCheckedOut
			}
			return result.Error
		}
		if result.RowsAffected == 0 {
			return trade.ErrCartAlreadyCheckedOut
		}

		newCart := shopping.NewCart(userID)
		if err := tx.Omit(clause.Associations).Create(newCart).Error; err != nil {
			return err
		}

		orderID := order.ID
		cart.OrderID = &orderID
		order.Cart = cart
		order.Address = address
		placement = &trade.Placement{
			Order:     order,
			Address:   address,
			NewCartID: newCart.ID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return placement, nil
}

// FindByID loads an order with address, cart, items, products and customer
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := preloadOrderDetail(r.db.WithContext(ctx)).
		Where("id = ?", id).
		First(&order).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &order, nil
}

// FindByIDForUser loads an order only if its cart belongs to the user
func (r *GormOrderRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*trade.Order, error) {
	var order trade.Order
	if err := preloadOrderDetail(r.db.WithContext(ctx)).
		Joins("JOIN carts ON carts.id = orders.cart_id").
		Where("orders.id = ? AND carts.user_id = ?", id, userID).
		First(&order).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &order, nil
}

// FindByUser lists the user's orders newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]trade.Order, error) {
	if limit < 1 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var orders []trade.Order
	if err := preloadOrderDetail(r.db.WithContext(ctx)).
		Joins("JOIN carts ON carts.id = orders.cart_id").
		Where("carts.user_id = ?", userID).
		Order("orders.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindAll returns one admin page of orders
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Joins("JOIN carts ON carts.id = orders.cart_id").
		Joins("JOIN users ON users.id = carts.user_id")

	if status, ok := filterString(filter, "status"); ok {
		query = query.Where("orders.status = ?", status)
	}
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("(LOWER(users.name) LIKE ? OR LOWER(users.email) LIKE ?)", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	page, pageSize := normalizePage(filter.Page, filter.PageSize)

	var orders []trade.Order
	if err := query.
		Preload("Address").
		Preload("Cart.User").
		Preload("Cart.Items").
		Order("orders." + orderBy + " " + orderDir).
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// UpdateStatus persists a status change only if the stored status still equals from
func (r *GormOrderRepository) UpdateStatus(ctx context.Context, order *trade.Order, from trade.OrderStatus) error {
	result := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Where("id = ? AND status = ?", order.ID, from).
		Updates(map[string]any{
			"status":     order.Status,
			"updated_at": order.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// CountByUser returns the number of orders the user has placed
func (r *GormOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&trade.Order{}).
		Joins("JOIN carts ON carts.id = orders.cart_id").
		Where("carts.user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormOrderRepository implements OrderRepository
var _ trade.OrderRepository = (*GormOrderRepository)(nil)
