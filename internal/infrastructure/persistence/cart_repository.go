package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements CartRepository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

func preloadCartItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("cart_items.created_at ASC")
		}).
		Preload("Items.Product").
		Preload("Items.Product.Images")
}

// FindOpenByUser loads the user's open cart with items, products and images
func (r *GormCartRepository) FindOpenByUser(ctx context.Context, userID uuid.UUID) (*shopping.Cart, error) {
	return findOpenCart(r.db.WithContext(ctx), userID)
}

func findOpenCart(db *gorm.DB, userID uuid.UUID) (*shopping.Cart, error) {
	var cart shopping.Cart
	if err := preloadCartItems(db).
		Where("user_id = ? AND order_id IS NULL", userID).
		First(&cart).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &cart, nil
}

// Create inserts an empty cart
func (r *GormCartRepository) Create(ctx context.Context, cart *shopping.Cart) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(cart).Error; err != nil {
		if isDuplicateKey(err) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// lockOpenCart bumps the open cart's updated_at, which holds its row lock
// until the transaction ends. Checkout takes the same lock before it reads the
// lines, so a write made under it either lands before the order is built or
// sees the cart closed. cartID narrows the match to one cart when non-nil.
// Returns the cart id, or shared.ErrNotFound when no such open cart exists.
func lockOpenCart(tx *gorm.DB, userID uuid.UUID, cartID *uuid.UUID) (uuid.UUID, error) {
	q := tx.Model(&shopping.Cart{}).Where("order_id IS NULL")
	if userID != uuid.Nil {
		q = q.Where("user_id = ?", userID)
	}
	if cartID != nil {
		q = q.Where("id = ?", *cartID)
	}
	result := q.Update("updated_at", time.Now())
	if result.Error != nil {
		return uuid.Nil, result.Error
	}
	if result.RowsAffected == 0 {
		return uuid.Nil, shared.ErrNotFound
	}
	if cartID != nil {
		return *cartID, nil
	}

	var cart shopping.Cart
	if err := tx.Select("id").Where("user_id = ? AND order_id IS NULL", userID).Take(&cart).Error; err != nil {
		return uuid.Nil, translateNotFound(err)
	}
	return cart.ID, nil
}

// lockItemCart resolves the cart of a line and locks it if it is the user's open cart
func lockItemCart(tx *gorm.DB, userID, itemID uuid.UUID) error {
	var item shopping.CartItem
	if err := tx.Select("id", "cart_id").Where("id = ?", itemID).Take(&item).Error; err != nil {
		return translateNotFound(err)
	}
	_, err := lockOpenCart(tx, userID, &item.CartID)
	return err
}

// AddOrMergeItem inserts the line or adds its quantity to the existing line
// for the same product. Returns shopping.ErrCartClosed when the cart has been
// ordered.
func (r *GormCartRepository) AddOrMergeItem(ctx context.Context, item *shopping.CartItem) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := lockOpenCart(tx, uuid.Nil, &item.CartID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shopping.ErrCartClosed
			}
			return err
		}
		return tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
				DoUpdates: clause.Assignments(map[string]any{
					"quantity":   gorm.Expr("cart_items.quantity + excluded.quantity"),
					"updated_at": gorm.Expr("excluded.updated_at"),
				}),
			}).
			Omit(clause.Associations).
			Create(item).Error
	})
}

// UpdateItemQuantity sets the quantity of a line in the user's open cart.
// Lines of other users' carts and of ordered carts report shared.ErrNotFound.
func (r *GormCartRepository) UpdateItemQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockItemCart(tx, userID, itemID); err != nil {
			return err
		}
		return tx.Model(&shopping.CartItem{}).
			Where("id = ?", itemID).
			Updates(map[string]any{
				"quantity":   quantity,
				"updated_at": time.Now(),
			}).Error
	})
}

// DeleteItem removes a line from the user's open cart.
// Lines of other users' carts and of ordered carts report shared.ErrNotFound.
func (r *GormCartRepository) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockItemCart(tx, userID, itemID); err != nil {
			return err
		}
		return tx.Where("id = ?", itemID).Delete(&shopping.CartItem{}).Error
	})
}

// ClearOpenCart removes every line of the user's open cart and reports
// whether one existed
func (r *GormCartRepository) ClearOpenCart(ctx context.Context, userID uuid.UUID) (bool, error) {
	cleared := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cartID, err := lockOpenCart(tx, userID, nil)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("cart_id = ?", cartID).Delete(&shopping.CartItem{}).Error; err != nil {
			return err
		}
		cleared = true
		return nil
	})
	return cleared, err
}

// CountOpenByUser returns the number of open carts the user holds
func (r *GormCartRepository) CountOpenByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&shopping.Cart{}).
		Where("user_id = ? AND order_id IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Ensure GormCartRepository implements CartRepository
var _ shopping.CartRepository = (*GormCartRepository)(nil)
