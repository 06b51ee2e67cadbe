package shopping

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"go.uber.org/zap"
)

// Cart mutation names reported to MutationRecorder
const (
	OpAdd    = "add"
	OpUpdate = "update"
	OpRemove = "remove"
	OpClear  = "clear"
)

// MutationRecorder counts cart writes
type MutationRecorder interface {
	RecordCartMutation(ctx context.Context, operation string)
}

// CartService manages the caller's open cart
type CartService struct {
	cartRepo    shopping.CartRepository
	productRepo catalog.ProductRepository
	metrics     MutationRecorder
	logger      *zap.Logger
}

// NewCartService creates a new CartService
func NewCartService(cartRepo shopping.CartRepository, productRepo catalog.ProductRepository, logger *zap.Logger) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		logger:      logger,
	}
}

// SetMetrics sets the recorder for cart mutations
func (s *CartService) SetMetrics(metrics MutationRecorder) {
	s.metrics = metrics
}

// GetCart returns the open cart, creating it on first use
func (s *CartService) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	cart, err := s.getOrCreateOpenCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(cart)
	return &resp, nil
}

// AddItem adds quantity of a product, merging into an existing line
func (s *CartService) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) error {
	if input.Quantity < 1 {
		return shopping.ErrInvalidQuantity
	}
	if _, err := s.productRepo.FindByID(ctx, input.ProductID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return catalog.ErrProductNotFound
		}
		return err
	}

	err := s.addToOpenCart(ctx, userID, input)
	if errors.Is(err, shopping.ErrCartClosed) {
		// checkout closed the cart between the read and the write
		err = s.addToOpenCart(ctx, userID, input)
	}
	if err != nil {
		return err
	}

	s.record(ctx, OpAdd)
	s.logger.Debug("Cart item added",
		zap.String("user_id", userID.String()),
		zap.String("product_id", input.ProductID.String()),
		zap.Int("quantity", input.Quantity))
	return nil
}

func (s *CartService) addToOpenCart(ctx context.Context, userID uuid.UUID, input AddItemInput) error {
	cart, err := s.getOrCreateOpenCart(ctx, userID)
	if err != nil {
		return err
	}

	item, err := cart.AddItem(input.ProductID, input.Quantity)
	if err != nil {
		return err
	}
	// The repository merges atomically on (cart_id, product_id); send only the delta.
	delta := *item
	delta.BaseEntity = shared.NewBaseEntity()
	delta.Quantity = input.Quantity
	return s.cartRepo.AddOrMergeItem(ctx, &delta)
}

// UpdateItemQuantity sets the quantity of a line in the caller's open cart
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID uuid.UUID, input UpdateItemInput) error {
	if input.Quantity < 1 {
		return shopping.ErrInvalidQuantity
	}
	if err := s.cartRepo.UpdateItemQuantity(ctx, userID, input.ItemID, input.Quantity); err != nil {
		return translateItemErr(err)
	}
	s.record(ctx, OpUpdate)
	return nil
}

// RemoveItem deletes a line from the caller's open cart
func (s *CartService) RemoveItem(ctx context.Context, userID uuid.UUID, itemID uuid.UUID) error {
	if err := s.cartRepo.DeleteItem(ctx, userID, itemID); err != nil {
		return translateItemErr(err)
	}
	s.record(ctx, OpRemove)
	return nil
}

// Clear empties the caller's open cart. It is a no-op when there is none.
func (s *CartService) Clear(ctx context.Context, userID uuid.UUID) error {
	cleared, err := s.cartRepo.ClearOpenCart(ctx, userID)
	if err != nil {
		return err
	}
	if cleared {
		s.record(ctx, OpClear)
	}
	return nil
}

// getOrCreateOpenCart resolves the open cart. A concurrent creator wins the
// partial unique index and the loser re-reads its cart.
func (s *CartService) getOrCreateOpenCart(ctx context.Context, userID uuid.UUID) (*shopping.Cart, error) {
	cart, err := s.cartRepo.FindOpenByUser(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	cart = shopping.NewCart(userID)
	if err := s.cartRepo.Create(ctx, cart); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return s.cartRepo.FindOpenByUser(ctx, userID)
		}
		return nil, err
	}
	s.logger.Debug("Cart opened", zap.String("user_id", userID.String()), zap.String("cart_id", cart.ID.String()))
	return cart, nil
}

func (s *CartService) record(ctx context.Context, op string) {
	if s.metrics != nil {
		s.metrics.RecordCartMutation(ctx, op)
	}
}

func translateItemErr(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return shopping.ErrCartItemNotFound
	}
	return err
}
