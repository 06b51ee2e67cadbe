package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// CachedProductRepository is a read-through cache in front of a ProductRepository.
// Only FindByID is cached; writes evict the entry directly as well as through
// ProductInvalidationHandler.
type CachedProductRepository struct {
	catalog.ProductRepository
	cache  ProductCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProductRepository wraps inner with cache
func NewCachedProductRepository(inner catalog.ProductRepository, cache ProductCache, ttl time.Duration, logger *zap.Logger) *CachedProductRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProductRepository{
		ProductRepository: inner,
		cache:             cache,
		ttl:               ttl,
		logger:            logger,
	}
}

// FindByID serves from cache, falling back to the inner repository on a miss or cache error
func (r *CachedProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	cached, err := r.cache.Get(ctx, id)
	if err != nil {
		r.logger.Warn("Product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	product, err := r.ProductRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.cache.Set(ctx, product, r.ttl); err != nil {
		r.logger.Warn("Product cache write failed", zap.String("product_id", id.String()), zap.Error(err))
	}
	return product, nil
}

// Update persists and evicts
func (r *CachedProductRepository) Update(ctx context.Context, product *catalog.Product) error {
	if err := r.ProductRepository.Update(ctx, product); err != nil {
		return err
	}
	r.evict(ctx, product.ID)
	return nil
}

// Delete removes and evicts
func (r *CachedProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.ProductRepository.Delete(ctx, id); err != nil {
		return err
	}
	r.evict(ctx, id)
	return nil
}

func (r *CachedProductRepository) evict(ctx context.Context, id uuid.UUID) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.logger.Warn("Product cache eviction failed", zap.String("product_id", id.String()), zap.Error(err))
	}
}

// ProductInvalidationHandler evicts cached products when they change.
// Other instances sharing the Redis cache are covered because eviction hits Redis.
type ProductInvalidationHandler struct {
	cache  ProductCache
	logger *zap.Logger
}

// NewProductInvalidationHandler creates the handler
func NewProductInvalidationHandler(cache ProductCache, logger *zap.Logger) *ProductInvalidationHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductInvalidationHandler{cache: cache, logger: logger}
}

// EventTypes returns the product mutation events
func (h *ProductInvalidationHandler) EventTypes() []string {
	return []string{catalog.EventTypeProductUpdated, catalog.EventTypeProductDeleted}
}

// Handle evicts the product named by the event
func (h *ProductInvalidationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if err := h.cache.Delete(ctx, event.AggregateID()); err != nil {
		h.logger.Warn("Failed to invalidate product cache",
			zap.String("product_id", event.AggregateID().String()),
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		return err
	}
	return nil
}

var (
	_ catalog.ProductRepository = (*CachedProductRepository)(nil)
	_ shared.EventHandler       = (*ProductInvalidationHandler)(nil)
)
