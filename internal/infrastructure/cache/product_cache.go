package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/catalog"
	"go.uber.org/zap"
)

// DefaultProductTTL bounds staleness when an invalidation is missed
const DefaultProductTTL = 10 * time.Minute

// ProductCache stores formatted product aggregates by id.
// Get returns (nil, nil) on a miss.
type ProductCache interface {
	Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error)
	Set(ctx context.Context, product *catalog.Product, ttl time.Duration) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// RedisProductCache implements ProductCache using Redis with JSON values
type RedisProductCache struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewRedisProductCache creates a product cache on a shared Redis client
func NewRedisProductCache(client redis.UniversalClient, logger *zap.Logger) *RedisProductCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisProductCache{client: client, logger: logger}
}

func (c *RedisProductCache) key(id uuid.UUID) string {
	return fmt.Sprintf("shop:product:%s", id.String())
}

// Get retrieves a product from cache
func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	cacheKey := c.key(id)

	data, err := c.client.Get(ctx, cacheKey).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product from cache: %w", err)
	}

	var product catalog.Product
	if err := json.Unmarshal(data, &product); err != nil {
		c.logger.Warn("Dropping corrupted product cache entry",
			zap.String("product_id", id.String()),
			zap.Error(err))
		_ = c.client.Del(ctx, cacheKey)
		return nil, nil
	}
	return &product, nil
}

// Set stores a product in cache
func (c *RedisProductCache) Set(ctx context.Context, product *catalog.Product, ttl time.Duration) error {
	if product == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultProductTTL
	}
	data, err := json.Marshal(product)
	if err != nil {
		return fmt.Errorf("failed to marshal product: %w", err)
	}
	if err := c.client.Set(ctx, c.key(product.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product: %w", err)
	}
	return nil
}

// Delete removes a product from cache
func (c *RedisProductCache) Delete(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to evict product: %w", err)
	}
	return nil
}

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     *T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryProductCache implements ProductCache in process memory
type InMemoryProductCache struct {
	entries sync.Map // map[uuid.UUID]*cacheEntry[catalog.Product]
	hits    int64
	misses  int64
}

// NewInMemoryProductCache creates an empty in-memory product cache
func NewInMemoryProductCache() *InMemoryProductCache {
	return &InMemoryProductCache{}
}

// Get retrieves a product from cache
func (c *InMemoryProductCache) Get(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	v, ok := c.entries.Load(id)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	entry := v.(*cacheEntry[catalog.Product])
	if entry.isExpired() {
		c.entries.Delete(id)
		atomic.AddInt64(&c.misses, 1)
		return nil, nil
	}
	atomic.AddInt64(&c.hits, 1)
	copied := *entry.value
	return &copied, nil
}

// Set stores a product in cache
func (c *InMemoryProductCache) Set(_ context.Context, product *catalog.Product, ttl time.Duration) error {
	if product == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = DefaultProductTTL
	}
	copied := *product
	c.entries.Store(product.ID, &cacheEntry[catalog.Product]{value: &copied, expiresAt: time.Now().Add(ttl)})
	return nil
}

// Delete removes a product from cache
func (c *InMemoryProductCache) Delete(_ context.Context, id uuid.UUID) error {
	c.entries.Delete(id)
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryProductCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

var (
	_ ProductCache = (*RedisProductCache)(nil)
	_ ProductCache = (*InMemoryProductCache)(nil)
)
