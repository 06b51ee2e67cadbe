package trade

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/stretchr/testify/mock"
)

// MockOrderRepository is a mock implementation of trade.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Place(ctx context.Context, userID uuid.UUID, build trade.OrderBuilder) (*trade.Placement, error) {
	args := m.Called(ctx, userID, build)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Placement), args.Error(1)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*trade.Order, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]trade.Order, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]trade.Order), args.Error(1)
}

func (m *MockOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Order, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]trade.Order), args.Get(1).(int64), args.Error(2)
}

func (m *MockOrderRepository) UpdateStatus(ctx context.Context, order *trade.Order, from trade.OrderStatus) error {
	return m.Called(ctx, order, from).Error(0)
}

func (m *MockOrderRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// placingRepo runs the builder against a prepared cart the way the GORM
// repository does inside its transaction
type placingRepo struct {
	MockOrderRepository
	cart     *shopping.Cart
	storeErr error
	calls    int
}

func (r *placingRepo) Place(_ context.Context, userID uuid.UUID, build trade.OrderBuilder) (*trade.Placement, error) {
	r.calls++
	if r.cart == nil || r.cart.IsEmpty() {
		return nil, trade.ErrEmptyCart
	}
	address, order, err := build(r.cart)
	if err != nil {
		return nil, err
	}
	if r.storeErr != nil {
		return nil, r.storeErr
	}
	orderID := order.ID
	r.cart.OrderID = &orderID
	order.Cart = r.cart
	return &trade.Placement{Order: order, Address: address, NewCartID: shopping.NewCart(userID).ID}, nil
}

// recordingPublisher keeps every published event
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

// fakeMetrics records checkout failures
type fakeMetrics struct {
	failures []string
}

func (m *fakeMetrics) RecordCheckoutFailure(_ context.Context, code string) {
	m.failures = append(m.failures, code)
}

// memoryIdempotencyStore is a minimal shared.IdempotencyStore
type memoryIdempotencyStore struct {
	mu       sync.Mutex
	keys     map[string]bool
	released []string
	markErr  error
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{keys: map[string]bool{}}
}

func (s *memoryIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.markErr != nil {
		return false, s.markErr
	}
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	s.released = append(s.released, key)
	return nil
}

func (s *memoryIdempotencyStore) Close() error { return nil }
