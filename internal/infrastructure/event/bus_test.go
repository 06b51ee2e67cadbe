package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panicWith  any
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func startedBus(t *testing.T) *InMemoryEventBus {
	t.Helper()
	bus := NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	return bus
}

type testAggregate struct {
	shared.BaseAggregateRoot
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	ctx := context.Background()

	t.Run("delivers to handlers of the event type", func(t *testing.T) {
		bus := startedBus(t)
		placed := newTestHandler("OrderPlaced")
		other := newTestHandler("ProductDeleted")
		bus.Subscribe(placed)
		bus.Subscribe(other)

		require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPlaced"), newTestEvent("OrderPlaced")))

		assert.Equal(t, 2, placed.count())
		assert.Equal(t, 0, other.count())
	})

	t.Run("explicit types override the handler's own", func(t *testing.T) {
		bus := startedBus(t)
		h := newTestHandler("OrderPlaced")
		bus.Subscribe(h, "OrderStatusChanged")

		require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPlaced"), newTestEvent("OrderStatusChanged")))
		assert.Equal(t, 1, h.count())
	})

	t.Run("wildcard handler receives everything", func(t *testing.T) {
		bus := startedBus(t)
		all := newTestHandler()
		bus.Subscribe(all)

		require.NoError(t, bus.Publish(ctx, newTestEvent("A"), newTestEvent("B")))
		assert.Equal(t, 2, all.count())
	})

	t.Run("handler errors and panics do not reach the publisher", func(t *testing.T) {
		bus := startedBus(t)
		failing := newTestHandler("OrderPlaced")
		failing.err = errors.New("boom")
		panicking := newTestHandler("OrderPlaced")
		panicking.panicWith = "kaboom"
		healthy := newTestHandler("OrderPlaced")
		bus.Subscribe(failing)
		bus.Subscribe(panicking)
		bus.Subscribe(healthy)

		require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPlaced")))
		assert.Equal(t, 1, healthy.count())
		assert.Equal(t, int64(2), bus.Failures())
	})

	t.Run("not started drops events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		h := newTestHandler("OrderPlaced")
		bus.Subscribe(h)

		require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPlaced")))
		assert.Equal(t, 0, h.count())
	})
}

func TestInMemoryEventBus_PublishFrom(t *testing.T) {
	bus := startedBus(t)
	h := newTestHandler("ProductUpdated")
	bus.Subscribe(h)

	agg := &testAggregate{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	agg.AddDomainEvent(newTestEvent("ProductUpdated"))

	require.NoError(t, bus.PublishFrom(context.Background(), agg))
	assert.Equal(t, 1, h.count())
	assert.Empty(t, agg.GetDomainEvents())

	require.NoError(t, bus.PublishFrom(context.Background(), agg))
	assert.Equal(t, 1, h.count())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := startedBus(t)
	h := newTestHandler("OrderPlaced")
	bus.Subscribe(h)
	bus.Unsubscribe(h)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderPlaced")))
	assert.Equal(t, 0, h.count())
}

func TestInMemoryEventBus_StopDisablesPublishing(t *testing.T) {
	ctx := context.Background()
	bus := NewInMemoryEventBus(zap.NewNop())
	h := newTestHandler("OrderPlaced")
	bus.Subscribe(h)

	require.NoError(t, bus.Start(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPlaced")))
	require.NoError(t, bus.Stop(ctx))
	require.NoError(t, bus.Publish(ctx, newTestEvent("OrderPlaced")))

	assert.Equal(t, 1, h.count())
}
