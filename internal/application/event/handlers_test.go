package event

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/cache"
	infraevent "github.com/storefront/backend/internal/infrastructure/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type recorderStub struct {
	placed      []string
	totals      []decimal.Decimal
	transitions []string
	deliveries  []string
}

func (r *recorderStub) RecordEventDelivery(_ context.Context, eventType, outcome string) {
	r.deliveries = append(r.deliveries, eventType+":"+outcome)
}

func (r *recorderStub) RecordOrderPlaced(_ context.Context, paymentMethod, status string, total decimal.Decimal) {
	r.placed = append(r.placed, paymentMethod+":"+status)
	r.totals = append(r.totals, total)
}

func (r *recorderStub) RecordStatusChange(_ context.Context, from, to string) {
	r.transitions = append(r.transitions, from+"->"+to)
}

func placedOrder(t *testing.T) *trade.Order {
	t.Helper()
	userID := uuid.New()
	cart := shopping.NewCart(userID)
	_, err := cart.AddItem(uuid.New(), 1)
	require.NoError(t, err)
	address, err := trade.NewShippingAddress(userID, trade.ShippingInput{Street: "s", City: "c"})
	require.NoError(t, err)
	order, err := trade.NewOrder(cart, address, trade.PaymentMethodOnline, decimal.NewFromInt(30))
	require.NoError(t, err)
	return order
}

func TestOrderMetricsHandler(t *testing.T) {
	ctx := context.Background()
	recorder := &recorderStub{}
	h := NewOrderMetricsHandler(recorder, zap.NewNop())

	order := placedOrder(t)
	require.NoError(t, h.Handle(ctx, order.GetDomainEvents()[0]))
	assert.Equal(t, []string{"online:PAID"}, recorder.placed)
	assert.True(t, decimal.NewFromInt(30).Equal(recorder.totals[0]))

	order.ClearDomainEvents()
	_, err := order.ChangeStatus(trade.OrderStatusShipped)
	require.NoError(t, err)
	require.NoError(t, h.Handle(ctx, order.GetDomainEvents()[0]))
	assert.Equal(t, []string{"PAID->SHIPPED"}, recorder.transitions)

	user, err := identity.NewCustomer("a@b.io", "secret1", "")
	require.NoError(t, err)
	assert.Error(t, h.Handle(ctx, user.GetDomainEvents()[0]))
}

func TestOrderMetricsHandler_DeduplicatesThroughBus(t *testing.T) {
	ctx := context.Background()
	recorder := &recorderStub{}
	store := cache.NewInMemoryIdempotencyStore()
	defer store.Close()

	bus := infraevent.NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(ctx))
	handler := infraevent.NewDedupHandler(NewOrderMetricsHandler(recorder, zap.NewNop()), store, zap.NewNop(),
		infraevent.WithDeliveryRecorder(recorder))
	bus.Subscribe(handler)

	event := placedOrder(t).GetDomainEvents()[0]
	require.NoError(t, bus.Publish(ctx, event))
	require.NoError(t, bus.Publish(ctx, event))

	assert.Len(t, recorder.placed, 1)
	assert.Equal(t, []string{"OrderPlaced:processed", "OrderPlaced:duplicate"}, recorder.deliveries)
}

func TestAuditLogHandler(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	h := NewAuditLogHandler(zap.New(core))
	assert.Empty(t, h.EventTypes())

	event := placedOrder(t).GetDomainEvents()[0]
	require.NoError(t, h.Handle(context.Background(), event))

	entries := logs.FilterLoggerName("audit").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, trade.EventTypeOrderPlaced, fields["event_type"])
	assert.Equal(t, trade.AggregateTypeOrder, fields["aggregate_type"])
	assert.Equal(t, event.EventID().String(), fields["event_id"])
	assert.Contains(t, fields, "payload")
}
