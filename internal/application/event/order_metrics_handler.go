package event

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// OrderMetricsRecorder receives committed order facts
type OrderMetricsRecorder interface {
	RecordOrderPlaced(ctx context.Context, paymentMethod, status string, total decimal.Decimal)
	RecordStatusChange(ctx context.Context, from, to string)
}

// OrderMetricsHandler turns order events into metrics
type OrderMetricsHandler struct {
	recorder OrderMetricsRecorder
	logger   *zap.Logger
}

// NewOrderMetricsHandler creates a new handler for order metrics
func NewOrderMetricsHandler(recorder OrderMetricsRecorder, logger *zap.Logger) *OrderMetricsHandler {
	return &OrderMetricsHandler{
		recorder: recorder,
		logger:   logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *OrderMetricsHandler) EventTypes() []string {
	return []string{trade.EventTypeOrderPlaced, trade.EventTypeOrderStatusChanged}
}

// Handle records the event's measurements
func (h *OrderMetricsHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *trade.OrderPlacedEvent:
		h.recorder.RecordOrderPlaced(ctx, string(e.PaymentMethod), string(e.Status), e.TotalAmount)
	case *trade.OrderStatusChangedEvent:
		h.recorder.RecordStatusChange(ctx, string(e.FromStatus), string(e.ToStatus))
	default:
		h.logger.Error("unexpected event type",
			zap.Strings("expected", h.EventTypes()),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: %s", event.EventType())
	}
	return nil
}

// Ensure OrderMetricsHandler implements EventHandler
var _ shared.EventHandler = (*OrderMetricsHandler)(nil)
