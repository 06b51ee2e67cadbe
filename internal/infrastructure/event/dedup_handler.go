package event

import (
	"context"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Delivery outcomes reported to DeliveryRecorder
const (
	DeliveryProcessed = "processed"
	DeliveryDuplicate = "duplicate"
	DeliveryFailed    = "failed"
	// DeliveryUnchecked means the key store was unreachable and the event
	// was handled without a duplicate check
	DeliveryUnchecked = "unchecked"
)

// DeliveryRecorder counts event deliveries by outcome
type DeliveryRecorder interface {
	RecordEventDelivery(ctx context.Context, eventType, outcome string)
}

// DedupHandler hands each event ID to the wrapped handler at most once per
// TTL. Keys live in a shared.IdempotencyStore, so replicas sharing Redis
// share the window. A failed delivery forgets its key and may be retried.
type DedupHandler struct {
	next     shared.EventHandler
	keys     shared.IdempotencyStore
	ttl      time.Duration
	recorder DeliveryRecorder
	logger   *zap.Logger
}

// DedupOption configures a DedupHandler
type DedupOption func(*DedupHandler)

// WithDedupTTL overrides how long a delivered event ID is remembered
func WithDedupTTL(ttl time.Duration) DedupOption {
	return func(h *DedupHandler) {
		if ttl > 0 {
			h.ttl = ttl
		}
	}
}

// WithDeliveryRecorder reports every delivery outcome to r
func WithDeliveryRecorder(r DeliveryRecorder) DedupOption {
	return func(h *DedupHandler) {
		h.recorder = r
	}
}

// NewDedupHandler wraps next. A nil store disables the duplicate check.
func NewDedupHandler(next shared.EventHandler, keys shared.IdempotencyStore, logger *zap.Logger, opts ...DedupOption) *DedupHandler {
	h := &DedupHandler{
		next:   next,
		keys:   keys,
		ttl:    shared.DefaultIdempotencyConfig().TTL,
		logger: logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// EventTypes delegates to the wrapped handler
func (h *DedupHandler) EventTypes() []string {
	return h.next.EventTypes()
}

// Handle delivers event unless its ID was already delivered within the TTL
func (h *DedupHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	if h.keys == nil {
		return h.deliver(ctx, event, "")
	}

	key := event.EventID().String()
	fresh, err := h.keys.MarkProcessed(ctx, key, h.ttl)
	switch {
	case err != nil:
		h.logger.Warn("Event key store unavailable, delivering unchecked",
			zap.String("event_id", key),
			zap.String("event_type", event.EventType()),
			zap.Error(err))
		h.record(ctx, event, DeliveryUnchecked)
		return h.deliver(ctx, event, "")
	case !fresh:
		h.logger.Debug("Duplicate event skipped",
			zap.String("event_id", key),
			zap.String("event_type", event.EventType()))
		h.record(ctx, event, DeliveryDuplicate)
		return nil
	}
	return h.deliver(ctx, event, key)
}

// deliver runs the wrapped handler. On failure a non-empty key is released.
func (h *DedupHandler) deliver(ctx context.Context, event shared.DomainEvent, key string) error {
	err := h.next.Handle(ctx, event)
	if err == nil {
		h.record(ctx, event, DeliveryProcessed)
		return nil
	}

	h.record(ctx, event, DeliveryFailed)
	if key != "" {
		if relErr := h.keys.Release(ctx, key); relErr != nil {
			h.logger.Warn("Failed to release event key",
				zap.String("event_id", key),
				zap.Error(relErr))
		}
	}
	return err
}

func (h *DedupHandler) record(ctx context.Context, event shared.DomainEvent, outcome string) {
	if h.recorder != nil {
		h.recorder.RecordEventDelivery(ctx, event.EventType(), outcome)
	}
}

var _ shared.EventHandler = (*DedupHandler)(nil)
