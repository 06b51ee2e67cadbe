package telemetry

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when a metrics set is built without a meter
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// ShopMetrics holds the storefront business instruments
type ShopMetrics struct {
	ordersPlaced     *Counter
	orderValue       *Histogram
	revenue          metric.Float64Counter
	statusChanges    *Counter
	checkoutFailures *Counter
	cartMutations    *Counter
	eventDeliveries  *Counter
}

// NewShopMetrics creates the storefront instruments on meter
func NewShopMetrics(meter metric.Meter) (*ShopMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	m := &ShopMetrics{}
	var err error

	if m.ordersPlaced, err = NewCounter(meter, "shop_orders_placed_total", "Orders committed by checkout", "{order}"); err != nil {
		return nil, err
	}
	if m.orderValue, err = NewHistogram(meter, HistogramOpts{
		Name:        "shop_order_value",
		Description: "Distribution of order totals",
		Unit:        "{currency}",
		Boundaries:  OrderValueBuckets,
	}); err != nil {
		return nil, err
	}
	if m.revenue, err = meter.Float64Counter("shop_order_amount_total",
		metric.WithDescription("Sum of order totals at placement"),
		metric.WithUnit("{currency}"),
	); err != nil {
		return nil, err
	}
	if m.statusChanges, err = NewCounter(meter, "shop_order_status_changes_total", "Admin order status transitions", "{transition}"); err != nil {
		return nil, err
	}
	if m.checkoutFailures, err = NewCounter(meter, "shop_checkout_failures_total", "Rejected or failed checkouts by error code", "{checkout}"); err != nil {
		return nil, err
	}
	if m.cartMutations, err = NewCounter(meter, "shop_cart_mutations_total", "Cart add, update, remove and clear operations", "{operation}"); err != nil {
		return nil, err
	}
	if m.eventDeliveries, err = NewCounter(meter, "shop_event_deliveries_total", "Domain event deliveries by event type and outcome", "{event}"); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordOrderPlaced counts a committed order and its value
func (m *ShopMetrics) RecordOrderPlaced(ctx context.Context, paymentMethod, status string, total decimal.Decimal) {
	attrs := []attribute.KeyValue{AttrPaymentMethod.String(paymentMethod), AttrOrderStatus.String(status)}
	m.ordersPlaced.Inc(ctx, attrs...)
	amount := total.InexactFloat64()
	m.orderValue.Record(ctx, amount, attrs...)
	m.revenue.Add(ctx, amount, metric.WithAttributes(attrs...))
}

// RecordStatusChange counts an order transition
func (m *ShopMetrics) RecordStatusChange(ctx context.Context, from, to string) {
	m.statusChanges.Inc(ctx, AttrFromStatus.String(from), AttrOrderStatus.String(to))
}

// RecordCheckoutFailure counts a checkout that did not commit
func (m *ShopMetrics) RecordCheckoutFailure(ctx context.Context, code string) {
	m.checkoutFailures.Inc(ctx, AttrErrorCode.String(code))
}

// RecordCartMutation counts a cart write
func (m *ShopMetrics) RecordCartMutation(ctx context.Context, operation string) {
	m.cartMutations.Inc(ctx, AttrCartOperation.String(operation))
}

// RecordEventDelivery counts one delivery of a domain event to a deduplicated handler
func (m *ShopMetrics) RecordEventDelivery(ctx context.Context, eventType, outcome string) {
	m.eventDeliveries.Inc(ctx, AttrEventType.String(eventType), AttrOutcome.String(outcome))
}
