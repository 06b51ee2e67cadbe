package trade

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shopping"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

const idempotencyKeyPrefix = "checkout:"

// CheckoutMetrics records checkouts that did not commit. Committed orders
// are counted by the OrderPlaced subscriber.
type CheckoutMetrics interface {
	RecordCheckoutFailure(ctx context.Context, code string)
}

// CheckoutService places orders from the caller's open cart
type CheckoutService struct {
	orderRepo      trade.OrderRepository
	idempotency    shared.IdempotencyStore
	eventPublisher shared.EventPublisher
	metrics        CheckoutMetrics
	totalPolicy    string
	pricing        trade.PricingRules
	idempotencyTTL time.Duration
	exposeDetail   bool
	logger         *zap.Logger
}

// NewCheckoutService creates a new CheckoutService
func NewCheckoutService(orderRepo trade.OrderRepository, cfg config.CheckoutConfig, logger *zap.Logger) *CheckoutService {
	policy := cfg.TotalPolicy
	if policy != config.TotalPolicyVerify {
		policy = config.TotalPolicyTrust
	}
	ttl := cfg.IdempotencyTTL
	if ttl <= 0 {
		ttl = shared.DefaultIdempotencyConfig().TTL
	}
	return &CheckoutService{
		orderRepo:      orderRepo,
		totalPolicy:    policy,
		idempotencyTTL: ttl,
		pricing: trade.PricingRules{
			ShippingFee:      cfg.ShippingFee,
			FreeShippingOver: cfg.FreeShippingOver,
			TaxRate:          cfg.TaxRate,
		},
		logger:         logger,
	}
}

// SetEventPublisher sets the publisher for OrderPlaced events
func (s *CheckoutService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetIdempotencyStore enables Idempotency-Key de-duplication
func (s *CheckoutService) SetIdempotencyStore(store shared.IdempotencyStore) {
	s.idempotency = store
}

// SetMetrics sets the checkout metrics recorder
func (s *CheckoutService) SetMetrics(metrics CheckoutMetrics) {
	s.metrics = metrics
}

// SetExposeErrorDetail attaches the underlying cause to ORDER_CREATION_FAILED messages.
// Only enable it in development.
func (s *CheckoutService) SetExposeErrorDetail(expose bool) {
	s.exposeDetail = expose
}

// PlaceOrder turns the caller's open cart into an order in one transaction
func (s *CheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (result *PlaceOrderResult, err error) {
	method, err := trade.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		s.recordFailure(ctx, trade.ErrInvalidPaymentMethod.Code)
		return nil, err
	}
	ctx, span := telemetry.StartServiceSpan(ctx, "checkout", "place_order",
		telemetry.WithAttribute(telemetry.SpanAttrUserID, userID.String()),
		telemetry.WithAttribute(telemetry.SpanAttrPaymentMethod, string(method)),
	)
	defer span.End()

	if key := strings.TrimSpace(input.IdempotencyKey); key != "" && s.idempotency != nil {
		storeKey := idempotencyKeyPrefix + userID.String() + ":" + key
		fresh, markErr := s.idempotency.MarkProcessed(ctx, storeKey, s.idempotencyTTL)
		switch {
		case markErr != nil:
			s.logger.Warn("Idempotency store unavailable, placing order without de-duplication",
				zap.String("user_id", userID.String()),
				zap.Error(markErr))
		case !fresh:
			s.recordFailure(ctx, trade.ErrDuplicateRequest.Code)
			telemetry.RecordError(span, trade.ErrDuplicateRequest)
			return nil, trade.ErrDuplicateRequest
		default:
			defer func() {
				if err == nil {
					return
				}
				if relErr := s.idempotency.Release(context.WithoutCancel(ctx), storeKey); relErr != nil {
					s.logger.Warn("Failed to release idempotency key", zap.Error(relErr))
				}
			}()
		}
	}

	var placement *trade.Placement
	var placeErr error
	telemetry.WithProfilingLabels(ctx, telemetry.OperationLabels("checkout.place_order"), func(ctx context.Context) {
		placement, placeErr = s.orderRepo.Place(ctx, userID, s.orderBuilder(userID, method, input))
	})
	if placeErr != nil {
		err = s.translateFailure(ctx, userID, placeErr)
		telemetry.RecordError(span, err)
		return nil, err
	}

	order := placement.Order
	telemetry.SetAttributes(span,
		telemetry.SpanAttrOrderID, order.ID.String(),
		telemetry.SpanAttrOrderStatus, string(order.Status),
		telemetry.SpanAttrItemCount, order.ItemCount(),
		telemetry.SpanAttrAmount, order.TotalAmount.String(),
	)
	telemetry.SetOK(span)

	s.publishEvents(ctx, order)

	s.logger.Info("Order placed",
		zap.String("order_id", order.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("status", string(order.Status)),
		zap.String("total", order.TotalAmount.StringFixed(2)))

	return &PlaceOrderResult{
		OrderID:   order.ID,
		Order:     ToOrderResponse(order),
		Address:   ToAddressResponse(placement.Address),
		NewCartID: placement.NewCartID,
	}, nil
}

// orderBuilder runs inside the placement transaction on the freshly loaded open cart
func (s *CheckoutService) orderBuilder(userID uuid.UUID, method trade.PaymentMethod, input PlaceOrderInput) trade.OrderBuilder {
	return func(cart *shopping.Cart) (*trade.Address, *trade.Order, error) {
		total, err := s.resolveTotal(userID, cart, input.Total)
		if err != nil {
			return nil, nil, err
		}
		address, err := trade.NewShippingAddress(userID, input.ShippingAddress.toDomain())
		if err != nil {
			return nil, nil, err
		}
		order, err := trade.NewOrder(cart, address, method, total)
		if err != nil {
			return nil, nil, err
		}
		return address, order, nil
	}
}

// resolveTotal applies the configured total policy. The expected total is the
// cart subtotal at the prices loaded inside the transaction plus shipping and tax.
func (s *CheckoutService) resolveTotal(userID uuid.UUID, cart *shopping.Cart, submitted *decimal.Decimal) (decimal.Decimal, error) {
	computed := s.pricing.Total(cart.Subtotal())
	if submitted == nil {
		return computed, nil
	}
	client := submitted.Round(2)
	if client.Equal(computed) {
		return client, nil
	}

	fields := []zap.Field{
		zap.String("user_id", userID.String()),
		zap.String("submitted", client.StringFixed(2)),
		zap.String("computed", computed.StringFixed(2)),
	}
	if s.totalPolicy == config.TotalPolicyTrust {
		s.logger.Warn("Checkout total differs from the computed total", fields...)
		return client, nil
	}
	s.logger.Info("Checkout rejected on total mismatch", fields...)
	return decimal.Zero, trade.ErrTotalMismatch
}

// translateFailure keeps business failures and hides everything else behind ORDER_CREATION_FAILED
func (s *CheckoutService) translateFailure(ctx context.Context, userID uuid.UUID, err error) error {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		s.recordFailure(ctx, domainErr.Code)
		return err
	}

	s.logger.Error("Order creation failed",
		zap.String("user_id", userID.String()),
		zap.Error(err))
	s.recordFailure(ctx, trade.ErrOrderCreationFailed.Code)

	if s.exposeDetail {
		return shared.NewDomainError(trade.ErrOrderCreationFailed.Code, trade.ErrOrderCreationFailed.Message+": "+err.Error())
	}
	return trade.ErrOrderCreationFailed
}

func (s *CheckoutService) recordFailure(ctx context.Context, code string) {
	if s.metrics != nil {
		s.metrics.RecordCheckoutFailure(ctx, code)
	}
}

func (s *CheckoutService) publishEvents(ctx context.Context, order *trade.Order) {
	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, order.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish order events",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}
	order.ClearDomainEvents()
}
