package trade

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// Admin order page size bounds
const (
	defaultOrderPageSize = 20
	maxOrderPageSize     = 100
)

// OrderService serves order reads for customers and the admin back-office
type OrderService struct {
	orderRepo      trade.OrderRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(orderRepo trade.OrderRepository, logger *zap.Logger) *OrderService {
	return &OrderService{
		orderRepo: orderRepo,
		logger:    logger,
	}
}

// SetEventPublisher sets the publisher for OrderStatusChanged events
func (s *OrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// GetForUser returns an order only when its cart belongs to the user
func (s *OrderService) GetForUser(ctx context.Context, userID, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByIDForUser(ctx, orderID, userID)
	if err != nil {
		return nil, translateOrderErr(err)
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// List returns one admin page of orders, newest first
func (s *OrderService) List(ctx context.Context, query AdminOrderListQuery) (*shared.Paginated[OrderResponse], error) {
	page, pageSize := query.Page, query.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultOrderPageSize
	}
	if pageSize > maxOrderPageSize {
		pageSize = maxOrderPageSize
	}

	filter := shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "created_at",
		OrderDir: "desc",
		Search:   strings.TrimSpace(query.Search),
		Filters:  map[string]interface{}{},
	}
	if v := strings.TrimSpace(query.Status); v != "" && !strings.EqualFold(v, "all") {
		status, err := trade.ParseOrderStatus(v)
		if err != nil {
			return nil, err
		}
		filter.Filters["status"] = string(status)
	}

	orders, total, err := s.orderRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToOrderResponses(orders), total, page, pageSize)
	return &result, nil
}

// Get returns any order for the admin back-office
func (s *OrderService) Get(ctx context.Context, orderID uuid.UUID) (*OrderResponse, error) {
	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, translateOrderErr(err)
	}
	resp := ToOrderResponse(order)
	return &resp, nil
}

// ChangeStatus moves an order to the requested status. Re-applying the
// current status succeeds without writing.
func (s *OrderService) ChangeStatus(ctx context.Context, orderID uuid.UUID, input ChangeStatusInput) (*ChangeStatusResult, error) {
	target, err := trade.ParseOrderStatus(input.Status)
	if err != nil {
		return nil, err
	}

	order, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, translateOrderErr(err)
	}

	from := order.Status
	changed, err := order.ChangeStatus(target)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &ChangeStatusResult{Order: ToOrderResponse(order), Changed: false}, nil
	}

	if err := s.orderRepo.UpdateStatus(ctx, order, from); err != nil {
		return nil, err
	}

	if s.eventPublisher != nil {
		if err := s.eventPublisher.Publish(ctx, order.GetDomainEvents()...); err != nil {
			s.logger.Warn("Failed to publish order events",
				zap.String("order_id", order.ID.String()),
				zap.Error(err))
		}
	}
	order.ClearDomainEvents()

	s.logger.Info("Order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("from", string(from)),
		zap.String("to", string(target)))

	return &ChangeStatusResult{Order: ToOrderResponse(order), Changed: true}, nil
}

func translateOrderErr(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return trade.ErrOrderNotFound
	}
	return err
}
