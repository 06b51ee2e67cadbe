package report

import (
	"context"

	"github.com/google/uuid"
	tradeapp "github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/trade"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Account order paging bounds
const (
	defaultAccountOrdersLimit = 10
	maxAccountOrdersLimit     = 100
	dashboardRecentOrders     = 5
)

// ReportService provides the account and dashboard read-models
type ReportService struct {
	orderRepo   trade.OrderRepository
	statsRepo   trade.OrderStatsRepository
	productRepo catalog.ProductRepository
	userRepo    identity.UserRepository
	logger      *zap.Logger
}

// NewReportService creates a new ReportService
func NewReportService(
	orderRepo trade.OrderRepository,
	statsRepo trade.OrderStatsRepository,
	productRepo catalog.ProductRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		orderRepo:   orderRepo,
		statsRepo:   statsRepo,
		productRepo: productRepo,
		userRepo:    userRepo,
		logger:      logger,
	}
}

// AccountStats returns the caller's order counters and lifetime spend
func (s *ReportService) AccountStats(ctx context.Context, userID uuid.UUID) (*AccountStatsResponse, error) {
	stats, err := s.statsRepo.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &AccountStatsResponse{
		TotalOrders:     stats.TotalOrders,
		TotalSpent:      stats.TotalSpent,
		PendingOrders:   stats.PendingOrders,
		CompletedOrders: stats.CompletedOrders,
	}, nil
}

// AccountOrders returns the caller's orders newest first
func (s *ReportService) AccountOrders(ctx context.Context, userID uuid.UUID, query AccountOrdersQuery) ([]tradeapp.OrderResponse, error) {
	limit, offset := query.Limit, query.Offset
	if limit < 1 {
		limit = defaultAccountOrdersLimit
	}
	if limit > maxAccountOrdersLimit {
		limit = maxAccountOrdersLimit
	}
	if offset < 0 {
		offset = 0
	}

	orders, err := s.orderRepo.FindByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return tradeapp.ToOrderResponses(orders), nil
}

// Dashboard gathers the admin counters concurrently
func (s *ReportService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	var (
		stats     *trade.DashboardStats
		products  int64
		customers int64
		recent    []trade.Order
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats, err = s.statsRepo.Dashboard(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.productRepo.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		customers, err = s.userRepo.CountByRole(gctx, identity.RoleCustomer)
		return err
	})
	g.Go(func() (err error) {
		recent, err = s.statsRepo.Recent(gctx, dashboardRecentOrders)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("Failed to build dashboard", zap.Error(err))
		return nil, err
	}

	rows := make([]RecentOrder, len(recent))
	for i := range recent {
		o := &recent[i]
		row := RecentOrder{
			ID:        o.ID,
			Total:     o.TotalAmount,
			Status:    string(o.Status),
			CreatedAt: o.CreatedAt,
		}
		if o.Cart != nil && o.Cart.User != nil {
			row.CustomerName = o.Cart.User.DisplayName()
		}
		rows[i] = row
	}

	return &DashboardResponse{
		TotalOrders:    stats.TotalOrders,
		TotalRevenue:   stats.TotalRevenue,
		TotalProducts:  products,
		TotalCustomers: customers,
		PendingOrders:  stats.PendingOrders,
		RecentOrders:   rows,
	}, nil
}
