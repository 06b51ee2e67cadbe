package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/trade"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// recentOrdersLimit is how many orders the customer detail shows
const recentOrdersLimit = 10

// CustomerService implements the admin customer back-office
type CustomerService struct {
	userRepo    identity.UserRepository
	orderRepo   trade.OrderRepository
	statsRepo   trade.OrderStatsRepository
	addressRepo trade.AddressRepository
	blacklist   auth.TokenBlacklist
	sessionTTL  time.Duration
	logger      *zap.Logger
}

// NewCustomerService creates a new CustomerService. sessionTTL bounds how long
// a revocation of a customer's sessions must be remembered.
func NewCustomerService(
	userRepo identity.UserRepository,
	orderRepo trade.OrderRepository,
	statsRepo trade.OrderStatsRepository,
	addressRepo trade.AddressRepository,
	blacklist auth.TokenBlacklist,
	sessionTTL time.Duration,
	logger *zap.Logger,
) *CustomerService {
	return &CustomerService{
		userRepo:    userRepo,
		orderRepo:   orderRepo,
		statsRepo:   statsRepo,
		addressRepo: addressRepo,
		blacklist:   blacklist,
		sessionTTL:  sessionTTL,
		logger:      logger,
	}
}

// List returns one page of users with their order summaries
func (s *CustomerService) List(ctx context.Context, input CustomerListInput) (*shared.Paginated[CustomerListItem], error) {
	filter := identity.UserFilter{
		Keyword:   strings.TrimSpace(input.Search),
		SortBy:    input.SortBy,
		SortOrder: input.SortOrder,
		Page:      input.Page,
		PageSize:  input.PageSize,
	}
	if input.Role != "" && !strings.EqualFold(input.Role, "all") {
		role := identity.Role(strings.ToUpper(input.Role))
		if !role.IsValid() {
			return nil, identity.ErrInvalidRole
		}
		filter.Role = role
	}

	users, total, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, len(users))
	for i := range users {
		ids[i] = users[i].ID
	}
	summaries, err := s.statsRepo.CustomerSummaries(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]CustomerListItem, len(users))
	for i, u := range users {
		summary := summaries[u.ID]
		items[i] = CustomerListItem{
			ID:            u.ID,
			Email:         u.Email,
			Name:          u.Name,
			Role:          string(u.Role),
			CreatedAt:     u.CreatedAt,
			TotalOrders:   summary.OrderCount,
			TotalSpent:    summary.TotalSpent,
			LastOrderDate: summary.LastOrderDate,
		}
	}

	page, pageSize := input.Page, input.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	result := shared.NewPaginated(items, total, page, pageSize)
	return &result, nil
}

// Get returns the customer with addresses, recent orders and order stats
func (s *CustomerService) Get(ctx context.Context, id uuid.UUID) (*CustomerDetail, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	addresses, err := s.addressRepo.FindByUser(ctx, id)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindByUser(ctx, id, recentOrdersLimit, 0)
	if err != nil {
		return nil, err
	}
	stats, err := s.statsRepo.UserStats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &CustomerDetail{
		User:      ToUserInfo(user),
		CreatedAt: user.CreatedAt,
		Addresses: addresses,
		Orders:    orders,
		Stats:     ToCustomerStats(stats),
	}, nil
}

// Update edits name, email and role. A role change revokes the customer's
// existing sessions so the new role takes effect immediately.
func (s *CustomerService) Update(ctx context.Context, id uuid.UUID, input UpdateCustomerInput) (*UserInfo, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Email != nil {
		email := identity.NormalizeEmail(*input.Email)
		if email != user.Email {
			taken, err := s.userRepo.ExistsByEmail(ctx, email, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, identity.ErrEmailTaken
			}
			if err := user.SetEmail(email); err != nil {
				return nil, err
			}
		}
	}
	if input.Name != nil {
		if err := user.SetName(*input.Name); err != nil {
			return nil, err
		}
	}

	roleChanged := false
	if input.Role != nil {
		role := identity.Role(strings.ToUpper(strings.TrimSpace(*input.Role)))
		if role != user.Role {
			if err := user.SetRole(role); err != nil {
				return nil, err
			}
			roleChanged = true
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, identity.ErrEmailTaken
		}
		return nil, err
	}

	if roleChanged {
		s.revokeSessions(ctx, id)
		s.logger.Info("Customer role changed",
			zap.String("user_id", id.String()),
			zap.String("role", string(user.Role)))
	}

	info := ToUserInfo(user)
	return &info, nil
}

// Delete removes a customer without order history along with their carts and addresses
func (s *CustomerService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findUser(ctx, id); err != nil {
		return err
	}

	if err := s.userRepo.DeleteWithDependents(ctx, id); err != nil {
		switch {
		case errors.Is(err, shared.ErrConflict):
			return identity.ErrCustomerHasOrders
		case errors.Is(err, shared.ErrNotFound):
			return identity.ErrUserNotFound
		}
		return err
	}

	s.revokeSessions(ctx, id)
	s.logger.Info("Customer deleted", zap.String("user_id", id.String()))
	return nil
}

func (s *CustomerService) findUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, identity.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *CustomerService) revokeSessions(ctx context.Context, id uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.AddUserTokensToBlacklist(ctx, id.String(), s.sessionTTL); err != nil {
		s.logger.Warn("Failed to revoke customer sessions", zap.String("user_id", id.String()), zap.Error(err))
	}
}
