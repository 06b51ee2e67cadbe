package identity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-that-is-long-enough-32",
		Expiration: time.Hour,
		Issuer:     "storefront-test",
	})
}

func newTestAuthService(repo *MockUserRepository, blacklist auth.TokenBlacklist) (*AuthService, *auth.JWTService) {
	jwtService := newTestJWTService()
	return NewAuthService(repo, jwtService, blacklist, zap.NewNop()), jwtService
}

func mustCustomer(t *testing.T, email, password string) *identity.User {
	t.Helper()
	u, err := identity.NewCustomer(email, password, "Test User")
	require.NoError(t, err)
	u.ClearDomainEvents()
	return u
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates customer and signs session", func(t *testing.T) {
		repo := new(MockUserRepository)
		publisher := new(MockEventPublisher)
		svc, jwtService := newTestAuthService(repo, auth.NewInMemoryTokenBlacklist())
		svc.SetEventPublisher(publisher)

		repo.On("ExistsByEmail", ctx, "new@example.com", uuid.Nil).Return(false, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*identity.User")).Return(nil)
		publisher.On("Publish", ctx, mock.MatchedBy(func(events []shared.DomainEvent) bool {
			return len(events) == 1 && events[0].EventType() == identity.EventTypeUserRegistered
		})).Return(nil)

		result, err := svc.Register(ctx, RegisterInput{Email: "  New@Example.com ", Password: "secret123", Name: "New"})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", result.User.Email)
		assert.Equal(t, "CUSTOMER", result.User.Role)

		claims, err := jwtService.ValidateToken(result.Session.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID.String(), claims.UserID)
		assert.Equal(t, "CUSTOMER", claims.Role)

		repo.AssertExpectations(t)
		publisher.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, nil)
		repo.On("ExistsByEmail", ctx, "taken@example.com", uuid.Nil).Return(true, nil)

		_, err := svc.Register(ctx, RegisterInput{Email: "taken@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, identity.ErrEmailTaken)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("lost insert race maps to email taken", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, nil)
		repo.On("ExistsByEmail", ctx, "race@example.com", uuid.Nil).Return(false, nil)
		repo.On("Create", ctx, mock.Anything).Return(shared.ErrAlreadyExists)

		_, err := svc.Register(ctx, RegisterInput{Email: "race@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, identity.ErrEmailTaken)
	})

	t.Run("weak password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, nil)
		repo.On("ExistsByEmail", ctx, "weak@example.com", uuid.Nil).Return(false, nil)

		_, err := svc.Register(ctx, RegisterInput{Email: "weak@example.com", Password: "123"})
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_PASSWORD", domainErr.Code)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()
	user := mustCustomer(t, "buyer@example.com", "secret123")

	t.Run("valid credentials", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, nil)
		repo.On("FindByEmail", ctx, "buyer@example.com").Return(user, nil)

		result, err := svc.Login(ctx, LoginInput{Email: "Buyer@example.com", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotEmpty(t, result.Session.Token)
		assert.True(t, result.Session.ExpiresAt.After(time.Now()))
	})

	t.Run("wrong password", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, nil)
		repo.On("FindByEmail", ctx, "buyer@example.com").Return(user, nil)

		_, err := svc.Login(ctx, LoginInput{Email: "buyer@example.com", Password: "wrong-password"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, nil)
		repo.On("FindByEmail", ctx, "ghost@example.com").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginInput{Email: "ghost@example.com", Password: "secret123"})
		assert.ErrorIs(t, err, identity.ErrInvalidCredentials)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	blacklist := auth.NewInMemoryTokenBlacklist()
	svc, _ := newTestAuthService(new(MockUserRepository), blacklist)

	require.NoError(t, svc.Logout(ctx, LogoutInput{TokenJTI: "jti-1", ExpiresAt: time.Now().Add(time.Hour)}))
	revoked, err := blacklist.IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	// expired and anonymous logouts are no-ops
	require.NoError(t, svc.Logout(ctx, LogoutInput{TokenJTI: "jti-2", ExpiresAt: time.Now().Add(-time.Minute)}))
	require.NoError(t, svc.Logout(ctx, LogoutInput{}))
	assert.Equal(t, 1, blacklist.Len())
}

func TestAuthService_Me(t *testing.T) {
	ctx := context.Background()
	user := mustCustomer(t, "me@example.com", "secret123")

	repo := new(MockUserRepository)
	svc, _ := newTestAuthService(repo, nil)
	repo.On("FindByID", ctx, user.ID).Return(user, nil)
	missing := uuid.New()
	repo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

	info, err := svc.Me(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, UserInfo{ID: user.ID, Email: "me@example.com", Name: "Test User", Role: "CUSTOMER"}, *info)

	_, err = svc.Me(ctx, missing)
	assert.ErrorIs(t, err, identity.ErrUserNotFound)
}

func TestAuthService_EnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := config.AdminConfig{Email: "Admin@Shop.test", Password: "admin-pass", Name: "Admin"}

	t.Run("not configured", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, nil)
		require.NoError(t, svc.EnsureBootstrapAdmin(ctx, config.AdminConfig{}))
		repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
	})

	t.Run("creates missing admin", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, nil)
		repo.On("FindByEmail", ctx, "admin@shop.test").Return(nil, shared.ErrNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(u *identity.User) bool {
			return u.IsAdmin() && u.Email == "admin@shop.test" && u.VerifyPassword("admin-pass")
		})).Return(nil)

		require.NoError(t, svc.EnsureBootstrapAdmin(ctx, cfg))
		repo.AssertExpectations(t)
	})

	t.Run("promotes existing customer", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, nil)
		existing := mustCustomer(t, "admin@shop.test", "old-password")
		repo.On("FindByEmail", ctx, "admin@shop.test").Return(existing, nil)
		repo.On("Update", ctx, existing).Return(nil)

		require.NoError(t, svc.EnsureBootstrapAdmin(ctx, cfg))
		assert.True(t, existing.IsAdmin())
		assert.True(t, existing.VerifyPassword("old-password"))
	})

	t.Run("existing admin is left alone", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestAuthService(repo, nil)
		existing, err := identity.NewUser("admin@shop.test", "admin-pass", "Admin", identity.RoleAdmin)
		require.NoError(t, err)
		repo.On("FindByEmail", ctx, "admin@shop.test").Return(existing, nil)

		require.NoError(t, svc.EnsureBootstrapAdmin(ctx, cfg))
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}
