package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	catalogapp "github.com/storefront/backend/internal/application/catalog"
	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/application/report"
	"github.com/storefront/backend/internal/application/shopping"
	"github.com/storefront/backend/internal/application/trade"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/persistence"
	"github.com/storefront/backend/internal/infrastructure/storage"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/tests/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testPassword = "secret123"

// testEnv wires the real services over an in-memory SQLite database
type testEnv struct {
	db        *gorm.DB
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	events    *testutil.RecordingPublisher

	userRepo    *persistence.GormUserRepository
	productRepo *persistence.GormProductRepository

	authService     *identityapp.AuthService
	customerService *identityapp.CustomerService
	cartService     *shopping.CartService
	checkoutService *trade.CheckoutService
	orderService    *trade.OrderService
	productService  *catalogapp.ProductService
	reportService   *report.ReportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewSQLiteDB(t, nil)
	log := zap.NewNop()

	env := &testEnv{
		db: db,
		jwt: auth.NewJWTService(config.JWTConfig{
			Secret:     "test-secret-key-32-characters-long",
			Expiration: time.Hour,
			Issuer:     "storefront-test",
		}),
		blacklist:   auth.NewInMemoryTokenBlacklist(),
		events:      testutil.NewRecordingPublisher(),
		userRepo:    persistence.NewGormUserRepository(db),
		productRepo: persistence.NewGormProductRepository(db),
	}

	cartRepo := persistence.NewGormCartRepository(db)
	orderRepo := persistence.NewGormOrderRepository(db)
	statsRepo := persistence.NewGormOrderStatsRepository(db)
	addressRepo := persistence.NewGormAddressRepository(db)

	env.authService = identityapp.NewAuthService(env.userRepo, env.jwt, env.blacklist, log)
	env.customerService = identityapp.NewCustomerService(
		env.userRepo, orderRepo, statsRepo, addressRepo, env.blacklist, time.Hour, log,
	)
	env.cartService = shopping.NewCartService(cartRepo, env.productRepo, log)
	env.checkoutService = trade.NewCheckoutService(orderRepo, config.CheckoutConfig{
		TotalPolicy: config.TotalPolicyVerify,
	}, log)
	env.checkoutService.SetEventPublisher(env.events)
	env.orderService = trade.NewOrderService(orderRepo, log)
	env.orderService.SetEventPublisher(env.events)
	env.productService = catalogapp.NewProductService(
		env.productRepo, storage.NewStubObjectStorage("https://cdn.test"), log,
	)
	env.productService.SetEventPublisher(env.events)
	env.reportService = report.NewReportService(orderRepo, statsRepo, env.productRepo, env.userRepo, log)

	return env
}

func (e *testEnv) sessionConfig() middleware.SessionConfig {
	return middleware.SessionConfig{JWTService: e.jwt, Blacklist: e.blacklist}
}

// customerRouter mounts routes behind a required session
func (e *testEnv) customerRouter(register func(rg *gin.RouterGroup)) *gin.Engine {
	router := gin.New()
	rg := router.Group("", middleware.Session(e.sessionConfig()))
	register(rg)
	return router
}

// adminRouter mounts routes behind a required ADMIN session
func (e *testEnv) adminRouter(register func(rg *gin.RouterGroup)) *gin.Engine {
	router := gin.New()
	rg := router.Group("", middleware.Session(e.sessionConfig()), middleware.RequireRole(string(identity.RoleAdmin)))
	register(rg)
	return router
}

func (e *testEnv) createUser(t *testing.T, email, name string, role identity.Role) *identity.User {
	t.Helper()
	user, err := identity.NewUser(email, testPassword, name, role)
	require.NoError(t, err)
	require.NoError(t, e.userRepo.Create(context.Background(), user))
	return user
}

func (e *testEnv) cookieFor(t *testing.T, user *identity.User) *http.Cookie {
	t.Helper()
	session, err := e.jwt.GenerateToken(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.DefaultSessionCookie, Value: session.Token}
}

func (e *testEnv) createProduct(t *testing.T, name, price string, salePrice string) *catalog.Product {
	t.Helper()
	details := catalog.ProductDetails{
		Name:   name,
		Type:   "shirt",
		Gender: "men",
		Price:  decimal.RequireFromString(price),
	}
	if salePrice != "" {
		sale := decimal.RequireFromString(salePrice)
		details.SalePrice = &sale
	}
	product, err := catalog.NewProduct(details)
	require.NoError(t, err)
	require.NoError(t, product.ReplaceFacets(
		[]catalog.ImageInput{{URL: "https://cdn.test/" + name + ".jpg"}},
		[]catalog.ColorInput{{Name: "Black", Color: "#000000"}},
		[]string{"M", "L"},
	))
	require.NoError(t, e.productRepo.Create(context.Background(), product))
	return product
}
