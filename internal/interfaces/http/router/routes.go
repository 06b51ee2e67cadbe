package router

import (
	"github.com/gin-gonic/gin"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// Handlers bundles the HTTP handlers of the storefront API
type Handlers struct {
	Auth       *handler.AuthHandler
	Cart       *handler.CartHandler
	Order      *handler.OrderHandler
	Product    *handler.ProductHandler
	AdminOrder *handler.AdminOrderHandler
	Customer   *handler.CustomerHandler
	Report     *handler.ReportHandler
	System     *handler.SystemHandler
}

// Guards configures the access control placed in front of the route groups
type Guards struct {
	Session middleware.SessionConfig
	// AuthLimiter throttles register and login; nil disables it
	AuthLimiter *middleware.RateLimiter
	Swagger     middleware.SwaggerConfig
}

// StorefrontGroups builds the API route groups. Public catalog and system
// routes are open, customer routes need a session and admin routes need
// a session with the ADMIN role.
func StorefrontGroups(h Handlers, g Guards) []*DomainGroup {
	session := middleware.Session(g.Session)

	products := NewDomainGroup("catalog", "/products")
	products.GET("", h.Product.List)
	products.GET("/:id", h.Product.Get)

	authRoutes := NewDomainGroup("auth", "/auth")
	credentials := authRoutes.Group("credentials", "")
	if g.AuthLimiter != nil {
		credentials.Use(middleware.AuthRateLimit(g.AuthLimiter))
	}
	credentials.POST("/register", h.Auth.Register)
	credentials.POST("/login", h.Auth.Login)
	authRoutes.POST("/logout", middleware.OptionalSession(g.Session), h.Auth.Logout)
	authRoutes.GET("/me", session, h.Auth.Me)

	cart := NewDomainGroup("cart", "/cart").Use(session)
	cart.GET("", h.Cart.GetCart)
	cart.POST("/add", h.Cart.AddItem)
	cart.PUT("/update", h.Cart.UpdateItem)
	cart.DELETE("/remove", h.Cart.RemoveItem)
	cart.DELETE("/clear", h.Cart.Clear)

	orders := NewDomainGroup("orders", "/orders").Use(session)
	orders.POST("/create", h.Order.Create)
	orders.GET("/:id", h.Order.Get)

	account := NewDomainGroup("account", "/account").Use(session)
	account.GET("/stats", h.Report.AccountStats)
	account.GET("/orders", h.Report.AccountOrders)

	admin := NewDomainGroup("admin", "/admin").Use(session, middleware.RequireRole(string(identity.RoleAdmin)))
	admin.GET("/dashboard", h.Report.Dashboard)

	adminProducts := admin.Group("admin-products", "/products")
	adminProducts.GET("", h.Product.AdminList)
	adminProducts.POST("", h.Product.Create)
	adminProducts.POST("/images/upload-url", h.Product.CreateUploadURL)
	adminProducts.GET("/:id", h.Product.AdminGet)
	adminProducts.PUT("/:id", h.Product.Update)
	adminProducts.DELETE("/:id", h.Product.Delete)

	adminOrders := admin.Group("admin-orders", "/orders")
	adminOrders.GET("", h.AdminOrder.List)
	adminOrders.GET("/:id", h.AdminOrder.Get)
	adminOrders.PATCH("/:id", h.AdminOrder.ChangeStatus)

	adminCustomers := admin.Group("admin-customers", "/customers")
	adminCustomers.GET("", h.Customer.List)
	adminCustomers.GET("/:id", h.Customer.Get)
	adminCustomers.PUT("/:id", h.Customer.Update)
	adminCustomers.DELETE("/:id", h.Customer.Delete)

	system := NewDomainGroup("system", "/system")
	system.GET("/info", h.System.GetSystemInfo)
	system.GET("/ping", h.System.Ping)

	health := NewDomainGroup("health", "/health")
	health.GET("", h.System.Health)

	return []*DomainGroup{products, authRoutes, cart, orders, account, admin, system, health}
}

// Mount registers the storefront API on the engine together with the root
// health probe and the guarded API docs
func Mount(engine *gin.Engine, h Handlers, g Guards, opts ...RouterOption) *Router {
	r := NewRouter(engine, opts...)
	for _, group := range StorefrontGroups(h, g) {
		r.Register(group)
	}
	r.Setup()

	engine.GET("/health", h.System.Health)
	engine.GET("/swagger/*any",
		middleware.SwaggerProtection(g.Swagger),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
	return r
}
