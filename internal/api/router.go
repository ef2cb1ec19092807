package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/pharmarun/pharmacy-delivery/internal/api/handler"
	"github.com/pharmarun/pharmacy-delivery/internal/api/middleware"
	"github.com/pharmarun/pharmacy-delivery/internal/core/domain"
	"github.com/pharmarun/pharmacy-delivery/internal/core/ports"
	"github.com/pharmarun/pharmacy-delivery/internal/core/store"
)

// Dependencies carries everything the router needs, already wired. Services
// are constructed in main so the notification dispatcher can sit between the
// order service and the notification service.
type Dependencies struct {
	Store         *store.Store
	Backend       ports.StorageBackend
	Auth          ports.AuthService
	Users         ports.UserService
	Products      ports.ProductService
	Inventory     ports.InventoryService
	Orders        ports.OrderService
	Carts         ports.CartService
	Notifications ports.NotificationService
	JWTSecret     string
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("pharmarun"))

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Users)
	productHandler := handler.NewProductHandler(deps.Products)
	inventoryHandler := handler.NewInventoryHandler(deps.Inventory)
	orderHandler := handler.NewOrderHandler(deps.Orders)
	cartHandler := handler.NewCartHandler(deps.Carts)
	notificationHandler := handler.NewNotificationHandler(deps.Notifications)
	adminHandler := handler.NewAdminHandler(deps.Store)

	auth := middleware.Auth(deps.JWTSecret)

	// --- Public routes ---
	e.POST("/auth/register", authHandler.Register)
	e.POST("/auth/login", authHandler.Login)

	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Backend)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Authenticated routes ---
	v1 := e.Group("/v1", auth)

	// Profile and sub-collections.
	v1.GET("/me", userHandler.Me)
	v1.PATCH("/me", userHandler.UpdateMe)
	v1.DELETE("/me", userHandler.DeactivateMe)
	v1.POST("/me/addresses", userHandler.AddAddress)
	v1.PUT("/me/addresses/:address_id", userHandler.UpdateAddress)
	v1.DELETE("/me/addresses/:address_id", userHandler.RemoveAddress)
	v1.POST("/me/payment-methods", userHandler.AddPaymentMethod)
	v1.DELETE("/me/payment-methods/:payment_method_id", userHandler.RemovePaymentMethod)

	// Catalog.
	v1.GET("/products", productHandler.List)
	v1.GET("/products/mine", productHandler.ListMine, middleware.RBAC(domain.RolePharmacy))
	v1.GET("/products/:id", productHandler.Get)
	pharmacyOrAdmin := middleware.RBAC(domain.RolePharmacy, domain.RoleAdmin)
	v1.POST("/products", productHandler.Create, pharmacyOrAdmin)
	v1.PATCH("/products/:id", productHandler.Update, pharmacyOrAdmin)
	v1.DELETE("/products/:id", productHandler.Delete, pharmacyOrAdmin)
	v1.POST("/products/:id/stock", productHandler.AdjustStock, pharmacyOrAdmin)

	// Inventory.
	v1.POST("/inventory/check", inventoryHandler.Check)

	// Cart (customers only).
	customerOnly := middleware.RBAC(domain.RoleCustomer)
	v1.GET("/cart", cartHandler.Get, customerOnly)
	v1.POST("/cart/items", cartHandler.AddItem, customerOnly)
	v1.PUT("/cart/items/:product_id", cartHandler.UpdateItem, customerOnly)
	v1.DELETE("/cart/items/:product_id", cartHandler.RemoveItem, customerOnly)
	v1.DELETE("/cart", cartHandler.Clear, customerOnly)

	// Orders.
	v1.POST("/orders", orderHandler.Create, customerOnly)
	v1.POST("/orders/checkout", orderHandler.Checkout, customerOnly)
	v1.GET("/orders", orderHandler.List)
	v1.GET("/orders/number/:order_number", orderHandler.GetByNumber)
	v1.GET("/orders/:id", orderHandler.Get)
	v1.PATCH("/orders/:id/status", orderHandler.UpdateStatus,
		middleware.RBAC(domain.RolePharmacy, domain.RoleRider, domain.RoleAdmin))
	v1.POST("/orders/:id/cancel", orderHandler.Cancel,
		middleware.RBAC(domain.RoleCustomer, domain.RolePharmacy, domain.RoleAdmin))

	// Notifications.
	v1.GET("/notifications", notificationHandler.List)
	v1.POST("/notifications/:id/read", notificationHandler.MarkRead)
	v1.POST("/notifications/read-all", notificationHandler.MarkAllRead)

	// Admin.
	adminOnly := middleware.RBAC(domain.RoleAdmin)
	v1.GET("/users", userHandler.List, adminOnly)
	v1.GET("/users/:id", userHandler.Get, adminOnly)
	v1.DELETE("/users/:id", userHandler.Deactivate, adminOnly)
	v1.GET("/admin/snapshot", adminHandler.ExportSnapshot, adminOnly)
	v1.PUT("/admin/snapshot", adminHandler.ImportSnapshot, adminOnly)

	return e
}
