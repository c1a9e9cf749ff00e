package handlers

import (
	"context"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/crm-api/internal/constants"
	apierrors "github.com/yukikurage/crm-api/internal/errors"
	"github.com/yukikurage/crm-api/internal/metrics"
	"github.com/yukikurage/crm-api/internal/middleware"
	"github.com/yukikurage/crm-api/internal/services"
)

// Services bundles the business services served over HTTP.
type Services struct {
	Auth      *services.AuthService
	Users     *services.UserService
	Customers *services.CustomerService
	Products  *services.ProductService
	Orders    *services.OrderService
	Stats     *services.StatsService
	System    *services.SystemService
}

// RouterConfig carries the infrastructure the router is wired with.
type RouterConfig struct {
	Logger         zerolog.Logger
	SessionStore   sessions.Store
	Resolver       middleware.PrincipalResolver
	LoginLimit     middleware.LoginRateLimitPolicy
	LoginCounter   middleware.Counter
	Metrics        *metrics.HTTPMetrics
	MetricsHandler http.Handler
	HealthCheck    func(ctx context.Context) error
}

// NewRouter builds the gin engine with every route.
func NewRouter(cfg RouterConfig, svc Services) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestLogger(cfg.Logger), middleware.Recover(), cfg.Metrics.Middleware())
	r.Use(sessions.Sessions(constants.SessionCookieName, cfg.SessionStore))

	authHandler := NewAuthHandler(svc.Auth, svc.Users)
	userHandler := NewUserHandler(svc.Users)
	customerHandler := NewCustomerHandler(svc.Customers, svc.Orders)
	productHandler := NewProductHandler(svc.Products)
	orderHandler := NewOrderHandler(svc.Orders)
	systemHandler := NewSystemHandler(svc.Stats, svc.System)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		if cfg.HealthCheck != nil {
			if err := cfg.HealthCheck(c.Request.Context()); err != nil {
				zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("health.check_failed")
				apierrors.ServiceUnavailable(c, "")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "CRM API is running",
		})
	})
	if cfg.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(cfg.MetricsHandler))
	}

	requireAuth := middleware.RequireAuth(cfg.Resolver)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", middleware.LoginRateLimit(cfg.LoginLimit, cfg.LoginCounter), authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		me := api.Group("/me")
		me.Use(requireAuth)
		{
			me.GET("", authHandler.GetCurrentUser)
			me.PUT("", authHandler.UpdateProfile)
			me.PUT("/password", authHandler.ChangePassword)
		}

		api.GET("/roles", requireAuth, userHandler.ListRoles)

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", userHandler.ListUsers)
			users.POST("", userHandler.CreateUser)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.ArchiveUser)
			users.POST("/:id/restore", userHandler.RestoreUser)
			users.PUT("/:id/password", userHandler.ResetPassword)
		}

		customers := api.Group("/customers")
		customers.Use(requireAuth)
		{
			customers.GET("", customerHandler.ListCustomers)
			customers.POST("", customerHandler.CreateCustomer)
			customers.GET("/:id", customerHandler.GetCustomer)
			customers.PUT("/:id", customerHandler.UpdateCustomer)
			customers.DELETE("/:id", customerHandler.ArchiveCustomer)
			customers.POST("/:id/restore", customerHandler.RestoreCustomer)
			customers.GET("/:id/orders", customerHandler.ListCustomerOrders)
		}

		products := api.Group("/products")
		products.Use(requireAuth)
		{
			products.GET("", productHandler.ListProducts)
			products.POST("", productHandler.CreateProduct)
			products.GET("/:id", productHandler.GetProduct)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.ArchiveProduct)
			products.POST("/:id/restore", productHandler.RestoreProduct)
		}

		orders := api.Group("/orders")
		orders.Use(requireAuth)
		{
			orders.GET("", orderHandler.ListOrders)
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id", orderHandler.UpdateOrder)
			orders.DELETE("/:id", orderHandler.ArchiveOrder)
			orders.POST("/:id/restore", orderHandler.RestoreOrder)
		}

		api.GET("/dashboard/stats", requireAuth, systemHandler.DashboardStats)
		api.POST("/system/reset-data", requireAuth, systemHandler.ResetData)
	}

	return r
}
