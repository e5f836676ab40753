package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Asmaa63/Shop-Website-sub001/internal/api/handlers"
	"github.com/Asmaa63/Shop-Website-sub001/internal/api/middleware"
	"github.com/Asmaa63/Shop-Website-sub001/internal/config"
	"github.com/Asmaa63/Shop-Website-sub001/internal/events"
	"github.com/Asmaa63/Shop-Website-sub001/internal/repository"
	"github.com/Asmaa63/Shop-Website-sub001/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(
	cfg *config.Config,
	repos *repository.Repositories,
	carts repository.CartStore,
	provider service.ProviderClient,
	producer *events.Producer,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Payment webhook: raw-body HMAC verification happens inside the handler
	router.POST("/webhooks/payment", handlers.HandlePaymentWebhook(cfg, repos, provider, producer, logger))

	// API v1 routes
	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/register", handlers.HandleRegister(repos, logger))
			auth.POST("/login", handlers.HandleLogin(repos, logger))
			auth.POST("/logout", handlers.HandleLogout(repos, logger))
		}

		v1.GET("/products", handlers.HandleListProducts(repos, logger))
		v1.GET("/products/:id", handlers.HandleGetProduct(repos, logger))

		// Cart and checkout allow guests (X-Cart-Session header) as well as
		// authenticated users
		shopRoutes := v1.Group("")
		shopRoutes.Use(middleware.OptionalAuthMiddleware(repos, logger))
		{
			shopRoutes.GET("/cart", handlers.HandleGetCart(carts, logger))
			shopRoutes.GET("/cart/live", handlers.HandleWatchCart(carts, logger))
			shopRoutes.POST("/cart/items", handlers.HandleAddCartItem(repos, carts, logger))
			shopRoutes.PATCH("/cart/items/:id", handlers.HandleUpdateCartItem(carts, logger))
			shopRoutes.DELETE("/cart/items/:id", handlers.HandleRemoveCartItem(carts, logger))
			shopRoutes.DELETE("/cart", handlers.HandleClearCart(carts, logger))

			shopRoutes.POST("/checkout/session", handlers.HandleCreateCheckoutSession(cfg, repos, carts, provider, logger))
		}

		// Customer order views (require authentication)
		orderRoutes := v1.Group("/orders")
		orderRoutes.Use(middleware.AuthMiddleware(repos, logger))
		{
			orderRoutes.GET("", handlers.HandleListMyOrders(repos, logger))
			orderRoutes.GET("/:id", handlers.HandleGetOrder(repos, provider, producer, logger))
		}

		// Admin console
		adminRoutes := v1.Group("/admin")
		adminRoutes.Use(middleware.AuthMiddleware(repos, logger))
		adminRoutes.Use(middleware.AdminRequired())
		{
			adminRoutes.GET("/orders", handlers.HandleAdminListOrders(repos, logger))
			adminRoutes.POST("/orders", handlers.HandleAdminCreateOrder(repos, provider, producer, logger))
			adminRoutes.PATCH("/orders/:id/status", handlers.HandleAdminUpdateOrderStatus(repos, provider, producer, logger))
			adminRoutes.POST("/products", handlers.HandleCreateProduct(repos, logger))
		}
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal server error",
		})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
