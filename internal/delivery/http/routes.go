package http

import (
	"log/slog"

	"github.com/Houeta/pricewatch/internal/config"
	"github.com/gin-gonic/gin"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(env string, cfg config.HTTP, log *slog.Logger, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.AllowedOrigins))
	router.Use(RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst))
	router.Use(IdentityMiddleware())

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		products := v1.Group("/products")
		{
			products.POST("/track", handler.TrackProduct)
			products.GET("", handler.ListProducts)
			products.GET("/:id", handler.GetProduct)
			products.POST("/:id/alerts", handler.CreateAlert)
		}

		v1.POST("/notifications/price-alert", handler.SendPriceAlert)
	}

	return router
}
