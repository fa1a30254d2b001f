package http

import (
	"github.com/gin-gonic/gin"
	"github.com/snapshop/shopkit/config"
	"go.uber.org/zap"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler, log *zap.SugaredLogger) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Sandbox.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	if log == nil {
		log = zap.NewNop().Sugar()
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware(log))
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(log))
	router.Use(CORSMiddleware(cfg.Sandbox.AllowedOrigins))

	// Meta endpoints
	router.GET("/", handler.Root)
	router.GET("/health", handler.HealthCheck)
	router.GET("/version", handler.Version)

	// API v1 routes
	v1 := router.Group("/v1")
	v1.Use(RateLimitMiddleware(cfg.Sandbox.RateLimit.PerMinute, cfg.Sandbox.RateLimit.Burst))
	{
		v1.POST("/identify", handler.Identify)
		v1.GET("/offers", handler.Offers)
	}

	return router
}
