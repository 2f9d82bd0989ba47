package router

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/worldchef/backend/config"
	"github.com/pageza/worldchef/backend/internal/api"
	"github.com/pageza/worldchef/backend/internal/metrics"
	"github.com/pageza/worldchef/backend/internal/middleware"
	"github.com/pageza/worldchef/backend/internal/service"
)

// Dependencies are the process-wide resources the routes are built on.
// Redis and Metrics may be nil.
type Dependencies struct {
	Config  *config.Config
	Relay   service.IChatRelay
	Redis   *redis.Client
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) *gin.Engine {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Config.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(
		middleware.RequestID(),
		middleware.Logger(deps.Logger, "/health", "/api/health", "/ready", "/metrics"),
		middleware.Recovery(deps.Logger),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(deps.Config.AllowedOrigins),
	)
	router.NoRoute(middleware.NotFound())

	router.GET("/health", api.HealthCheck)
	router.GET("/api/health", api.HealthCheck)
	router.GET("/ready", api.NewReadinessHandler(deps.Redis).Ready)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	var chatMiddleware []gin.HandlerFunc
	if deps.Config.RateLimitPerMinute > 0 {
		limiter := middleware.NewChatRateLimiter(deps.Redis, deps.Config.RateLimitPerMinute, deps.Logger)
		chatMiddleware = append(chatMiddleware, limiter.RateLimitMiddleware())
	}

	v1 := router.Group("/api/v1")
	api.NewChatHandler(deps.Relay, deps.Logger).RegisterRoutes(v1, chatMiddleware...)

	return router
}
