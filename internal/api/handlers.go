package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Version is reported by the health endpoints
const Version = "v1.0.0"

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "WorldChef API is running",
		"version": Version,
	})
}

// ReadinessHandler reports whether the dependencies the server uses are
// reachable
type ReadinessHandler struct {
	redis   *redis.Client
	timeout time.Duration
}

// NewReadinessHandler creates a readiness probe. redisClient may be nil when
// Redis is not configured.
func NewReadinessHandler(redisClient *redis.Client) *ReadinessHandler {
	return &ReadinessHandler{redis: redisClient, timeout: 2 * time.Second}
}

// Ready answers 200 when every configured dependency responds
func (h *ReadinessHandler) Ready(c *gin.Context) {
	checks := gin.H{}
	ready := true

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "unavailable"
			ready = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": checks})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": checks})
}
