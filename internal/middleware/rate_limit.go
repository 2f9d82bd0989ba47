package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimitConfig defines configuration for rate limiting
type RateLimitConfig struct {
	// Window is the time window for rate limiting
	Window time.Duration
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Key prefix for Redis keys
	KeyPrefix string
}

// RateLimiter counts requests per client in Redis. When Redis is absent or
// failing it falls back to an in-process token bucket per client.
type RateLimiter struct {
	redis    *redis.Client
	config   RateLimitConfig
	fallback *memoryLimiter
	logger   *zap.Logger
}

// NewRateLimiter creates a new rate limiter instance. redisClient may be nil.
func NewRateLimiter(redisClient *redis.Client, config RateLimitConfig, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{
		redis:    redisClient,
		config:   config,
		fallback: newMemoryLimiter(config.Limit, config.Window),
		logger:   logger,
	}
}

// NewChatRateLimiter limits chat requests to perMinute per client
func NewChatRateLimiter(redisClient *redis.Client, perMinute int, logger *zap.Logger) *RateLimiter {
	return NewRateLimiter(redisClient, RateLimitConfig{
		Window:    time.Minute,
		Limit:     perMinute,
		KeyPrefix: "rate_limit:chat",
	}, logger)
}

// RateLimitMiddleware returns a Gin middleware that enforces rate limiting
// keyed by client IP. A failing limiter never blocks the request.
func (rl *RateLimiter) RateLimitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		allowed, remaining, resetTime := rl.Allow(c.Request.Context(), c.ClientIP())

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

		if !allowed {
			retryAfter := int(time.Until(resetTime).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{Error: "rate limit exceeded"})
			return
		}

		c.Next()
	}
}

// Allow consults Redis first and the in-process limiter when Redis is
// unavailable
func (rl *RateLimiter) Allow(ctx context.Context, clientKey string) (bool, int, time.Time) {
	if rl.redis != nil {
		allowed, remaining, resetTime, err := rl.IsAllowed(ctx, clientKey)
		if err == nil {
			return allowed, remaining, resetTime
		}
		rl.logger.Warn("redis rate limit check failed, using in-process limiter", zap.Error(err))
	}
	return rl.fallback.allow(clientKey, time.Now())
}

// IsAllowed checks if a request from the given client is allowed within the
// current Redis window.
// Returns: allowed, remaining requests, reset time, error
func (rl *RateLimiter) IsAllowed(ctx context.Context, clientKey string) (bool, int, time.Time, error) {
	if rl.redis == nil {
		return false, 0, time.Time{}, fmt.Errorf("redis not configured")
	}

	now := time.Now()
	windowStart := now.Truncate(rl.config.Window)
	key := fmt.Sprintf("%s:%s:%d", rl.config.KeyPrefix, clientKey, windowStart.Unix())

	pipe := rl.redis.Pipeline()
	incrCmd := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.config.Window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, time.Time{}, err
	}

	count := int(incrCmd.Val())
	remaining := rl.config.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return count <= rl.config.Limit, remaining, windowStart.Add(rl.config.Window), nil
}

// memoryLimiter keeps one token bucket per client. Buckets idle for two
// windows are swept.
type memoryLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientBucket
	limit     int
	window    time.Duration
	every     rate.Limit
	nextSweep time.Time
}

type clientBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newMemoryLimiter(limit int, window time.Duration) *memoryLimiter {
	if limit < 1 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryLimiter{
		clients: make(map[string]*clientBucket),
		limit:   limit,
		window:  window,
		every:   rate.Every(window / time.Duration(limit)),
	}
}

func (m *memoryLimiter) allow(key string, now time.Time) (bool, int, time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if now.After(m.nextSweep) {
		for k, b := range m.clients {
			if now.Sub(b.lastSeen) > 2*m.window {
				delete(m.clients, k)
			}
		}
		m.nextSweep = now.Add(m.window)
	}

	b, ok := m.clients[key]
	if !ok {
		b = &clientBucket{limiter: rate.NewLimiter(m.every, m.limit)}
		m.clients[key] = b
	}
	b.lastSeen = now

	allowed := b.limiter.AllowN(now, 1)
	tokens := b.limiter.TokensAt(now)
	remaining := int(tokens)
	if remaining < 0 {
		remaining = 0
	}

	// time until the bucket is full again
	missing := float64(m.limit) - tokens
	reset := now.Add(time.Duration(missing * float64(time.Second) / float64(m.every)))

	return allowed, remaining, reset
}
