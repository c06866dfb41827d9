package middleware

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"contact-form-service/pkg/apperror"
	"contact-form-service/pkg/logger"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for rate limiting
type RateLimitConfig struct {
	// Requests per window
	Limit int
	// Time window duration
	Window time.Duration
	// Custom key extractor (default: IP-based)
	KeyFunc func(*gin.Context) string
	// Key prefix for Redis (default: "rl:ip:")
	KeyPrefix string
	// Whether to fail closed (reject) when Redis is unavailable
	FailClosed bool
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key
// ARGV[1] = TTL in seconds
// Returns: [current_count, ttl_remaining]
const rateLimitLuaScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('TTL', KEYS[1])
return {count, ttl}
`

// DefaultRateLimitConfig applies to every route
func DefaultRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	return RateLimitConfig{
		Limit:      limit,
		Window:     window,
		KeyPrefix:  "rl:ip:",
		FailClosed: false, // Fail open by default for availability
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	}
}

// SubmitRateLimitConfig is the stricter budget for submit attempts
func SubmitRateLimitConfig(limit int, window time.Duration) RateLimitConfig {
	cfg := DefaultRateLimitConfig(limit, window)
	cfg.KeyPrefix = "rl:submit:"
	return cfg
}

// RateLimiter counts requests in Redis when a client is given and falls
// back to per-key token buckets in memory otherwise.
type RateLimiter struct {
	config RateLimitConfig
	redis  *goredis.Client

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastPrune time.Time
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(config RateLimitConfig, redisClient *goredis.Client) *RateLimiter {
	if config.Limit < 1 {
		config.Limit = 1
	}
	if config.Window <= 0 {
		config.Window = time.Minute
	}
	if config.KeyFunc == nil {
		config.KeyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	return &RateLimiter{
		config:    config,
		redis:     redisClient,
		visitors:  make(map[string]*visitor),
		lastPrune: time.Now(),
	}
}

// RateLimitMiddleware creates a rate limiting middleware with the given config
func RateLimitMiddleware(config RateLimitConfig, redisClient *goredis.Client) gin.HandlerFunc {
	return NewRateLimiter(config, redisClient).Handler()
}

func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.config.KeyPrefix + rl.config.KeyFunc(c)

		var (
			allowed   bool
			remaining int
			resetAt   time.Time
		)

		if rl.redis != nil {
			count, reset, err := rl.checkRedis(c.Request.Context(), key)
			if err != nil {
				logger.Log.Warn("Rate limit backend error",
					"error", err,
					"request_id", c.GetString(RequestIDKey),
				)
				if rl.config.FailClosed {
					_ = c.Error(apperror.Unavailable("Service temporarily unavailable. Please try again.", err))
					c.Abort()
					return
				}
				allowed, remaining, resetAt = rl.checkInMemory(key, time.Now())
			} else {
				allowed = count <= rl.config.Limit
				remaining = rl.config.Limit - count
				resetAt = reset
			}
		} else {
			allowed, remaining, resetAt = rl.checkInMemory(key, time.Now())
		}

		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Header("X-RateLimit-Reset", resetAt.Format(time.RFC3339))

		if !allowed {
			retryAfter := int(time.Until(resetAt).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.Itoa(retryAfter))

			logger.Log.Warn("Rate limit exceeded",
				"client_ip", c.ClientIP(),
				"path", c.FullPath(),
				"request_id", c.GetString(RequestIDKey),
			)
			_ = c.Error(apperror.TooManyRequests("Rate limit exceeded. Please try again later."))
			c.Abort()
			return
		}

		c.Next()
	}
}

// checkRedis checks rate limit using Redis with atomic Lua script
func (rl *RateLimiter) checkRedis(ctx context.Context, key string) (int, time.Time, error) {
	ttlSeconds := int(rl.config.Window.Seconds())
	if ttlSeconds < 1 {
		ttlSeconds = 1
	}

	result, err := rl.redis.Eval(ctx, rateLimitLuaScript, []string{key}, ttlSeconds).Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("redis rate limit eval failed: %w", err)
	}

	arr, ok := result.([]interface{})
	if !ok || len(arr) < 2 {
		return 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}

	count, _ := arr[0].(int64)
	ttl, _ := arr[1].(int64)

	return int(count), time.Now().Add(time.Duration(ttl) * time.Second), nil
}

// checkInMemory spends one token from the key's bucket. The bucket holds
// Limit tokens and refills at Limit per Window.
func (rl *RateLimiter) checkInMemory(key string, now time.Time) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.pruneLocked(now)

	v, ok := rl.visitors[key]
	if !ok {
		every := rl.config.Window / time.Duration(rl.config.Limit)
		v = &visitor{limiter: rate.NewLimiter(rate.Every(every), rl.config.Limit)}
		rl.visitors[key] = v
	}
	v.lastSeen = now

	allowed := v.limiter.AllowN(now, 1)
	tokens := v.limiter.TokensAt(now)

	// Time until the bucket is full again
	missing := float64(rl.config.Limit) - tokens
	resetAt := now
	if missing > 0 {
		resetAt = now.Add(time.Duration(missing / float64(v.limiter.Limit()) * float64(time.Second)))
	}
	return allowed, int(tokens), resetAt
}

// pruneLocked drops visitors idle for a full window, at most once per window
func (rl *RateLimiter) pruneLocked(now time.Time) {
	if now.Sub(rl.lastPrune) < rl.config.Window {
		return
	}
	for key, v := range rl.visitors {
		if now.Sub(v.lastSeen) > rl.config.Window {
			delete(rl.visitors, key)
		}
	}
	rl.lastPrune = now
}
