package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"

	"safetrail/models"
	"safetrail/utils"
)

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Redis     *redis.Client
	Requests  int
	Window    time.Duration
	KeyPrefix string
}

// RateLimiter throttles requests per user (falling back to client IP)
// using a Redis fixed window counter.
type RateLimiter struct {
	config RateLimitConfig
}

func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyPrefix == "" {
		config.KeyPrefix = "rate_limit"
	}
	return &RateLimiter{config: config}
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		key := rl.key(c)

		count, err := rl.config.Redis.Incr(c.Request.Context(), key).Result()
		if err != nil {
			// Redis down must not take the API with it.
			logrus.Warnf("Rate limiter unavailable: %v", err)
			c.Next()
			return
		}
		if count == 1 {
			rl.config.Redis.Expire(c.Request.Context(), key, rl.config.Window)
		}

		remaining := rl.config.Requests - int(count)
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.config.Requests))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if int(count) > rl.config.Requests {
			utils.RateLimitResponse(c, "Too many requests, slow down")
			c.Abort()
			return
		}

		c.Next()
	})
}

func (rl *RateLimiter) key(c *gin.Context) string {
	id := c.GetString("userID")
	if id == "" {
		id = c.ClientIP()
	}
	return fmt.Sprintf("%s:%s:%s", rl.config.KeyPrefix, c.FullPath(), id)
}

// PanicCooldown blocks repeated panic activations inside the cooldown
// window, so a stuck or mashed button does not re-dispatch the entire
// alert fan-out.
func PanicCooldown(redisClient *redis.Client, cooldown time.Duration) gin.HandlerFunc {
	return gin.HandlerFunc(func(c *gin.Context) {
		userID := c.GetString("userID")
		if userID == "" {
			c.Next()
			return
		}

		key := "panic_cooldown:" + userID
		set, err := redisClient.SetNX(c.Request.Context(), key, time.Now().Unix(), cooldown).Result()
		if err != nil {
			logrus.Warnf("Panic cooldown check unavailable: %v", err)
			c.Next()
			return
		}
		if !set {
			c.JSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error:   models.ErrCodeRateLimited,
				Message: "Emergency alert already dispatched moments ago",
				Code:    "PANIC_COOLDOWN",
			})
			c.Abort()
			return
		}

		c.Next()
	})
}
