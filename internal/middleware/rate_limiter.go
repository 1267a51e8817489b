package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stagedoor/backend/internal/cache"
	"github.com/stagedoor/backend/internal/config"
	"github.com/stagedoor/backend/internal/metrics"
	"github.com/stagedoor/backend/internal/utils"
)

// RateLimiter creates a rate limiting middleware
func RateLimiter(store cache.Store, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		// Get client IP
		clientIP := c.ClientIP()
		key := fmt.Sprintf("rate_limit:%s", clientIP)

		count, err := store.Incr(ctx, key, cfg.RateLimitDuration)
		if err != nil {
			// Log error and bypass if the store fails
			utils.Log.WithError(err).Warn("Rate limiter unavailable")
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", cfg.RateLimitRequests))
		if count > int64(cfg.RateLimitRequests) {
			// Rate limit exceeded
			ttl, _ := store.TTL(ctx, key)
			metrics.RateLimited.Inc()
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", time.Now().Add(ttl).Unix()))
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       "Too many requests",
				"retry_after": ttl.Seconds(),
			})
			c.Abort()
			return
		}
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", int64(cfg.RateLimitRequests)-count))

		c.Next()
	}
}
