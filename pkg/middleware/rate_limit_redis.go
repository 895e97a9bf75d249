package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/codrift/codrift/backend/go-services/pkg/metrics"
)

// RedisRateLimitMiddleware enforces a fixed-window limit shared by all
// replicas: INCR a per-key window counter and reject once it exceeds
// floor(rps*window)+burst. Coarser than a token bucket, but deterministic
// across instances. Falls back to the in-memory limiter when client is nil.
func RedisRateLimitMiddleware(client *redis.Client, rps float64, burst int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		return RateLimitMiddleware(rps, burst)
	}
	winSecs := int64(window.Seconds())
	if winSecs < 1 {
		winSecs = 1
	}
	budget := int64(rps*float64(winSecs)) + int64(burst)
	return func(c *gin.Context) {
		window := time.Now().Unix() / winSecs
		key := fmt.Sprintf("rl:%s:%d", limitKey(c), window)

		n, err := client.Incr(c.Request.Context(), key).Result()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			return
		}
		if n == 1 {
			_ = client.Expire(c.Request.Context(), key, time.Duration(winSecs+1)*time.Second).Err()
		}
		if n > budget {
			c.Header("Retry-After", fmt.Sprintf("%d", winSecs))
			metrics.RateLimitRejected.WithLabelValues("redis").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("redis").Inc()
		c.Next()
	}
}
