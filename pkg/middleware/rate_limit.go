package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/codrift/codrift/backend/go-services/pkg/metrics"
)

// limitKey prefers the authenticated subject so users behind a shared NAT
// get independent budgets; unauthenticated traffic is keyed by client IP.
func limitKey(c *gin.Context) string {
	if v, ok := c.Get("claims"); ok {
		if cm, ok := v.(map[string]interface{}); ok {
			if sub, ok := cm["sub"].(string); ok && sub != "" {
				return "sub:" + sub
			}
		}
	}
	if ip := c.ClientIP(); ip != "" {
		return "ip:" + ip
	}
	return "ip:unknown"
}

// memoryLimiters hands out one token bucket per key.
type memoryLimiters struct {
	rps   float64
	burst int

	mu sync.Mutex
	m  map[string]*rate.Limiter
}

func (l *memoryLimiters) get(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	lim, ok := l.m[key]
	if !ok {
		lim = rate.NewLimiter(rate.Limit(l.rps), l.burst)
		l.m[key] = lim
	}
	return lim
}

// RateLimitMiddleware enforces a per-key token bucket held in process
// memory. Single-instance deployments use this; multi-instance ones use the
// Redis variant so all replicas share one budget.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	limiters := &memoryLimiters{rps: rps, burst: burst, m: make(map[string]*rate.Limiter)}
	return func(c *gin.Context) {
		if !limiters.get(limitKey(c)).Allow() {
			c.Header("Retry-After", "1")
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
