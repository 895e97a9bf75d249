package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/codrift/codrift/backend/go-services/pkg/metrics"
)

func limitedRouter(rps float64, burst int, pre ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(pre...)
	r.Use(RateLimitMiddleware(rps, burst))
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	return r
}

func hit(r *gin.Engine) int {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	r := limitedRouter(10, 2)
	require.Equal(t, http.StatusOK, hit(r))
	require.Equal(t, http.StatusOK, hit(r))

	after := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	require.Equal(t, 2.0, after-before)
}

func TestRateLimitMiddleware_BlocksThenReplenishes(t *testing.T) {
	r := limitedRouter(2, 1)

	require.Equal(t, http.StatusOK, hit(r))
	require.Equal(t, http.StatusTooManyRequests, hit(r))

	// one token replenishes after ~500ms at 2 rps
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusOK, hit(r))
}

func TestRateLimitMiddleware_KeysBySubject(t *testing.T) {
	sub := "uid-rate-1"
	r := limitedRouter(0.5, 1, func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": sub})
		c.Next()
	})

	require.Equal(t, http.StatusOK, hit(r))
	require.Equal(t, http.StatusTooManyRequests, hit(r))

	// a different subject gets its own bucket
	sub = "uid-rate-2"
	require.Equal(t, http.StatusOK, hit(r))
}
