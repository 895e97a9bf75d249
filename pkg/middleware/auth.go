package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// Token exposes the claims of a verified credential.
type Token interface {
	Claims(v interface{}) error
}

// Verifier checks a raw bearer credential and returns its claims on success.
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Revoker reports whether a credential was revoked before its natural expiry.
// The sessions blacklist implements this.
type Revoker interface {
	Contains(ctx context.Context, token string) (bool, error)
}

// BearerToken extracts the credential from the request's Authorization header.
func BearerToken(c *gin.Context) (string, bool) {
	const prefix = "Bearer "
	h := c.GetHeader("Authorization")
	if !strings.HasPrefix(h, prefix) {
		return "", false
	}
	raw := strings.TrimSpace(h[len(prefix):])
	return raw, raw != ""
}

// AuthMiddleware verifies the bearer token on every request and stores the
// decoded claims in the context under "claims". Revoked tokens are rejected
// even when their signature still verifies; a nil revoker skips that check.
func AuthMiddleware(ver Verifier, revoker Revoker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		if revoker != nil {
			revoked, err := revoker.Contains(c.Request.Context(), raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "revocation check failed"})
				return
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
				return
			}
		}

		tok, err := ver.Verify(c.Request.Context(), raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var claims map[string]interface{}
		if err := tok.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}
