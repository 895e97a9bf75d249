package handlers

import (
	"net/http"

	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/codrift/codrift/backend/go-services/internal/tokens"
	"github.com/gin-gonic/gin"
)

// callerIdentity rebuilds the authenticated identity from the claims set by
// the auth middleware. Aborts with 401 when absent.
func callerIdentity(c *gin.Context) (models.Identity, bool) {
	v, ok := c.Get("claims")
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return models.Identity{}, false
	}
	claims, ok := v.(map[string]interface{})
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return models.Identity{}, false
	}
	id := tokens.IdentityFromClaims(claims)
	if id.UID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return models.Identity{}, false
	}
	return id, true
}
