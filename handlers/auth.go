package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/authpw"
	"github.com/codrift/codrift/backend/go-services/internal/config"
	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/codrift/codrift/backend/go-services/internal/sessions"
	"github.com/codrift/codrift/backend/go-services/internal/tokens"
	"github.com/codrift/codrift/backend/go-services/internal/users"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
	"github.com/codrift/codrift/backend/go-services/pkg/middleware"
	"github.com/gin-gonic/gin"
)

// SignupRequest creates a password account.
type SignupRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	DisplayName string `json:"displayName"`
}

// LoginRequest signs in with either a password or a federated id_token.
type LoginRequest struct {
	Mode     string `json:"mode" binding:"required"` // "password" | "federated"
	Email    string `json:"email"`
	Password string `json:"password"`
	IDToken  string `json:"idToken"`
}

// AuthHandler holds dependencies
type AuthHandler struct {
	cfg         *config.Config
	passwordSvc *authpw.Service
	usersSvc    *users.Service
	sessionsSvc *sessions.Service
	blacklist   *sessions.Blacklist
	federated   middleware.Verifier // nil when no OIDC provider configured
}

func NewAuthHandler(cfg *config.Config, pw *authpw.Service, u *users.Service, s *sessions.Service, bl *sessions.Blacklist, federated middleware.Verifier) *AuthHandler {
	return &AuthHandler{cfg: cfg, passwordSvc: pw, usersSvc: u, sessionsSvc: s, blacklist: bl, federated: federated}
}

// Register routes under /auth
func (h *AuthHandler) Register(rg *gin.RouterGroup) {
	a := rg.Group("/auth")
	a.POST("/signup", h.Signup)
	a.POST("/login", h.Login)
	a.POST("/refresh", h.Refresh)
	a.POST("/logout", h.Logout)
}

// Signup creates a password account and signs the user in.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	u, err := h.passwordSvc.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, authpw.ErrEmailTaken):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, authpw.ErrWeakPassword), errors.Is(err, authpw.ErrMissingFields):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Errorf("signup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "signup failed"})
		}
		return
	}
	h.issueTokens(c, u)
}

// Login authenticates with a password or a federated id_token. Both paths end
// in a profile sync and the same token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Mode {
	case "password":
		h.loginPassword(c, req)
	case "federated":
		h.loginFederated(c, req)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported mode"})
	}
}

func (h *AuthHandler) loginPassword(c *gin.Context, req LoginRequest) {
	u, err := h.passwordSvc.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authpw.ErrInvalidCredentials) || errors.Is(err, authpw.ErrMissingFields) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid email or password"})
			return
		}
		logger.Errorf("password sign-in failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sign-in failed"})
		return
	}
	synced, err := h.usersSvc.SyncProfile(c.Request.Context(), u.Identity())
	if err != nil {
		logger.Errorf("profile sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile sync failed"})
		return
	}
	h.issueTokens(c, synced)
}

func (h *AuthHandler) loginFederated(c *gin.Context, req LoginRequest) {
	if req.IDToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "idToken required for federated mode"})
		return
	}
	if h.federated == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "federated sign-in not configured"})
		return
	}
	tok, err := h.federated.Verify(c.Request.Context(), req.IDToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid id token", "details": err.Error()})
		return
	}
	var claims map[string]interface{}
	if err := tok.Claims(&claims); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
		return
	}
	id := tokens.IdentityFromClaims(claims)
	if id.UID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "id token missing subject"})
		return
	}
	synced, err := h.usersSvc.SyncProfile(c.Request.Context(), id)
	if err != nil {
		logger.Errorf("profile sync failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "profile sync failed"})
		return
	}
	h.issueTokens(c, synced)
}

func (h *AuthHandler) issueTokens(c *gin.Context, u *models.User) {
	rft, err := h.sessionsSvc.CreateSession(c.Request.Context(), u.UID, h.cfg.JWT.RefreshTokenTTL)
	if err != nil {
		logger.Errorf("failed to create session: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create session"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"accessToken":  access,
		"refreshToken": rft,
		"user":         u,
		"expiresIn":    int(h.cfg.JWT.AccessTokenTTL.Seconds()),
	})
}

// Refresh accepts a refresh token and returns a new access token
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := h.sessionsSvc.ValidateRefresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "validation failed"})
		return
	}
	if sess == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}
	u, err := h.usersSvc.GetByUID(c.Request.Context(), sess.UID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "user lookup failed"})
		return
	}
	access, err := tokens.GenerateAccessToken(h.cfg, u, h.cfg.JWT.AccessTokenTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"accessToken": access, "expiresIn": int(h.cfg.JWT.AccessTokenTTL.Seconds())})
}

// Logout invalidates the refresh token and blacklists the current access token
func (h *AuthHandler) Logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// If the client supplied an Authorization Bearer token, attempt to blacklist it
	if at, ok := middleware.BearerToken(c); ok {
		if exp, err := parseExpFromJWT(at); err == nil {
			if ttl := time.Until(exp); ttl > 0 {
				if err := h.blacklist.Add(c.Request.Context(), at, ttl); err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to blacklist access token"})
					return
				}
			}
		}
	}

	if err := h.sessionsSvc.DeleteRefresh(c.Request.Context(), req.RefreshToken); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove session"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

// parseExpFromJWT decodes the JWT payload and returns the `exp` claim as time.Time.
// This performs payload-only parsing (no signature verification) and is suitable
// for computing remaining TTLs for blacklisting purposes.
func parseExpFromJWT(tok string) (time.Time, error) {
	parts := strings.Split(tok, ".")
	if len(parts) < 2 {
		return time.Time{}, fmt.Errorf("invalid token")
	}
	payload := parts[1]
	b, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		// try standard base64 (pad) as a fallback
		b, err = base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return time.Time{}, err
		}
	}
	var claims map[string]interface{}
	if err := json.Unmarshal(b, &claims); err != nil {
		return time.Time{}, err
	}
	v, ok := claims["exp"]
	if !ok {
		return time.Time{}, fmt.Errorf("exp claim not present")
	}
	// exp may be float64 (json number) or json.Number; handle common cases
	switch vv := v.(type) {
	case float64:
		return time.Unix(int64(vv), 0), nil
	case int64:
		return time.Unix(vv, 0), nil
	case json.Number:
		i64, err := vv.Int64()
		if err != nil {
			f, err2 := vv.Float64()
			if err2 != nil {
				return time.Time{}, err
			}
			return time.Unix(int64(f), 0), nil
		}
		return time.Unix(i64, 0), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported exp type %T", v)
	}
}
