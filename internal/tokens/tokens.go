// Package tokens issues and verifies the HS256 access tokens used as the
// session credential after any sign-in path.
package tokens

import (
	"context"
	"errors"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/config"
	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/codrift/codrift/backend/go-services/pkg/middleware"
	"github.com/golang-jwt/jwt/v5"
)

// GenerateAccessToken creates a signed JWT access token for the user. The
// claim names follow the OIDC standard set so federated and password
// sign-ins produce interchangeable tokens.
func GenerateAccessToken(cfg *config.Config, u *models.User, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":     u.UID,
		"name":    u.DisplayName,
		"email":   u.Email,
		"picture": u.PhotoURL,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(ttl).Unix(),
	}
	jt := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return jt.SignedString([]byte(cfg.JWT.Secret))
}

// Verifier validates locally-issued access tokens. It satisfies the auth
// middleware's verifier interface.
type Verifier struct {
	secret []byte
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{secret: []byte(secret)}
}

type verifiedToken struct {
	claims jwt.MapClaims
}

func (t *verifiedToken) Claims(v interface{}) error {
	m, ok := v.(*map[string]interface{})
	if !ok {
		return errors.New("unsupported claims target")
	}
	*m = map[string]interface{}(t.claims)
	return nil
}

func (ver *Verifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	parsed, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return ver.secret, nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, errors.New("invalid token claims")
	}
	return &verifiedToken{claims: claims}, nil
}

// IdentityFromClaims rebuilds the caller identity from verified claims.
func IdentityFromClaims(claims map[string]interface{}) models.Identity {
	str := func(k string) string {
		s, _ := claims[k].(string)
		return s
	}
	return models.Identity{
		UID:         str("sub"),
		Email:       str("email"),
		DisplayName: str("name"),
		PhotoURL:    str("picture"),
	}
}
