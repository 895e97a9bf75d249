// Package sessions manages refresh sessions and access-token revocation.
package sessions

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"
)

// Service issues opaque refresh tokens and validates them against the store.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service { return &Service{repo: r} }

func newRefreshToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// CreateSession mints a refresh token for uid valid for ttl.
func (s *Service) CreateSession(ctx context.Context, uid string, ttl time.Duration) (string, error) {
	token, err := newRefreshToken()
	if err != nil {
		return "", err
	}
	sess := &Session{
		RefreshToken: token,
		UID:          uid,
		ExpiresAt:    time.Now().UTC().Add(ttl),
	}
	if err := s.repo.Save(ctx, sess); err != nil {
		return "", err
	}
	return token, nil
}

// ValidateRefresh resolves a refresh token to its session. Unknown and
// expired tokens both return (nil, nil); expired ones are revoked in passing.
func (s *Service) ValidateRefresh(ctx context.Context, refresh string) (*Session, error) {
	sess, err := s.repo.Find(ctx, refresh)
	if err != nil || sess == nil {
		return nil, err
	}
	if !sess.ExpiresAt.After(time.Now().UTC()) {
		_ = s.repo.Revoke(ctx, refresh)
		return nil, nil
	}
	return sess, nil
}

// DeleteRefresh revokes a refresh token. Revoking an unknown token succeeds.
func (s *Service) DeleteRefresh(ctx context.Context, refresh string) error {
	return s.repo.Revoke(ctx, refresh)
}
