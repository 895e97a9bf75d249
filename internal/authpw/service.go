// Package authpw provides email/password account sign-up and sign-in.
package authpw

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/codrift/codrift/backend/go-services/internal/users"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = errors.New("password must be at least 6 characters")
	ErrMissingFields      = errors.New("email and password are required")
)

// Service creates and verifies password accounts on top of the profile
// repository. Federated sign-in never goes through here.
type Service struct {
	repo users.Repository
}

func NewService(repo users.Repository) *Service {
	return &Service{repo: repo}
}

// SignUp registers a new account and returns the stored profile.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*models.User, error) {
	email = users.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	u := &models.User{
		UID:          uuid.NewString(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: string(hash),
		CreatedAt:    now,
		LastLogin:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

// SignIn verifies the password against the stored hash. Lookup misses and
// hash mismatches produce the same error so callers cannot probe for
// registered emails.
func (s *Service) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, ErrMissingFields
	}
	u, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.PasswordHash == "" {
		// federated account, no password to check
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
