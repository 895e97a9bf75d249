package users

import (
	"context"

	"github.com/codrift/codrift/backend/go-services/internal/models"
)

// Service encapsulates profile business logic.
type Service struct {
	repo Repository
}

func NewService(r Repository) *Service {
	return &Service{repo: r}
}

// SyncProfile runs after every successful authentication: first sign-in
// creates the profile, later sign-ins merge the identity fields and bump
// lastLogin.
func (s *Service) SyncProfile(ctx context.Context, id models.Identity) (*models.User, error) {
	return s.repo.Upsert(ctx, &models.User{
		UID:         id.UID,
		Email:       id.Email,
		DisplayName: id.DisplayName,
		PhotoURL:    id.PhotoURL,
	})
}

func (s *Service) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	return s.repo.GetByUID(ctx, uid)
}

func (s *Service) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.repo.FindByEmail(ctx, email)
}

func (s *Service) UpdateDisplayName(ctx context.Context, uid, displayName string) error {
	return s.repo.SetDisplayName(ctx, uid, displayName)
}

func (s *Service) UpdatePhotoURL(ctx context.Context, uid, photoURL string) error {
	return s.repo.SetPhotoURL(ctx, uid, photoURL)
}
