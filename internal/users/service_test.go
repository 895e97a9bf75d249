package users

import (
	"context"
	"testing"

	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/stretchr/testify/require"
)

func TestSyncProfile_CreatesThenMerges(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	first, err := svc.SyncProfile(ctx, models.Identity{
		UID: "u1", Email: "Ada@Example.com", DisplayName: "Ada",
	})
	require.NoError(t, err)
	require.Equal(t, "ada@example.com", first.Email)
	require.False(t, first.CreatedAt.IsZero())
	require.False(t, first.LastLogin.IsZero())

	// a later sign-in with no photo keeps the profile photo and does not
	// reset createdAt
	require.NoError(t, svc.UpdatePhotoURL(ctx, "u1", "https://img/a.png"))
	second, err := svc.SyncProfile(ctx, models.Identity{
		UID: "u1", Email: "ada@example.com", DisplayName: "Ada L.",
	})
	require.NoError(t, err)
	require.Equal(t, "Ada L.", second.DisplayName)
	require.Equal(t, "https://img/a.png", second.PhotoURL)
	require.Equal(t, first.CreatedAt, second.CreatedAt)
	require.False(t, second.LastLogin.Before(first.LastLogin))
}

func TestFindByEmail_NormalizedExactMatch(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	_, err := svc.SyncProfile(ctx, models.Identity{UID: "u1", Email: "ada@example.com"})
	require.NoError(t, err)

	u, err := svc.FindByEmail(ctx, "  ADA@example.COM ")
	require.NoError(t, err)
	require.Equal(t, "u1", u.UID)

	_, err = svc.FindByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, ErrNotFound)

	// substring is not a match
	_, err = svc.FindByEmail(ctx, "ada@example")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_DuplicateEmailRejected(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &models.User{UID: "u1", Email: "a@b.com"}))
	err := repo.Create(ctx, &models.User{UID: "u2", Email: "A@B.com"})
	require.ErrorIs(t, err, ErrEmailTaken)
}
