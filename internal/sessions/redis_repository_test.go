package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*RedisRepository, *miniredis.Miniredis) {
	t.Helper()
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	return NewRedisRepository(client, "test:session:"), m
}

func TestRedisRepository_SaveFindRevoke(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()

	s := &Session{
		RefreshToken: "r1",
		UID:          "uid-1",
		CreatedAt:    time.Now().UTC(),
		ExpiresAt:    time.Now().UTC().Add(5 * time.Second),
	}
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Find(ctx, "r1")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, "uid-1", got.UID)

	got, err = repo.Find(ctx, "unknown")
	require.NoError(t, err)
	require.Nil(t, got)

	require.NoError(t, repo.Revoke(ctx, "r1"))
	got, err = repo.Find(ctx, "r1")
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestRedisRepository_SessionAgesOut(t *testing.T) {
	repo, m := newRedisRepo(t)
	ctx := context.Background()

	s := &Session{
		RefreshToken: "r2",
		UID:          "uid-2",
		CreatedAt:    time.Now().UTC(),
		ExpiresAt:    time.Now().UTC().Add(time.Second),
	}
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Find(ctx, "r2")
	require.NoError(t, err)
	require.NotNil(t, got)

	m.FastForward(2 * time.Second)

	got, err = repo.Find(ctx, "r2")
	require.NoError(t, err)
	require.Nil(t, got)
}
