package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBlacklist_EntryExpiresWithToken(t *testing.T) {
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	bl := NewBlacklist(client)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "access-token-1", 2*time.Second))

	ok, err := bl.Contains(ctx, "access-token-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = bl.Contains(ctx, "never-revoked")
	require.NoError(t, err)
	require.False(t, ok)

	m.FastForward(3 * time.Second)

	ok, err = bl.Contains(ctx, "access-token-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBlacklist_NilClientIsNoop(t *testing.T) {
	bl := NewBlacklist(nil)
	ctx := context.Background()

	require.NoError(t, bl.Add(ctx, "token", time.Second))
	ok, err := bl.Contains(ctx, "token")
	require.NoError(t, err)
	require.False(t, ok)
}
