package presence

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/codrift/codrift/backend/go-services/internal/realtime"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const stale = 60 * time.Second

func newStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, stale)
}

func TestOnline_StalenessBoundary(t *testing.T) {
	now := time.Now().UTC()
	fresh := Entry{UID: "u1", LastSeen: now.Add(-59 * time.Second)}
	gone := Entry{UID: "u2", LastSeen: now.Add(-61 * time.Second)}

	require.True(t, Online(fresh, now, stale))
	require.False(t, Online(gone, now, stale))

	kept := Filter([]Entry{fresh, gone}, now, stale)
	require.Len(t, kept, 1)
	require.Equal(t, "u1", kept[0].UID)
}

func TestRedisStore_PutListDelete(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, store.Put(ctx, "d1", Entry{UID: "u1", DisplayName: "Ada", LastSeen: now}))
	require.NoError(t, store.Put(ctx, "d1", Entry{UID: "u2", DisplayName: "Bob", LastSeen: now}))
	require.NoError(t, store.Put(ctx, "d2", Entry{UID: "u3", DisplayName: "Eve", LastSeen: now}))

	entries, err := store.List(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	require.NoError(t, store.Delete(ctx, "d1", "u1"))
	entries, err = store.List(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "u2", entries[0].UID)

	require.NoError(t, store.Clear(ctx, "d1"))
	entries, err = store.List(ctx, "d1")
	require.NoError(t, err)
	require.Empty(t, entries)

	// other documents untouched
	entries, err = store.List(ctx, "d2")
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestTracker_JoinWritesAndLeaveDeletes(t *testing.T) {
	store := newStore(t)
	hub := realtime.NewHub()
	tracker := NewTracker(store, hub, time.Hour, stale)

	ch, cancel := hub.Subscribe(realtime.DocTopic("d1"), 4)
	defer cancel()

	leave, err := tracker.Join(context.Background(), "d1", models.Identity{
		UID: "u1", Email: "ada@example.com",
	})
	require.NoError(t, err)

	entries, err := tracker.Active(context.Background(), "d1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	// display-name fallback to email local part
	require.Equal(t, "ada", entries[0].DisplayName)

	select {
	case ev := <-ch:
		require.Equal(t, realtime.EventPresenceChanged, ev.Type)
		require.Equal(t, "u1", ev.OriginUID)
	case <-time.After(time.Second):
		t.Fatal("expected presence.changed on join")
	}

	leave()
	leave() // idempotent

	entries, err = tracker.Active(context.Background(), "d1")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestTracker_ActiveFiltersStaleEntries(t *testing.T) {
	store := newStore(t)
	tracker := NewTracker(store, nil, time.Hour, stale)
	ctx := context.Background()

	base := time.Now().UTC()
	require.NoError(t, store.Put(ctx, "d1", Entry{UID: "fresh", LastSeen: base.Add(-30 * time.Second)}))
	require.NoError(t, store.Put(ctx, "d1", Entry{UID: "stale", LastSeen: base.Add(-90 * time.Second)}))

	tracker.SetNow(func() time.Time { return base })
	entries, err := tracker.Active(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "fresh", entries[0].UID)
}

func TestTracker_HeartbeatRefreshesEntry(t *testing.T) {
	store := newStore(t)
	tracker := NewTracker(store, nil, 20*time.Millisecond, stale)
	ctx := context.Background()

	leave, err := tracker.Join(ctx, "d1", models.Identity{UID: "u1", DisplayName: "Ada"})
	require.NoError(t, err)
	defer leave()

	first, err := store.List(ctx, "d1")
	require.NoError(t, err)
	require.Len(t, first, 1)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		cur, err := store.List(ctx, "d1")
		require.NoError(t, err)
		if len(cur) == 1 && cur[0].LastSeen.After(first[0].LastSeen) {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("heartbeat never refreshed the entry")
}
