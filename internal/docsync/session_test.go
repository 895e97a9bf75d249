package docsync

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/document"
	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/stretchr/testify/require"
)

type recordingSaver struct {
	mu    sync.Mutex
	saves []string
	err   error
}

func (r *recordingSaver) SaveContent(ctx context.Context, docID string, editor models.Identity, content string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, content)
	return r.err
}

func (r *recordingSaver) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.saves...)
}

var me = models.Identity{UID: "u1", Email: "me@example.com", DisplayName: "Me"}

const debounce = 25 * time.Millisecond

func waitForSaves(t *testing.T, s *recordingSaver, n int) []string {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if got := s.all(); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d saves, got %v", n, s.all())
	return nil
}

func TestSession_DebounceCoalescesKeystrokes(t *testing.T) {
	saver := &recordingSaver{}
	s := newSession("d1", me, saver, debounce)

	// rapid keystrokes within the debounce window
	s.Edit("h")
	s.Edit("he")
	s.Edit("hel")
	s.Edit("hello")

	got := waitForSaves(t, saver, 1)
	require.Equal(t, []string{"hello"}, got)

	// no further saves after the quiet period
	time.Sleep(3 * debounce)
	require.Equal(t, []string{"hello"}, saver.all())
}

func TestSession_DistinctQuietPeriodsProduceDistinctSaves(t *testing.T) {
	saver := &recordingSaver{}
	s := newSession("d1", me, saver, debounce)

	s.Edit("first")
	waitForSaves(t, saver, 1)
	s.Edit("second")
	got := waitForSaves(t, saver, 2)
	require.Equal(t, []string{"first", "second"}, got)
}

func TestSession_SavingFlagLifecycle(t *testing.T) {
	saver := &recordingSaver{}
	s := newSession("d1", me, saver, debounce)

	require.False(t, s.Saving())
	s.Edit("x")
	require.True(t, s.Saving())

	waitForSaves(t, saver, 1)
	deadline := time.Now().Add(time.Second)
	for s.Saving() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.False(t, s.Saving())
}

func TestSession_SaveErrorClearsSavingFlag(t *testing.T) {
	saver := &recordingSaver{err: context.DeadlineExceeded}
	s := newSession("d1", me, saver, debounce)

	s.Edit("x")
	waitForSaves(t, saver, 1)
	deadline := time.Now().Add(time.Second)
	for s.Saving() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	// failure is swallowed with a log; the transient flag still returns to false
	require.False(t, s.Saving())
}

func TestSession_OwnEchoPreservesLocalContent(t *testing.T) {
	saver := &recordingSaver{}
	s := newSession("d1", me, saver, time.Hour) // keep the save pending

	s.Edit("local draft")

	remote := &document.Document{ID: "d1", Title: "Renamed", Content: "stale stored content"}
	merged := s.ApplyRemote(remote, me.UID)
	require.Equal(t, "local draft", merged.Content)
	require.Equal(t, "Renamed", merged.Title) // metadata still applied
	require.Equal(t, "stale stored content", remote.Content, "input must not be mutated")
}

func TestSession_ForeignUpdateReplacesContentWholesale(t *testing.T) {
	saver := &recordingSaver{}
	s := newSession("d1", me, saver, time.Hour)

	s.Edit("local draft")

	remote := &document.Document{ID: "d1", Content: "their content"}
	merged := s.ApplyRemote(remote, "someone-else")
	require.Equal(t, "their content", merged.Content)
}

func TestSession_IdleUpdateReplacesContent(t *testing.T) {
	saver := &recordingSaver{}
	s := newSession("d1", me, saver, debounce)

	s.Edit("draft")
	waitForSaves(t, saver, 1)

	// back in idle: even an own-origin update replaces content
	remote := &document.Document{ID: "d1", Content: "draft"}
	merged := s.ApplyRemote(remote, me.UID)
	require.Equal(t, "draft", merged.Content)
}

func TestSession_CloseFlushesPendingEdit(t *testing.T) {
	saver := &recordingSaver{}
	s := newSession("d1", me, saver, time.Hour)

	s.Edit("almost lost")
	s.Close()
	require.Equal(t, []string{"almost lost"}, saver.all())

	// closing again is a no-op
	s.Close()
	require.Equal(t, []string{"almost lost"}, saver.all())
}

func TestManager_OneSessionPerDocumentAndEditor(t *testing.T) {
	saver := &recordingSaver{}
	m := NewManager(saver, debounce)

	a := m.Open("d1", me)
	require.Same(t, a, m.Open("d1", me))

	other := models.Identity{UID: "u2"}
	require.NotSame(t, a, m.Open("d1", other))
	require.NotSame(t, a, m.Open("d2", me))

	got, ok := m.Lookup("d1", me.UID)
	require.True(t, ok)
	require.Same(t, a, got)

	m.Close("d1", me.UID)
	_, ok = m.Lookup("d1", me.UID)
	require.False(t, ok)
}

func TestManager_CloseFlushes(t *testing.T) {
	saver := &recordingSaver{}
	m := NewManager(saver, time.Hour)

	s := m.Open("d1", me)
	s.Edit("pending")
	m.Close("d1", me.UID)
	require.Equal(t, []string{"pending"}, saver.all())
}
