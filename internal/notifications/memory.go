package notifications

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory Repository for unit tests.
type MemoryRepo struct {
	mu    sync.RWMutex
	byUID map[string][]*Notification
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byUID: make(map[string][]*Notification)}
}

func (m *MemoryRepo) Create(ctx context.Context, n *Notification) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	cp := *n
	m.byUID[n.UserID] = append(m.byUID[n.UserID], &cp)
	return n.ID, nil
}

func (m *MemoryRepo) ListByUser(ctx context.Context, uid string) ([]*Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := m.byUID[uid]
	out := make([]*Notification, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		cp := *items[i]
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryRepo) MarkRead(ctx context.Context, uid, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.byUID[uid] {
		if n.ID == id {
			n.Read = true
			return nil
		}
	}
	return ErrNotFound
}

func (m *MemoryRepo) MarkAllRead(ctx context.Context, uid string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var flipped int64
	for _, n := range m.byUID[uid] {
		if !n.Read {
			n.Read = true
			flipped++
		}
	}
	return flipped, nil
}
