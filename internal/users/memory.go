package users

import (
	"context"
	"sync"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/models"
)

// MemoryRepository is an in-memory Repository for unit tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	byUID map[string]*models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUID: make(map[string]*models.User)}
}

func (m *MemoryRepository) Upsert(ctx context.Context, u *models.User) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now().UTC()
	cur, ok := m.byUID[u.UID]
	if !ok {
		cur = &models.User{UID: u.UID, CreatedAt: now}
		m.byUID[u.UID] = cur
	}
	cur.Email = NormalizeEmail(u.Email)
	if u.DisplayName != "" {
		cur.DisplayName = u.DisplayName
	}
	if u.PhotoURL != "" {
		cur.PhotoURL = u.PhotoURL
	}
	cur.LastLogin = now
	cp := *cur
	return &cp, nil
}

func (m *MemoryRepository) Create(ctx context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u.Email = NormalizeEmail(u.Email)
	for _, existing := range m.byUID {
		if existing.Email == u.Email {
			return ErrEmailTaken
		}
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	m.byUID[u.UID] = &cp
	return nil
}

func (m *MemoryRepository) GetByUID(ctx context.Context, uid string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if u, ok := m.byUID[uid]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	email = NormalizeEmail(email)
	for _, u := range m.byUID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepository) SetDisplayName(ctx context.Context, uid, displayName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUID[uid]
	if !ok {
		return ErrNotFound
	}
	u.DisplayName = displayName
	return nil
}

func (m *MemoryRepository) SetPhotoURL(ctx context.Context, uid, photoURL string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.byUID[uid]
	if !ok {
		return ErrNotFound
	}
	u.PhotoURL = photoURL
	return nil
}
