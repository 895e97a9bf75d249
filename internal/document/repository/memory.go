package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/document"
	"github.com/google/uuid"
)

// MemoryRepo is an in-memory repository used for unit tests and for running
// without a database.
type MemoryRepo struct {
	mu       sync.RWMutex
	docs     map[string]*document.Document
	versions map[string][]*document.Version // docID -> append order
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		docs:     make(map[string]*document.Document),
		versions: make(map[string][]*document.Version),
	}
}

func (m *MemoryRepo) Create(ctx context.Context, doc *document.Document) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Collaborators == nil {
		doc.Collaborators = map[string]document.Collaborator{}
	}
	m.docs[doc.ID] = doc.Clone()
	return doc.ID, nil
}

func (m *MemoryRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if d, ok := m.docs[id]; ok {
		return d.Clone(), nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) ListOwned(ctx context.Context, uid string) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*document.Document{}
	for _, d := range m.docs {
		if d.OwnerID == uid {
			out = append(out, d.Clone())
		}
	}
	sortByUpdatedDesc(out)
	return out, nil
}

func (m *MemoryRepo) ListShared(ctx context.Context, uid string) ([]*document.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*document.Document{}
	for _, d := range m.docs {
		if _, ok := d.Collaborators[uid]; ok && d.OwnerID != uid {
			out = append(out, d.Clone())
		}
	}
	sortByUpdatedDesc(out)
	return out, nil
}

func (m *MemoryRepo) UpdateContent(ctx context.Context, id, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	d.Content = content
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepo) UpdateTitle(ctx context.Context, id, title string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	if !ok {
		return ErrNotFound
	}
	d.Title = title
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *MemoryRepo) SetCollaborator(ctx context.Context, docID, uid string, c document.Collaborator) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[docID]
	if !ok {
		return ErrNotFound
	}
	if d.Collaborators == nil {
		d.Collaborators = map[string]document.Collaborator{}
	}
	d.Collaborators[uid] = c
	return nil
}

func (m *MemoryRepo) UpdateCollaboratorRole(ctx context.Context, docID, uid, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[docID]
	if !ok {
		return ErrNotFound
	}
	c, ok := d.Collaborators[uid]
	if !ok {
		return ErrNotFound
	}
	c.Role = role
	d.Collaborators[uid] = c
	return nil
}

func (m *MemoryRepo) RemoveCollaborator(ctx context.Context, docID, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[docID]
	if !ok {
		return ErrNotFound
	}
	delete(d.Collaborators, uid)
	return nil
}

func (m *MemoryRepo) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MemoryRepo) AddVersion(ctx context.Context, v *document.Version) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now().UTC()
	}
	cp := *v
	m.versions[v.DocID] = append(m.versions[v.DocID], &cp)
	return v.ID, nil
}

func (m *MemoryRepo) ListVersions(ctx context.Context, docID string) ([]*document.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vs := m.versions[docID]
	out := make([]*document.Version, 0, len(vs))
	// walk in reverse append order so equal timestamps still come back newest first
	for i := len(vs) - 1; i >= 0; i-- {
		cp := *vs[i]
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

func (m *MemoryRepo) GetVersion(ctx context.Context, docID, versionID string) (*document.Version, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, v := range m.versions[docID] {
		if v.ID == versionID {
			cp := *v
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) DeleteVersions(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.versions, docID)
	return nil
}

func sortByUpdatedDesc(docs []*document.Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].UpdatedAt.After(docs[j].UpdatedAt) })
}
