package docsync

import (
	"sync"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/models"
)

// Manager tracks the open edit session per (document, identity) pair.
type Manager struct {
	saver    Saver
	debounce time.Duration

	mu       sync.Mutex
	sessions map[sessionKey]*Session
}

type sessionKey struct {
	docID string
	uid   string
}

func NewManager(saver Saver, debounce time.Duration) *Manager {
	if debounce <= 0 {
		debounce = 800 * time.Millisecond
	}
	return &Manager{saver: saver, debounce: debounce, sessions: make(map[sessionKey]*Session)}
}

// Open returns the session for (docID, editor), creating it on first use.
func (m *Manager) Open(docID string, editor models.Identity) *Session {
	key := sessionKey{docID: docID, uid: editor.UID}
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[key]; ok {
		return s
	}
	s := newSession(docID, editor, m.saver, m.debounce)
	m.sessions[key] = s
	return s
}

// Lookup returns the existing session, if any.
func (m *Manager) Lookup(docID, uid string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionKey{docID: docID, uid: uid}]
	return s, ok
}

// Close flushes and discards the session for (docID, uid).
func (m *Manager) Close(docID, uid string) {
	key := sessionKey{docID: docID, uid: uid}
	m.mu.Lock()
	s, ok := m.sessions[key]
	if ok {
		delete(m.sessions, key)
	}
	m.mu.Unlock()
	if ok {
		s.Close()
	}
}
