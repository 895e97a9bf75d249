// Package docsync keeps a session's local edits and the shared document
// eventually consistent: it debounces persistence, coalesces keystrokes, and
// suppresses the echo of the session's own writes so the locally-held content
// stays authoritative while a save is pending.
package docsync

import (
	"context"
	"sync"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/document"
	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
)

// Saver persists content on behalf of a session. The document service
// implements this: it snapshots the pre-change content into the version log
// before the write.
type Saver interface {
	SaveContent(ctx context.Context, docID string, editor models.Identity, content string) error
}

type state int

const (
	stateIdle state = iota
	statePendingSave
)

// Session is the per-open-document edit session. Exactly one exists per
// (document, identity) pair; all methods are safe for concurrent use.
type Session struct {
	docID    string
	editor   models.Identity
	saver    Saver
	debounce time.Duration

	mu      sync.Mutex
	state   state
	pending string
	timer   *time.Timer
	saving  bool
	gen     int
}

func newSession(docID string, editor models.Identity, saver Saver, debounce time.Duration) *Session {
	return &Session{docID: docID, editor: editor, saver: saver, debounce: debounce}
}

// Edit records a local keystroke: the new content becomes locally
// authoritative and the inactivity timer restarts. Only the final content
// after a quiet period is persisted and versioned.
func (s *Session) Edit(content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = statePendingSave
	s.pending = content
	s.saving = true
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() { s.flush(gen) })
}

// flush persists the pending content if no newer edit superseded gen.
func (s *Session) flush(gen int) {
	s.mu.Lock()
	if s.gen != gen || s.state != statePendingSave {
		s.mu.Unlock()
		return
	}
	content := s.pending
	s.state = stateIdle
	s.mu.Unlock()

	err := s.saver.SaveContent(context.Background(), s.docID, s.editor, content)
	if err != nil {
		// fire-and-forget: log and clear the saving flag, no automatic retry
		logger.Errorf("save document %s: %v", s.docID, err)
	}

	s.mu.Lock()
	if s.gen == gen {
		s.saving = false
	}
	s.mu.Unlock()
}

// ApplyRemote merges an observed document update into the session's view.
// While a save is pending, an update originating from this session's own
// identity carries stale content (the echo of an earlier write); it is
// applied to metadata only, preserving the locally-held content. All other
// updates replace content wholesale.
func (s *Session) ApplyRemote(doc *document.Document, originUID string) *document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == statePendingSave && originUID == s.editor.UID {
		merged := doc.Clone()
		merged.Content = s.pending
		return merged
	}
	return doc
}

// Saving reports whether an edit is awaiting persistence or being written.
func (s *Session) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saving || s.state == statePendingSave
}

// Close flushes any pending edit synchronously and stops the timer. Closing
// an idle session is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	gen := s.gen
	pending := s.state == statePendingSave
	s.mu.Unlock()
	if pending {
		s.flush(gen)
	}
}
