// Package service implements the document operations behind the HTTP layer:
// ownership, role gating, content saves with pre-image version snapshots,
// and version restore.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/access"
	"github.com/codrift/codrift/backend/go-services/internal/document"
	"github.com/codrift/codrift/backend/go-services/internal/document/repository"
	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/codrift/codrift/backend/go-services/internal/realtime"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
	"github.com/codrift/codrift/backend/go-services/pkg/metrics"
)

var (
	ErrNotFound   = errors.New("document not found")
	ErrForbidden  = errors.New("access denied")
	ErrEmptyTitle = errors.New("title must not be empty")
)

const (
	descAutoSave      = "Auto-saved version"
	descBeforeRestore = "Before restore"
)

// PresenceCleaner removes a document's presence entries when the document is
// deleted. Optional; a nil cleaner skips cleanup.
type PresenceCleaner interface {
	Clear(ctx context.Context, docID string) error
}

type Service struct {
	repo     repository.Repository
	events   realtime.Publisher
	presence PresenceCleaner
}

func New(repo repository.Repository, events realtime.Publisher, presence PresenceCleaner) *Service {
	return &Service{repo: repo, events: events, presence: presence}
}

// Create makes a new empty document owned by the caller.
func (s *Service) Create(ctx context.Context, owner models.Identity, title string) (*document.Document, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}
	doc := &document.Document{
		Title:         title,
		Content:       "",
		OwnerID:       owner.UID,
		OwnerName:     owner.Name(),
		OwnerEmail:    owner.Email,
		Collaborators: map[string]document.Collaborator{},
	}
	id, err := s.repo.Create(ctx, doc)
	if err != nil {
		return nil, err
	}
	doc.ID = id
	return doc, nil
}

// View loads a document and derives the viewer's role. A viewer with no
// access gets ErrForbidden and no document.
func (s *Service) View(ctx context.Context, id, viewerUID string) (*document.Document, access.Role, error) {
	doc, err := s.get(ctx, id)
	if err != nil {
		return nil, access.RoleNone, err
	}
	role := access.RoleFor(doc, viewerUID)
	if !access.CanView(role) {
		return nil, access.RoleNone, ErrForbidden
	}
	return doc, role, nil
}

// Dashboard returns the caller's documents split into owned and shared-with-me,
// both most recently updated first.
func (s *Service) Dashboard(ctx context.Context, uid string) (owned, shared []*document.Document, err error) {
	owned, err = s.repo.ListOwned(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	shared, err = s.repo.ListShared(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	return owned, shared, nil
}

// Rename updates the title. Requires edit rights.
func (s *Service) Rename(ctx context.Context, id string, viewer models.Identity, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	if err := s.requireEdit(ctx, id, viewer.UID); err != nil {
		return err
	}
	if err := s.repo.UpdateTitle(ctx, id, title); err != nil {
		return s.mapErr(err)
	}
	s.publishDocUpdate(id, viewer.UID)
	return nil
}

// Delete removes a document along with its version history and presence
// entries. Owner only. Notifications that reference the document stay behind.
func (s *Service) Delete(ctx context.Context, id string, viewer models.Identity) error {
	doc, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanManage(access.RoleFor(doc, viewer.UID)) {
		return ErrForbidden
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return s.mapErr(err)
	}
	if err := s.repo.DeleteVersions(ctx, id); err != nil {
		logger.Warnf("delete versions for %s: %v", id, err)
	}
	if s.presence != nil {
		if err := s.presence.Clear(ctx, id); err != nil {
			logger.Warnf("clear presence for %s: %v", id, err)
		}
	}
	if s.events != nil {
		s.events.Publish(realtime.DocTopic(id), realtime.Event{
			Type: realtime.EventDocumentDeleted, DocID: id, OriginUID: viewer.UID, At: time.Now().UTC(),
		})
	}
	return nil
}

// SaveContent persists new content for the editor, snapshotting the pre-change
// content into the version log first. The snapshot is skipped when the prior
// content is empty or unchanged, so the history records only real pre-images.
func (s *Service) SaveContent(ctx context.Context, id string, editor models.Identity, content string) error {
	doc, err := s.get(ctx, id)
	if err != nil {
		metrics.DocumentSaves.WithLabelValues("error").Inc()
		return err
	}
	if !access.CanEdit(access.RoleFor(doc, editor.UID)) {
		metrics.DocumentSaves.WithLabelValues("forbidden").Inc()
		return ErrForbidden
	}

	if doc.Content != "" && doc.Content != content && strings.TrimSpace(doc.Content) != "" {
		if err := s.snapshot(ctx, id, doc.Content, editor, descAutoSave); err != nil {
			metrics.DocumentSaves.WithLabelValues("error").Inc()
			return err
		}
		metrics.VersionsCreated.WithLabelValues("autosave").Inc()
	}

	if err := s.repo.UpdateContent(ctx, id, content); err != nil {
		metrics.DocumentSaves.WithLabelValues("error").Inc()
		return s.mapErr(err)
	}
	metrics.DocumentSaves.WithLabelValues("ok").Inc()
	s.publishDocUpdate(id, editor.UID)
	return nil
}

// Versions lists the document's version history, most recent first. Any role
// with view access may read history.
func (s *Service) Versions(ctx context.Context, id, viewerUID string) ([]*document.Version, error) {
	if _, _, err := s.View(ctx, id, viewerUID); err != nil {
		return nil, err
	}
	return s.repo.ListVersions(ctx, id)
}

// Restore overwrites the document content with a past version's content,
// first snapshotting the current content as a "Before restore" version.
func (s *Service) Restore(ctx context.Context, id, versionID string, editor models.Identity) error {
	doc, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanEdit(access.RoleFor(doc, editor.UID)) {
		return ErrForbidden
	}
	v, err := s.repo.GetVersion(ctx, id, versionID)
	if err != nil {
		return s.mapErr(err)
	}
	if err := s.snapshot(ctx, id, doc.Content, editor, descBeforeRestore); err != nil {
		return err
	}
	metrics.VersionsCreated.WithLabelValues("restore").Inc()
	if err := s.repo.UpdateContent(ctx, id, v.Content); err != nil {
		return s.mapErr(err)
	}
	s.publishDocUpdate(id, editor.UID)
	return nil
}

func (s *Service) snapshot(ctx context.Context, docID, content string, editor models.Identity, description string) error {
	_, err := s.repo.AddVersion(ctx, &document.Version{
		DocID:       docID,
		Content:     content,
		EditorID:    editor.UID,
		EditorName:  editor.Name(),
		Timestamp:   time.Now().UTC(),
		Description: description,
	})
	return err
}

func (s *Service) requireEdit(ctx context.Context, id, uid string) error {
	doc, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if !access.CanEdit(access.RoleFor(doc, uid)) {
		return ErrForbidden
	}
	return nil
}

func (s *Service) get(ctx context.Context, id string) (*document.Document, error) {
	doc, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.mapErr(err)
	}
	return doc, nil
}

func (s *Service) publishDocUpdate(id, originUID string) {
	if s.events == nil {
		return
	}
	s.events.Publish(realtime.DocTopic(id), realtime.Event{
		Type: realtime.EventDocumentUpdated, DocID: id, OriginUID: originUID, At: time.Now().UTC(),
	})
}

func (s *Service) mapErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
