// Package sharing implements the collaborator invitation workflow.
package sharing

import (
	"context"
	"errors"
	"fmt"

	"github.com/codrift/codrift/backend/go-services/internal/access"
	"github.com/codrift/codrift/backend/go-services/internal/document"
	"github.com/codrift/codrift/backend/go-services/internal/document/repository"
	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/codrift/codrift/backend/go-services/internal/notifications"
	"github.com/codrift/codrift/backend/go-services/internal/users"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
)

var (
	ErrNotFound    = errors.New("document not found")
	ErrForbidden   = errors.New("forbidden")
	ErrInvalidRole = errors.New("role must be editor or viewer")
)

// Result is the outcome of an invitation attempt. Expected failures (unknown
// email, self-invite) are results, not errors: the caller shows Message
// either way.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ProfileFinder resolves invitation emails to profiles.
type ProfileFinder interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
}

// Notifier delivers feed notifications; delivery failures are logged, never
// propagated to the inviter.
type Notifier interface {
	Create(ctx context.Context, n *notifications.Notification) (string, error)
}

// Service mutates the collaborators map on documents and notifies the
// affected user.
type Service struct {
	docs     repository.Repository
	profiles ProfileFinder
	notifier Notifier
}

func NewService(docs repository.Repository, profiles ProfileFinder, notifier Notifier) *Service {
	return &Service{docs: docs, profiles: profiles, notifier: notifier}
}

// AddCollaborator resolves the email and merges the collaborator entry into
// the document. Only the owner may invite.
func (s *Service) AddCollaborator(ctx context.Context, docID string, actor models.Identity, email, role string) (Result, error) {
	if !access.ValidCollaboratorRole(role) {
		return Result{}, ErrInvalidRole
	}
	if users.NormalizeEmail(email) == users.NormalizeEmail(actor.Email) {
		return Result{Success: false, Message: "You can't add yourself as a collaborator."}, nil
	}

	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		return Result{}, mapErr(err)
	}
	if !access.CanManage(access.RoleFor(doc, actor.UID)) {
		return Result{}, ErrForbidden
	}

	user, err := s.profiles.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return Result{Success: false, Message: "No user found with that email address."}, nil
		}
		return Result{}, err
	}
	if user.UID == actor.UID {
		return Result{Success: false, Message: "You can't add yourself as a collaborator."}, nil
	}

	entry := document.Collaborator{
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        role,
	}
	if err := s.docs.SetCollaborator(ctx, docID, user.UID, entry); err != nil {
		return Result{}, mapErr(err)
	}

	s.notify(ctx, user.UID, &notifications.Notification{
		Type:          notifications.TypeShare,
		Title:         "Document Shared With You",
		Message:       fmt.Sprintf("%s shared \"%s\" with you as %s.", actor.Name(), doc.Title, roleArticle(role)),
		DocumentID:    docID,
		DocumentTitle: doc.Title,
		FromUserID:    actor.UID,
		FromUserName:  actor.Name(),
	})

	name := models.FallbackName(user.DisplayName, user.Email)
	return Result{Success: true, Message: fmt.Sprintf("%s added as %s.", name, role)}, nil
}

// UpdateRole changes an existing collaborator's role and notifies them.
func (s *Service) UpdateRole(ctx context.Context, docID string, actor models.Identity, uid, role string) error {
	if !access.ValidCollaboratorRole(role) {
		return ErrInvalidRole
	}
	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		return mapErr(err)
	}
	if !access.CanManage(access.RoleFor(doc, actor.UID)) {
		return ErrForbidden
	}
	if err := s.docs.UpdateCollaboratorRole(ctx, docID, uid, role); err != nil {
		return mapErr(err)
	}
	s.notify(ctx, uid, &notifications.Notification{
		Type:          notifications.TypeRoleChange,
		Title:         "Your Access Changed",
		Message:       fmt.Sprintf("%s made you %s on %q.", actor.Name(), roleArticle(role), doc.Title),
		DocumentID:    docID,
		DocumentTitle: doc.Title,
		FromUserID:    actor.UID,
		FromUserName:  actor.Name(),
	})
	return nil
}

// Remove deletes one collaborator entry and notifies them. Removing an
// absent entry succeeds.
func (s *Service) Remove(ctx context.Context, docID string, actor models.Identity, uid string) error {
	doc, err := s.docs.Get(ctx, docID)
	if err != nil {
		return mapErr(err)
	}
	if !access.CanManage(access.RoleFor(doc, actor.UID)) {
		return ErrForbidden
	}
	if _, ok := doc.Collaborators[uid]; !ok {
		return nil
	}
	if err := s.docs.RemoveCollaborator(ctx, docID, uid); err != nil {
		return mapErr(err)
	}
	s.notify(ctx, uid, &notifications.Notification{
		Type:          notifications.TypeRoleChange,
		Title:         "Your Access Changed",
		Message:       fmt.Sprintf("%s removed you from %q.", actor.Name(), doc.Title),
		DocumentID:    docID,
		DocumentTitle: doc.Title,
		FromUserID:    actor.UID,
		FromUserName:  actor.Name(),
	})
	return nil
}

func (s *Service) notify(ctx context.Context, uid string, n *notifications.Notification) {
	if s.notifier == nil {
		return
	}
	n.UserID = uid
	if _, err := s.notifier.Create(ctx, n); err != nil {
		logger.Warnf("sharing: notification delivery failed for %s: %v", uid, err)
	}
}

func roleArticle(role string) string {
	if role == "editor" {
		return "an editor"
	}
	return "a viewer"
}

func mapErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
