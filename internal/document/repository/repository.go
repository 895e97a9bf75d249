package repository

import (
	"context"
	"errors"

	"github.com/codrift/codrift/backend/go-services/internal/document"
)

var (
	ErrNotFound = errors.New("document not found")
)

// Repository defines persistence operations for documents and their version
// sub-collection. Collaborator mutations address single map entries so that
// concurrent changes to different collaborators do not conflict.
type Repository interface {
	Create(ctx context.Context, doc *document.Document) (string, error)
	Get(ctx context.Context, id string) (*document.Document, error)
	ListOwned(ctx context.Context, uid string) ([]*document.Document, error)
	ListShared(ctx context.Context, uid string) ([]*document.Document, error)
	UpdateContent(ctx context.Context, id, content string) error
	UpdateTitle(ctx context.Context, id, title string) error
	SetCollaborator(ctx context.Context, docID, uid string, c document.Collaborator) error
	UpdateCollaboratorRole(ctx context.Context, docID, uid, role string) error
	RemoveCollaborator(ctx context.Context, docID, uid string) error
	Delete(ctx context.Context, id string) error

	AddVersion(ctx context.Context, v *document.Version) (string, error)
	ListVersions(ctx context.Context, docID string) ([]*document.Version, error)
	GetVersion(ctx context.Context, docID, versionID string) (*document.Version, error)
	DeleteVersions(ctx context.Context, docID string) error
}
