package document

import "time"

// Collaborator is a non-owner identity granted access to a document. Stored
// under collaborators.<uid>; the bson names are the wire contract shared
// with query indexes and access rules.
type Collaborator struct {
	Email       string `json:"email" bson:"email"`
	DisplayName string `json:"displayName" bson:"displayName"`
	Role        string `json:"role" bson:"role"` // "editor" | "viewer"
}

// Document is the persistent collaborative document model. Content is an
// opaque rich-text markup blob; the service never inspects it. Owner access
// is implicit via OwnerID and never recorded in Collaborators.
type Document struct {
	ID            string                  `json:"id" bson:"_id,omitempty"`
	Title         string                  `json:"title" bson:"title"`
	Content       string                  `json:"content,omitempty" bson:"content"`
	OwnerID       string                  `json:"ownerId" bson:"ownerId"`
	OwnerName     string                  `json:"ownerName" bson:"ownerName"`
	OwnerEmail    string                  `json:"ownerEmail" bson:"ownerEmail"`
	Collaborators map[string]Collaborator `json:"collaborators" bson:"collaborators"`
	CreatedAt     time.Time               `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time               `json:"updatedAt" bson:"updatedAt"`
}

// Version is an immutable pre-change snapshot of a document's content.
// Versions are only ever appended; the application never deletes them.
type Version struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	DocID       string    `json:"docId" bson:"docId"`
	Content     string    `json:"content" bson:"content"`
	EditorID    string    `json:"editorId" bson:"editorId"`
	EditorName  string    `json:"editorName" bson:"editorName"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	Description string    `json:"description" bson:"description"`
}

// Clone returns a shallow copy with its own collaborators map, safe to hand
// to callers that may mutate it.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	cp := *d
	cp.Collaborators = make(map[string]Collaborator, len(d.Collaborators))
	for k, v := range d.Collaborators {
		cp.Collaborators[k] = v
	}
	return &cp
}
