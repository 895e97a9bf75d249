// Package access derives a viewer's role on a document and gates mutations.
package access

import "github.com/codrift/codrift/backend/go-services/internal/document"

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
	RoleNone   Role = "none"
)

// RoleFor derives exactly one role for uid on doc: owner when uid matches
// ownerId, otherwise the recorded collaborator role, otherwise none. Owner
// access is implicit and never stored as a collaborator entry.
func RoleFor(doc *document.Document, uid string) Role {
	if doc == nil || uid == "" {
		return RoleNone
	}
	if doc.OwnerID == uid {
		return RoleOwner
	}
	if c, ok := doc.Collaborators[uid]; ok {
		switch Role(c.Role) {
		case RoleEditor, RoleViewer:
			return Role(c.Role)
		}
	}
	return RoleNone
}

// CanEdit reports whether the role allows content and title mutation.
func CanEdit(r Role) bool { return r == RoleOwner || r == RoleEditor }

// CanManage reports whether the role allows collaborator changes and deletion.
func CanManage(r Role) bool { return r == RoleOwner }

// CanView reports whether the role grants read access at all.
func CanView(r Role) bool { return r != RoleNone }

// ValidCollaboratorRole reports whether s names a role that may be granted to
// a collaborator. Owner is implicit and cannot be granted.
func ValidCollaboratorRole(s string) bool {
	return Role(s) == RoleEditor || Role(s) == RoleViewer
}
