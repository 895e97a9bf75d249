package access

import (
	"testing"

	"github.com/codrift/codrift/backend/go-services/internal/document"
	"github.com/stretchr/testify/require"
)

func sampleDoc() *document.Document {
	return &document.Document{
		ID:      "d1",
		OwnerID: "owner-1",
		Collaborators: map[string]document.Collaborator{
			"ed-1":   {Email: "ed@example.com", DisplayName: "Ed", Role: "editor"},
			"view-1": {Email: "vi@example.com", DisplayName: "Vi", Role: "viewer"},
		},
	}
}

func TestRoleFor(t *testing.T) {
	doc := sampleDoc()

	require.Equal(t, RoleOwner, RoleFor(doc, "owner-1"))
	require.Equal(t, RoleEditor, RoleFor(doc, "ed-1"))
	require.Equal(t, RoleViewer, RoleFor(doc, "view-1"))
	require.Equal(t, RoleNone, RoleFor(doc, "stranger"))
	require.Equal(t, RoleNone, RoleFor(doc, ""))
	require.Equal(t, RoleNone, RoleFor(nil, "owner-1"))
}

func TestRoleFor_OwnerBeatsCollaboratorEntry(t *testing.T) {
	// ownerId must never appear in collaborators, but if a corrupt record
	// does contain it, owner still wins.
	doc := sampleDoc()
	doc.Collaborators["owner-1"] = document.Collaborator{Role: "viewer"}
	require.Equal(t, RoleOwner, RoleFor(doc, "owner-1"))
}

func TestRoleFor_UnknownStoredRole(t *testing.T) {
	doc := sampleDoc()
	doc.Collaborators["odd"] = document.Collaborator{Role: "admin"}
	require.Equal(t, RoleNone, RoleFor(doc, "odd"))
}

func TestCanEdit(t *testing.T) {
	require.True(t, CanEdit(RoleOwner))
	require.True(t, CanEdit(RoleEditor))
	require.False(t, CanEdit(RoleViewer))
	require.False(t, CanEdit(RoleNone))
}

func TestCanManage(t *testing.T) {
	require.True(t, CanManage(RoleOwner))
	require.False(t, CanManage(RoleEditor))
	require.False(t, CanManage(RoleViewer))
	require.False(t, CanManage(RoleNone))
}

func TestValidCollaboratorRole(t *testing.T) {
	require.True(t, ValidCollaboratorRole("editor"))
	require.True(t, ValidCollaboratorRole("viewer"))
	require.False(t, ValidCollaboratorRole("owner"))
	require.False(t, ValidCollaboratorRole(""))
	require.False(t, ValidCollaboratorRole("admin"))
}
