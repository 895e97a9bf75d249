package service

import (
	"context"
	"testing"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/access"
	"github.com/codrift/codrift/backend/go-services/internal/document"
	"github.com/codrift/codrift/backend/go-services/internal/document/repository"
	"github.com/codrift/codrift/backend/go-services/internal/models"
	"github.com/codrift/codrift/backend/go-services/internal/realtime"
	"github.com/stretchr/testify/require"
)

var (
	owner  = models.Identity{UID: "owner-1", Email: "owner@example.com", DisplayName: "Olive Owner"}
	editor = models.Identity{UID: "ed-1", Email: "ed@example.com", DisplayName: "Ed Editor"}
	viewer = models.Identity{UID: "vi-1", Email: "vi@example.com", DisplayName: "Vi Viewer"}
)

func newService(t *testing.T) (*Service, *repository.MemoryRepo, *realtime.Hub) {
	t.Helper()
	repo := repository.NewMemoryRepo()
	hub := realtime.NewHub()
	return New(repo, hub, nil), repo, hub
}

func createDoc(t *testing.T, svc *Service) string {
	t.Helper()
	doc, err := svc.Create(context.Background(), owner, "Test Doc")
	require.NoError(t, err)
	return doc.ID
}

func shareWith(t *testing.T, repo *repository.MemoryRepo, docID string, id models.Identity, role string) {
	t.Helper()
	c := document.Collaborator{Email: id.Email, DisplayName: id.DisplayName, Role: role}
	require.NoError(t, repo.SetCollaborator(context.Background(), docID, id.UID, c))
}

func TestCreate_EmptyTitleRejected(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.Create(context.Background(), owner, "   ")
	require.ErrorIs(t, err, ErrEmptyTitle)
}

func TestCreate_SetsOwnerFields(t *testing.T) {
	svc, _, _ := newService(t)
	doc, err := svc.Create(context.Background(), owner, "  My Doc  ")
	require.NoError(t, err)
	require.Equal(t, "My Doc", doc.Title)
	require.Equal(t, "", doc.Content)
	require.Equal(t, owner.UID, doc.OwnerID)
	require.Equal(t, "Olive Owner", doc.OwnerName)
	require.Equal(t, owner.Email, doc.OwnerEmail)
	require.Empty(t, doc.Collaborators)
}

func TestView_Roles(t *testing.T) {
	svc, repo, _ := newService(t)
	id := createDoc(t, svc)
	shareWith(t, repo, id, viewer, "viewer")

	_, role, err := svc.View(context.Background(), id, owner.UID)
	require.NoError(t, err)
	require.Equal(t, access.RoleOwner, role)

	_, role, err = svc.View(context.Background(), id, viewer.UID)
	require.NoError(t, err)
	require.Equal(t, access.RoleViewer, role)

	_, _, err = svc.View(context.Background(), id, "stranger")
	require.ErrorIs(t, err, ErrForbidden)

	_, _, err = svc.View(context.Background(), "missing", owner.UID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSaveContent_SnapshotsPreImage(t *testing.T) {
	svc, _, _ := newService(t)
	id := createDoc(t, svc)
	ctx := context.Background()

	// first save of empty doc: no version (prior content empty)
	require.NoError(t, svc.SaveContent(ctx, id, owner, "draft one"))
	vs, err := svc.Versions(ctx, id, owner.UID)
	require.NoError(t, err)
	require.Len(t, vs, 0)

	// second save snapshots the pre-change content
	require.NoError(t, svc.SaveContent(ctx, id, owner, "draft two"))
	vs, err = svc.Versions(ctx, id, owner.UID)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	require.Equal(t, "draft one", vs[0].Content)
	require.Equal(t, "Auto-saved version", vs[0].Description)
	require.Equal(t, owner.UID, vs[0].EditorID)
	require.Equal(t, "Olive Owner", vs[0].EditorName)

	// unchanged content: no new version
	require.NoError(t, svc.SaveContent(ctx, id, owner, "draft two"))
	vs, err = svc.Versions(ctx, id, owner.UID)
	require.NoError(t, err)
	require.Len(t, vs, 1)
}

func TestSaveContent_VersionsOrderedMostRecentFirst(t *testing.T) {
	svc, _, _ := newService(t)
	id := createDoc(t, svc)
	ctx := context.Background()

	for _, c := range []string{"v1", "v2", "v3", "v4"} {
		require.NoError(t, svc.SaveContent(ctx, id, owner, c))
		time.Sleep(2 * time.Millisecond)
	}

	vs, err := svc.Versions(ctx, id, owner.UID)
	require.NoError(t, err)
	// three saves had non-empty prior content
	require.Len(t, vs, 3)
	require.Equal(t, "v3", vs[0].Content)
	require.Equal(t, "v2", vs[1].Content)
	require.Equal(t, "v1", vs[2].Content)
	for i := 1; i < len(vs); i++ {
		require.False(t, vs[i].Timestamp.After(vs[i-1].Timestamp))
	}
}

func TestSaveContent_RoleGating(t *testing.T) {
	svc, repo, _ := newService(t)
	id := createDoc(t, svc)
	shareWith(t, repo, id, editor, "editor")
	shareWith(t, repo, id, viewer, "viewer")
	ctx := context.Background()

	require.NoError(t, svc.SaveContent(ctx, id, editor, "by editor"))
	require.ErrorIs(t, svc.SaveContent(ctx, id, viewer, "by viewer"), ErrForbidden)
	require.ErrorIs(t, svc.SaveContent(ctx, id, models.Identity{UID: "x"}, "by stranger"), ErrForbidden)
}

func TestRestore_RoundTrip(t *testing.T) {
	svc, _, _ := newService(t)
	id := createDoc(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.SaveContent(ctx, id, owner, "C1"))
	time.Sleep(2 * time.Millisecond)
	require.NoError(t, svc.SaveContent(ctx, id, owner, "C2")) // versions: [C1]

	vs, err := svc.Versions(ctx, id, owner.UID)
	require.NoError(t, err)
	require.Len(t, vs, 1)
	require.Equal(t, "C1", vs[0].Content)

	time.Sleep(2 * time.Millisecond)
	require.NoError(t, svc.Restore(ctx, id, vs[0].ID, owner))

	doc, _, err := svc.View(ctx, id, owner.UID)
	require.NoError(t, err)
	require.Equal(t, "C1", doc.Content)

	vs, err = svc.Versions(ctx, id, owner.UID)
	require.NoError(t, err)
	require.Len(t, vs, 2)
	require.Equal(t, "Before restore", vs[0].Description)
	require.Equal(t, "C2", vs[0].Content)
}

func TestRestore_ViewerForbidden(t *testing.T) {
	svc, repo, _ := newService(t)
	id := createDoc(t, svc)
	shareWith(t, repo, id, viewer, "viewer")
	ctx := context.Background()

	require.NoError(t, svc.SaveContent(ctx, id, owner, "C1"))
	require.NoError(t, svc.SaveContent(ctx, id, owner, "C2"))
	vs, err := svc.Versions(ctx, id, viewer.UID) // viewers may read history
	require.NoError(t, err)
	require.Len(t, vs, 1)

	require.ErrorIs(t, svc.Restore(ctx, id, vs[0].ID, viewer), ErrForbidden)
}

func TestDelete_OwnerOnlyAndCascadesVersions(t *testing.T) {
	svc, repo, _ := newService(t)
	id := createDoc(t, svc)
	shareWith(t, repo, id, editor, "editor")
	ctx := context.Background()

	require.NoError(t, svc.SaveContent(ctx, id, owner, "C1"))
	require.NoError(t, svc.SaveContent(ctx, id, owner, "C2"))

	require.ErrorIs(t, svc.Delete(ctx, id, editor), ErrForbidden)
	require.NoError(t, svc.Delete(ctx, id, owner))

	_, _, err := svc.View(ctx, id, owner.UID)
	require.ErrorIs(t, err, ErrNotFound)
	vs, err := repo.ListVersions(ctx, id)
	require.NoError(t, err)
	require.Len(t, vs, 0)
}

func TestDashboard_SplitsOwnedAndShared(t *testing.T) {
	svc, repo, _ := newService(t)
	ctx := context.Background()

	mine, err := svc.Create(ctx, owner, "Mine")
	require.NoError(t, err)
	theirs, err := svc.Create(ctx, editor, "Theirs")
	require.NoError(t, err)
	shareWith(t, repo, theirs.ID, owner, "viewer")

	owned, shared, err := svc.Dashboard(ctx, owner.UID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	require.Equal(t, mine.ID, owned[0].ID)
	require.Len(t, shared, 1)
	require.Equal(t, theirs.ID, shared[0].ID)
}

func TestSaveContent_PublishesEventWithOrigin(t *testing.T) {
	svc, _, hub := newService(t)
	id := createDoc(t, svc)

	ch, cancel := hub.Subscribe(realtime.DocTopic(id), 4)
	defer cancel()

	require.NoError(t, svc.SaveContent(context.Background(), id, owner, "hello"))

	select {
	case ev := <-ch:
		require.Equal(t, realtime.EventDocumentUpdated, ev.Type)
		require.Equal(t, owner.UID, ev.OriginUID)
	case <-time.After(time.Second):
		t.Fatal("expected document.updated event")
	}
}
