package handlers

import (
	"errors"
	"net/http"

	"github.com/codrift/codrift/backend/go-services/internal/access"
	"github.com/codrift/codrift/backend/go-services/internal/docsync"
	docservice "github.com/codrift/codrift/backend/go-services/internal/document/service"
	"github.com/codrift/codrift/backend/go-services/internal/presence"
	"github.com/codrift/codrift/backend/go-services/internal/sharing"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// DocumentsHandler exposes document CRUD, content saves, version history,
// collaborator management and presence over HTTP.
type DocumentsHandler struct {
	docs     *docservice.Service
	sharing  *sharing.Service
	sync     *docsync.Manager
	presence *presence.Tracker
}

func NewDocumentsHandler(docs *docservice.Service, sh *sharing.Service, sync *docsync.Manager, tracker *presence.Tracker) *DocumentsHandler {
	return &DocumentsHandler{docs: docs, sharing: sh, sync: sync, presence: tracker}
}

// Register routes under the authenticated API group.
func (h *DocumentsHandler) Register(rg *gin.RouterGroup) {
	d := rg.Group("/documents")
	d.GET("", h.List)
	d.POST("", h.Create)
	d.GET("/:id", h.Get)
	d.PATCH("/:id", h.Rename)
	d.DELETE("/:id", h.Delete)
	d.PUT("/:id/content", h.SaveContent)
	d.GET("/:id/versions", h.Versions)
	d.POST("/:id/versions/:vid/restore", h.Restore)
	d.POST("/:id/collaborators", h.AddCollaborator)
	d.PATCH("/:id/collaborators/:uid", h.UpdateCollaboratorRole)
	d.DELETE("/:id/collaborators/:uid", h.RemoveCollaborator)
	d.GET("/:id/presence", h.Presence)
}

// List returns the caller's dashboard: owned documents and documents shared
// with them, both most recently updated first.
func (h *DocumentsHandler) List(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	owned, shared, err := h.docs.Dashboard(c.Request.Context(), id.UID)
	if err != nil {
		logger.Errorf("dashboard for %s: %v", id.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"owned": owned, "shared": shared})
}

func (h *DocumentsHandler) Create(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	doc, err := h.docs.Create(c.Request.Context(), id, req.Title)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *DocumentsHandler) Get(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	doc, role, err := h.docs.View(c.Request.Context(), c.Param("id"), id.UID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"role":     role,
		"canEdit":  access.CanEdit(role),
	})
}

func (h *DocumentsHandler) Rename(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Title string `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.docs.Rename(c.Request.Context(), c.Param("id"), id, req.Title); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "renamed"})
}

func (h *DocumentsHandler) Delete(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	if err := h.docs.Delete(c.Request.Context(), c.Param("id"), id); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

// SaveContent feeds a keystroke batch into the caller's edit session. The
// write reaches the store after the inactivity debounce; the handler answers
// as soon as the edit is buffered.
func (h *DocumentsHandler) SaveContent(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Content *string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	docID := c.Param("id")
	// role check up front so a viewer gets a 403 instead of a silent
	// debounced failure later
	_, role, err := h.docs.View(c.Request.Context(), docID, id.UID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if !access.CanEdit(role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
		return
	}
	sess := h.sync.Open(docID, id)
	sess.Edit(*req.Content)
	c.JSON(http.StatusAccepted, gin.H{"saving": sess.Saving()})
}

func (h *DocumentsHandler) Versions(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	vs, err := h.docs.Versions(c.Request.Context(), c.Param("id"), id.UID)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": vs})
}

func (h *DocumentsHandler) Restore(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	if err := h.docs.Restore(c.Request.Context(), c.Param("id"), c.Param("vid"), id); err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "restored"})
}

func (h *DocumentsHandler) AddCollaborator(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email" binding:"required"`
		Role  string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	res, err := h.sharing.AddCollaborator(c.Request.Context(), c.Param("id"), id, req.Email, req.Role)
	if err != nil {
		h.renderSharingError(c, err)
		return
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, res)
}

func (h *DocumentsHandler) UpdateCollaboratorRole(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.sharing.UpdateRole(c.Request.Context(), c.Param("id"), id, c.Param("uid"), req.Role); err != nil {
		h.renderSharingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "role updated"})
}

func (h *DocumentsHandler) RemoveCollaborator(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	if err := h.sharing.Remove(c.Request.Context(), c.Param("id"), id, c.Param("uid")); err != nil {
		h.renderSharingError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "collaborator removed"})
}

// Presence lists who currently has the document open. Any role with view
// access may look.
func (h *DocumentsHandler) Presence(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	docID := c.Param("id")
	if _, _, err := h.docs.View(c.Request.Context(), docID, id.UID); err != nil {
		h.renderError(c, err)
		return
	}
	entries, err := h.presence.Active(c.Request.Context(), docID)
	if err != nil {
		logger.Errorf("presence list for %s: %v", docID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list presence"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": entries})
}

func (h *DocumentsHandler) renderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, docservice.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
	case errors.Is(err, docservice.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, docservice.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("document operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *DocumentsHandler) renderSharingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sharing.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, sharing.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	case errors.Is(err, sharing.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		logger.Errorf("sharing operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
