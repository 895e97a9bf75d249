package handlers

import (
	"io"
	"net/http"

	"github.com/codrift/codrift/backend/go-services/internal/docsync"
	docservice "github.com/codrift/codrift/backend/go-services/internal/document/service"
	"github.com/codrift/codrift/backend/go-services/internal/presence"
	"github.com/codrift/codrift/backend/go-services/internal/realtime"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// EventsHandler streams realtime updates over SSE. Attaching to a document
// stream is what marks a user present on it: the presence entry lives for
// exactly the lifetime of the connection (plus staleness on a crash).
type EventsHandler struct {
	docs     *docservice.Service
	hub      *realtime.Hub
	sync     *docsync.Manager
	presence *presence.Tracker
}

func NewEventsHandler(docs *docservice.Service, hub *realtime.Hub, sync *docsync.Manager, tracker *presence.Tracker) *EventsHandler {
	return &EventsHandler{docs: docs, hub: hub, sync: sync, presence: tracker}
}

func (h *EventsHandler) Register(rg *gin.RouterGroup) {
	rg.GET("/documents/:id/events", h.DocumentEvents)
	rg.GET("/notifications/events", h.NotificationEvents)
}

// DocumentEvents streams one document's change feed. The initial snapshot is
// sent first; document.updated events carry the merged document, with the
// session's own pending content preserved over its save echo.
func (h *EventsHandler) DocumentEvents(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	docID := c.Param("id")
	doc, role, err := h.docs.View(c.Request.Context(), docID, id.UID)
	if err != nil {
		h.renderError(c, err)
		return
	}

	sess := h.sync.Open(docID, id)
	defer h.sync.Close(docID, id.UID)

	leave, err := h.presence.Join(c.Request.Context(), docID, id)
	if err != nil {
		logger.Errorf("presence join for %s on %s: %v", id.UID, docID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to join document"})
		return
	}
	defer leave()

	ch, cancel := h.hub.Subscribe(realtime.DocTopic(docID), 16)
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.SSEvent("snapshot", gin.H{"document": doc, "role": role})
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, open := <-ch:
			if !open {
				return false
			}
			switch ev.Type {
			case realtime.EventDocumentUpdated:
				cur, _, err := h.docs.View(c.Request.Context(), docID, id.UID)
				if err != nil {
					return false
				}
				merged := sess.ApplyRemote(cur, ev.OriginUID)
				c.SSEvent("document", gin.H{"event": ev, "document": merged, "saving": sess.Saving()})
			case realtime.EventDocumentDeleted:
				c.SSEvent("deleted", gin.H{"event": ev})
				return false
			case realtime.EventPresenceChanged:
				active, err := h.presence.Active(c.Request.Context(), docID)
				if err != nil {
					logger.Warnf("presence list for %s: %v", docID, err)
					return true
				}
				c.SSEvent("presence", gin.H{"event": ev, "active": active})
			default:
				c.SSEvent("message", ev)
			}
			return true
		}
	})
}

// NotificationEvents streams the caller's notification feed events.
func (h *EventsHandler) NotificationEvents(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	ch, cancel := h.hub.Subscribe(realtime.UserTopic(id.UID), 16)
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case ev, open := <-ch:
			if !open {
				return false
			}
			c.SSEvent("notification", ev)
			return true
		}
	})
}

func (h *EventsHandler) renderError(c *gin.Context, err error) {
	switch err {
	case docservice.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "document not found"})
	case docservice.ErrForbidden:
		c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
	default:
		logger.Errorf("event stream setup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
