package handlers

import (
	"errors"
	"net/http"

	"github.com/codrift/codrift/backend/go-services/internal/notifications"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// NotificationsHandler exposes the per-user notification feed.
type NotificationsHandler struct {
	svc *notifications.Service
}

func NewNotificationsHandler(svc *notifications.Service) *NotificationsHandler {
	return &NotificationsHandler{svc: svc}
}

func (h *NotificationsHandler) Register(rg *gin.RouterGroup) {
	n := rg.Group("/notifications")
	n.GET("", h.List)
	n.POST("/:id/read", h.MarkRead)
	n.POST("/read-all", h.MarkAllRead)
}

// List returns the feed newest first plus the derived unread count.
func (h *NotificationsHandler) List(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	feed, unread, err := h.svc.Feed(c.Request.Context(), id.UID)
	if err != nil {
		logger.Errorf("notification feed for %s: %v", id.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": feed, "unreadCount": unread})
}

func (h *NotificationsHandler) MarkRead(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	if err := h.svc.MarkRead(c.Request.Context(), id.UID, c.Param("id")); err != nil {
		if errors.Is(err, notifications.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		logger.Errorf("mark read for %s: %v", id.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

func (h *NotificationsHandler) MarkAllRead(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	n, err := h.svc.MarkAllRead(c.Request.Context(), id.UID)
	if err != nil {
		logger.Errorf("mark all read for %s: %v", id.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark all as read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"marked": n})
}
