package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/codrift/codrift/backend/go-services/internal/storage"
	"github.com/codrift/codrift/backend/go-services/internal/users"
	"github.com/codrift/codrift/backend/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

// MeHandler serves the caller's own profile and avatar upload.
type MeHandler struct {
	users   *users.Service
	avatars *storage.MinIOStorage // nil when object storage is not configured
}

func NewMeHandler(u *users.Service, avatars *storage.MinIOStorage) *MeHandler {
	return &MeHandler{users: u, avatars: avatars}
}

func (h *MeHandler) Register(rg *gin.RouterGroup) {
	m := rg.Group("/me")
	m.GET("", h.Get)
	m.PATCH("", h.Update)
	m.POST("/avatar", h.UploadAvatar)
}

func (h *MeHandler) Get(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	u, err := h.users.GetByUID(c.Request.Context(), id.UID)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		logger.Errorf("profile load for %s: %v", id.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load profile"})
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *MeHandler) Update(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	var req struct {
		DisplayName string `json:"displayName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.UpdateDisplayName(c.Request.Context(), id.UID, req.DisplayName); err != nil {
		logger.Errorf("display name update for %s: %v", id.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile updated"})
}

// UploadAvatar stores the uploaded image and points the profile's photoURL at
// a presigned link.
func (h *MeHandler) UploadAvatar(c *gin.Context) {
	id, ok := callerIdentity(c)
	if !ok {
		return
	}
	if h.avatars == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "object storage not configured"})
		return
	}
	file, header, err := c.Request.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "avatar file required"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	key, err := h.avatars.UploadAvatar(c.Request.Context(), id.UID, file, header.Size, contentType)
	if err != nil {
		logger.Errorf("avatar upload for %s: %v", id.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store avatar"})
		return
	}
	url, err := h.avatars.GetPresignedURL(c.Request.Context(), key, 7*24*time.Hour)
	if err != nil {
		logger.Errorf("avatar presign for %s: %v", id.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to link avatar"})
		return
	}
	if err := h.users.UpdatePhotoURL(c.Request.Context(), id.UID, url); err != nil {
		logger.Errorf("photoURL update for %s: %v", id.UID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"photoURL": url})
}
