package controllers

import (
	"io"
	"net/http"
	"time"

	"iris-api/middleware"
	"iris-api/pubsub"
	"iris-api/services"

	"github.com/gin-gonic/gin"
)

const streamKeepAlive = 25 * time.Second

type NotificationController struct {
	notifications *services.NotificationService
	hub           pubsub.Hub
}

func NewNotificationController(notifications *services.NotificationService, hub pubsub.Hub) *NotificationController {
	return &NotificationController{notifications: notifications, hub: hub}
}

// GetNotifications handles GET /notifications. user_id may be given but
// must name the caller; unread=true limits the list to unread notices.
func (h *NotificationController) GetNotifications(c *gin.Context) {
	id := middleware.IdentityFrom(c)
	if userID := c.Query("user_id"); userID != "" && userID != id.UserID {
		respondError(c, &services.ForbiddenError{Reason: "cannot list another user's notifications"})
		return
	}
	items, err := h.notifications.List(c.Request.Context(), id.UserID, c.Query("unread") == "true")
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, items)
}

func (h *NotificationController) GetUnreadCount(c *gin.Context) {
	n, err := h.notifications.UnreadCount(c.Request.Context(), middleware.IdentityFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"unread": n})
}

// MarkAsRead handles POST /notifications/:id/mark_as_read.
func (h *NotificationController) MarkAsRead(c *gin.Context) {
	n, err := h.notifications.MarkRead(c.Request.Context(), middleware.IdentityFrom(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, http.StatusOK, n)
}

// Stream relays the caller's notifications as server-sent events until the
// client disconnects.
func (h *NotificationController) Stream(c *gin.Context) {
	if h.hub == nil {
		respondError(c, &services.NotFoundError{Entity: "stream", Key: "notifications"})
		return
	}
	ctx := c.Request.Context()
	events, err := h.hub.Subscribe(ctx, middleware.IdentityFrom(c).UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case n, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("notification", n)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
}
