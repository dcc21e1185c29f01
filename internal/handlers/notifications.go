package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/debate-platform/backend/internal/apperr"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/notify"
)

const (
	defaultNotificationLimit = 20
	maxNotificationLimit     = 100
)

type NotificationHandler struct {
	responder
	inbox Inbox
	feed  Feed
}

func limitParam(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultNotificationLimit, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, apperr.Validation("limit must be a positive integer")
	}
	return min(n, maxNotificationLimit), nil
}

// List returns the caller's inbox, newest first
func (h *NotificationHandler) List(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	limit, err := limitParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	items, err := h.inbox.ListNotifications(c.Request.Context(), caller.UserID, limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	if items == nil {
		items = []models.Notification{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": items})
}

// Recent returns the caller's capped feed from the fast store
func (h *NotificationHandler) Recent(c *gin.Context) {
	caller, err := identity(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	if h.feed == nil {
		h.fail(c, apperr.NotFound("Notification feed is not enabled"))
		return
	}
	limit, err := limitParam(c)
	if err != nil {
		h.fail(c, err)
		return
	}

	items, err := h.feed.Recent(c.Request.Context(), caller.UserID, int64(limit))
	if err != nil {
		h.fail(c, apperr.Internal("Failed to load notifications", err))
		return
	}
	if items == nil {
		items = []notify.FeedEntry{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": items})
}
