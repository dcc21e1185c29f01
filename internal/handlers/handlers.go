package handlers

import (
	"context"
	"log/slog"

	"github.com/emilythestrangee/debate-platform/backend/internal/content"
	"github.com/emilythestrangee/debate-platform/backend/internal/follows"
	"github.com/emilythestrangee/debate-platform/backend/internal/models"
	"github.com/emilythestrangee/debate-platform/backend/internal/notify"
	"github.com/emilythestrangee/debate-platform/backend/internal/votes"
)

// UserStore loads profiles for the user routes.
type UserStore interface {
	GetUser(ctx context.Context, id uint) (models.User, error)
}

// Inbox lists persisted notifications.
type Inbox interface {
	ListNotifications(ctx context.Context, userID uint, limit int) ([]models.Notification, error)
}

// Feed reads the capped recent-notification list. Optional.
type Feed interface {
	Recent(ctx context.Context, userID uint, n int64) ([]notify.FeedEntry, error)
}

type Deps struct {
	Votes   *votes.Service
	Follows *follows.Service
	Content *content.Service
	Users   UserStore
	Inbox   Inbox
	Feed    Feed
	Logger  *slog.Logger
}

// Handler combines all handler types
type Handler struct {
	Vote         *VoteHandler
	Follow       *FollowHandler
	Content      *ContentHandler
	User         *UserHandler
	Notification *NotificationHandler
}

// NewHandler creates a unified handler with all sub-handlers
func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := responder{logger: logger}

	return &Handler{
		Vote:         &VoteHandler{responder: r, votes: d.Votes},
		Follow:       &FollowHandler{responder: r, follows: d.Follows},
		Content:      &ContentHandler{responder: r, content: d.Content, votes: d.Votes, follows: d.Follows},
		User:         &UserHandler{responder: r, users: d.Users, follows: d.Follows},
		Notification: &NotificationHandler{responder: r, inbox: d.Inbox, feed: d.Feed},
	}
}
