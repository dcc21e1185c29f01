// Package notify is the best-effort side channel used to tell users about
// votes and follows that concern them. Producers call Enqueue and never see
// an error; delivery happens on background workers.
package notify

import (
	"context"

	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

// Notification is one message addressed to a single user.
type Notification struct {
	UserID  uint                    `json:"userId"`
	Type    models.NotificationType `json:"type"`
	Title   string                  `json:"title"`
	Message string                  `json:"message"`
	Link    string                  `json:"link"`
}

// Enqueuer is the fire-and-forget contract consumed by the vote and follow services.
type Enqueuer interface {
	Enqueue(n Notification)
}

// Sink delivers a notification somewhere durable or user-visible.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, n Notification) error
}

// Discard drops everything. Useful where notifications are not wanted.
type Discard struct{}

func (Discard) Enqueue(Notification) {}
