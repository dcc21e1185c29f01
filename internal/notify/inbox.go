package notify

import (
	"context"
	"fmt"

	"github.com/emilythestrangee/debate-platform/backend/internal/models"
)

// InboxStore persists notifications for the recipient's inbox.
type InboxStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
}

// InboxSink writes each notification as a row in the recipient's inbox.
type InboxSink struct {
	store InboxStore
}

func NewInboxSink(store InboxStore) *InboxSink {
	return &InboxSink{store: store}
}

func (s *InboxSink) Name() string { return "inbox" }

func (s *InboxSink) Deliver(ctx context.Context, n Notification) error {
	row := &models.Notification{
		UserID:  n.UserID,
		Type:    n.Type,
		Title:   n.Title,
		Message: n.Message,
		Link:    n.Link,
	}
	if err := s.store.CreateNotification(ctx, row); err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}
