package models

import "time"

type NotificationType string

const (
	NotificationReplyVote   NotificationType = "reply_vote"
	NotificationNewFollower NotificationType = "new_follower"
)

type Notification struct {
	ID        uint             `gorm:"primaryKey" json:"id"`
	UserID    uint             `gorm:"not null;index" json:"userId"` // Receiver
	Type      NotificationType `gorm:"type:varchar(30);not null" json:"type"`
	Title     string           `gorm:"not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	Link      string           `json:"link"`
	IsRead    bool             `gorm:"default:false;index" json:"isRead"`
	CreatedAt time.Time        `json:"createdAt"`
}
