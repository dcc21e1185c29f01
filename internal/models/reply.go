package models

import "time"

// Reply is a comment on a piece of evidence or a perspective.
type Reply struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	ParentType TargetType `gorm:"type:varchar(20);not null;index:idx_reply_parent" json:"parentType"`
	ParentID   uint       `gorm:"not null;index:idx_reply_parent" json:"parentId"`
	AuthorID   uint       `gorm:"not null;index" json:"authorId"`
	Body       string     `gorm:"type:text;not null" json:"body"`

	Upvotes   int `gorm:"not null;default:0" json:"upvotes"`
	Downvotes int `gorm:"not null;default:0" json:"downvotes"`
	Score     int `gorm:"not null;default:0" json:"score"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
