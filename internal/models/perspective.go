package models

import "time"

// Perspective is a free-text argument on a claim, approved on creation.
type Perspective struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	ClaimID  uint     `gorm:"not null;index" json:"claimId"`
	AuthorID uint     `gorm:"not null;index" json:"authorId"`
	Position Position `gorm:"type:varchar(10);not null" json:"position"`
	Body     string   `gorm:"type:text;not null" json:"body"`
	Status   Status   `gorm:"type:varchar(20);not null;default:'approved';index" json:"status"`

	Upvotes     int `gorm:"not null;default:0" json:"upvotes"`
	Downvotes   int `gorm:"not null;default:0" json:"downvotes"`
	Score       int `gorm:"not null;default:0" json:"score"`
	FollowCount int `gorm:"not null;default:0" json:"followCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
