package models

import "time"

// Evidence is a sourced artifact attached to a claim.
type Evidence struct {
	ID       uint     `gorm:"primaryKey" json:"id"`
	ClaimID  uint     `gorm:"not null;index" json:"claimId"`
	AuthorID uint     `gorm:"not null;index" json:"authorId"`
	Position Position `gorm:"type:varchar(10);not null" json:"position"`
	Title    string   `gorm:"not null" json:"title"`
	URL      string   `json:"url"`
	Status   Status   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`

	Upvotes     int `gorm:"not null;default:0" json:"upvotes"`
	Downvotes   int `gorm:"not null;default:0" json:"downvotes"`
	Score       int `gorm:"not null;default:0" json:"score"`
	FollowCount int `gorm:"not null;default:0" json:"followCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Evidence) TableName() string { return "evidence" }
