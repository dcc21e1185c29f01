package models

import "time"

type Claim struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Title    string `gorm:"not null" json:"title"`
	Body     string `gorm:"type:text" json:"body"`
	AuthorID uint   `gorm:"not null;index" json:"authorId"`
	Status   Status `gorm:"type:varchar(20);not null;default:'approved';index" json:"status"`

	Upvotes     int `gorm:"not null;default:0" json:"upvotes"`
	Downvotes   int `gorm:"not null;default:0" json:"downvotes"`
	TotalScore  int `gorm:"not null;default:0" json:"totalScore"`
	FollowCount int `gorm:"not null;default:0" json:"followCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
