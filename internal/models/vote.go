package models

import "time"

// Vote model - one live vote per user per target
type Vote struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	TargetType TargetType    `gorm:"type:varchar(20);not null;uniqueIndex:idx_vote_target_user,priority:1" json:"targetType"`
	TargetID   uint          `gorm:"not null;uniqueIndex:idx_vote_target_user,priority:2" json:"targetId"`
	UserID     uint          `gorm:"not null;uniqueIndex:idx_vote_target_user,priority:3;index" json:"userId"`
	Direction  VoteDirection `gorm:"type:varchar(10);not null" json:"voteType"`
	CreatedAt  time.Time     `gorm:"index" json:"createdAt"`
	UpdatedAt  time.Time     `json:"updatedAt"`
}
