package models

import "time"

// Follow model - absence of a row means "not following"
type Follow struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	TargetType TargetType `gorm:"type:varchar(20);not null;uniqueIndex:idx_follow_target_user,priority:1" json:"targetType"`
	TargetID   uint       `gorm:"not null;uniqueIndex:idx_follow_target_user,priority:2" json:"targetId"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_follow_target_user,priority:3;index" json:"userId"`
	CreatedAt  time.Time  `json:"createdAt"`
}
