package models

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Username string `gorm:"unique;not null" json:"username"`
	Email    string `gorm:"unique;not null" json:"-"`
	Bio      string `json:"bio"`
	Avatar   string `json:"avatar"` // Stores avatar ID (1-6) or URL
	Role     string `gorm:"size:20;default:'user';not null" json:"role"` // user, moderator, admin

	// Maintained by the follow state machine only
	FollowCount int `gorm:"not null;default:0" json:"followCount"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// CanModerate reports whether the role may change approval status.
func CanModerate(role string) bool {
	return role == RoleModerator || role == RoleAdmin
}
