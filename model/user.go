package model

import (
	"time"
)

// User roles
const (
	RoleAdmin    = "ADMIN"
	RoleUser     = "USER"
	RoleApprover = "APPROVER"
)

// User represents a registered account. The bcrypt hash is never serialized.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:191;not null" json:"username"`
	Password  string    `gorm:"size:191;not null" json:"-"`
	Role      string    `gorm:"size:16;not null;default:USER" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// ValidRole reports whether role is one of the recognized user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleUser, RoleApprover:
		return true
	}
	return false
}
