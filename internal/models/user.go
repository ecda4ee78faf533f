// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole defines a user's platform-wide role.
type UserRole string

const (
	// UserRoleUser is the default role for regular accounts.
	UserRoleUser UserRole = "user"
	// UserRoleModerator is assigned to delegated school moderators.
	UserRoleModerator UserRole = "moderator"
	// UserRoleAdmin is the platform administrator role.
	UserRoleAdmin UserRole = "admin"
)

// User represents an account in the Campus application.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"size:32;not null;uniqueIndex" json:"username"`
	Email     string         `gorm:"size:255;not null;uniqueIndex" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Role      UserRole       `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Bio       string         `gorm:"type:text" json:"bio"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the platform admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// IsModerator reports whether the user holds the moderator role.
func (u *User) IsModerator() bool {
	return u.Role == UserRoleModerator
}

// IsStaff reports whether the user is an admin or a moderator.
func (u *User) IsStaff() bool {
	return u.IsAdmin() || u.IsModerator()
}
