package models

import (
	"time"
)

// User is an account that owns recipes and reference entries
type User struct {
	ID           uint64      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string      `gorm:"size:255;not null" json:"name"`
	Email        string      `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string      `gorm:"size:255;not null;default:''" json:"-"`
	Permissions  Permissions `json:"-"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds a system administration capability
func (u *User) IsAdmin() bool {
	return u != nil && u.Permissions.IsAdmin()
}

// PasswordResetToken is a pending password reset for an email address
type PasswordResetToken struct {
	Email     string    `gorm:"primaryKey;size:255"`
	TokenHash string    `gorm:"size:255;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// TableName overrides the table name for PasswordResetToken
func (PasswordResetToken) TableName() string {
	return "password_reset_tokens"
}
