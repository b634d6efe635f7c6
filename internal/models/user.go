// Package models contains data structures for the application's domain entities.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account provisioned by the external identity provider.
// The ID is the provider's opaque identifier; only profile fields
// (display name, username, bio) are editable in-system.
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	Username    string    `gorm:"size:50;index" json:"username,omitempty"`
	DisplayName string    `gorm:"size:100" json:"display_name,omitempty"`
	Bio         string    `gorm:"type:text" json:"bio,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// DisplayLabel is the fallback chain used everywhere a user is shown:
// display_name, then username, then email.
func (u *User) DisplayLabel() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Email
}
