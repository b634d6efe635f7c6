package models

import (
	"time"

	"github.com/google/uuid"
)

// Community is a named space users join to post, comment, and chat.
// The creator is the owner; ownership is derived from CreatedByUserID,
// never from a membership row. CreatedByUserID is only nil after the
// creator's account is deleted.
type Community struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Name            string     `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Description     string     `gorm:"type:text" json:"description,omitempty"`
	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"created_by"`
	CreatedByUser   *User      `gorm:"foreignKey:CreatedByUserID;constraint:OnDelete:SET NULL" json:"created_by_user,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (Community) TableName() string {
	return "communities"
}

// IsOwnedBy reports whether userID is the community owner.
func (c *Community) IsOwnedBy(userID uuid.UUID) bool {
	return c.CreatedByUserID != nil && *c.CreatedByUserID == userID
}
