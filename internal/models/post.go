package models

import (
	"time"

	"github.com/google/uuid"
)

// Post is community content. Deleted together with its community or author.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CommunityID uint       `gorm:"not null;index" json:"community_id"`
	Community   *Community `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"community,omitempty"`
	AuthorID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"author_id"`
	Author      *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Content     string     `gorm:"type:text;not null" json:"content"`
	MediaURL    string     `gorm:"size:500" json:"media_url,omitempty"`
	MediaType   string     `gorm:"size:50" json:"media_type,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
