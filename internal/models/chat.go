package models

import (
	"time"

	"github.com/google/uuid"
)

// MessageTypeText is the default message type when none is supplied.
const MessageTypeText = "text"

// ChatRoom is a community-scoped room. Titles are unique per community;
// every community gets a "General" room at creation (best-effort).
type ChatRoom struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	CommunityID uint       `gorm:"not null;uniqueIndex:idx_chat_rooms_community_title" json:"community_id"`
	Community   *Community `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"community,omitempty"`
	Title       string     `gorm:"size:100;not null;uniqueIndex:idx_chat_rooms_community_title" json:"title"`
	CreatedAt   time.Time  `json:"created_at"`
}

// TableName specifies the table name for GORM.
func (ChatRoom) TableName() string {
	return "chat_rooms"
}

// Message is a chat room message. When the sender's account is deleted the
// sender reference is cleared rather than cascading the message away.
type Message struct {
	ID       uint       `gorm:"primaryKey" json:"id"`
	ChatID   uint       `gorm:"not null;index" json:"chat_id"`
	ChatRoom *ChatRoom  `gorm:"foreignKey:ChatID;constraint:OnDelete:CASCADE" json:"chat_room,omitempty"`
	SenderID *uuid.UUID `gorm:"type:uuid" json:"sender_id"`
	Sender   *User      `gorm:"foreignKey:SenderID;constraint:OnDelete:SET NULL" json:"sender,omitempty"`
	Type     string     `gorm:"size:50;not null;default:'text'" json:"type"`
	Content  string     `gorm:"type:text;not null" json:"content"`
	SentAt   time.Time  `gorm:"autoCreateTime" json:"sent_at"`
}
