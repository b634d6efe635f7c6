package repository

import (
	"context"

	"commons/internal/models"

	"gorm.io/gorm"
)

// ChatRepository defines the interface for chat room and message operations
type ChatRepository interface {
	CreateRoom(ctx context.Context, room *models.ChatRoom) error
	GetRoomByID(ctx context.Context, id uint) (*models.ChatRoom, error)
	GetRoomByTitle(ctx context.Context, communityID uint, title string) (*models.ChatRoom, error)
	ListRoomsByCommunity(ctx context.Context, communityID uint) ([]*models.ChatRoom, error)
	CreateMessage(ctx context.Context, message *models.Message) error
	GetMessageByID(ctx context.Context, id uint) (*models.Message, error)
	ListMessagesByChat(ctx context.Context, chatID uint, limit, offset int) ([]*models.Message, error)
	CountMessagesByChat(ctx context.Context, chatID uint) (int64, error)
}

type chatRepository struct {
	db *gorm.DB
}

// NewChatRepository creates a new chat repository
func NewChatRepository(db *gorm.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *chatRepository) GetRoomByID(ctx context.Context, id uint) (*models.ChatRoom, error) {
	var room models.ChatRoom
	if err := r.db.WithContext(ctx).First(&room, id).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) GetRoomByTitle(ctx context.Context, communityID uint, title string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := r.db.WithContext(ctx).
		Where("community_id = ? AND title = ?", communityID, title).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *chatRepository) ListRoomsByCommunity(ctx context.Context, communityID uint) ([]*models.ChatRoom, error) {
	var rooms []*models.ChatRoom
	err := r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *chatRepository) CreateMessage(ctx context.Context, message *models.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatRepository) GetMessageByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("Sender").First(&message, id).Error; err != nil {
		return nil, err
	}
	return &message, nil
}

// ListMessagesByChat returns messages newest-first for offset pagination.
// Callers reverse the page for chronological display.
func (r *chatRepository) ListMessagesByChat(ctx context.Context, chatID uint, limit, offset int) ([]*models.Message, error) {
	var messages []*models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("chat_id = ?", chatID).
		Order("sent_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&messages).Error
	return messages, err
}

func (r *chatRepository) CountMessagesByChat(ctx context.Context, chatID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Message{}).
		Where("chat_id = ?", chatID).
		Count(&count).Error
	return count, err
}
