package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"commons/internal/authz"
	"commons/internal/middleware"
	"commons/internal/models"
	"commons/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DefaultChatRoomTitle is the room provisioned for every new community.
const DefaultChatRoomTitle = "General"

// ChatService implements community-scoped chat rooms and messages. Every
// operation requires member standing in the room's community.
type ChatService struct {
	chatRepo repository.ChatRepository
	kernel   *authz.Kernel
}

// CreateChatRoomInput is the input for creating a chat room.
type CreateChatRoomInput struct {
	UserID      uuid.UUID
	CommunityID uint
	Title       string
}

// SendMessageInput is the input for sending a message.
type SendMessageInput struct {
	UserID  uuid.UUID
	ChatID  uint
	Content string
	Type    string
}

// ListMessagesInput is the input for listing a room's messages.
type ListMessagesInput struct {
	ChatID uint
	UserID uuid.UUID
	Limit  int
	Offset int
}

// NewChatService returns a new ChatService.
func NewChatService(chatRepo repository.ChatRepository, kernel *authz.Kernel) *ChatService {
	return &ChatService{chatRepo: chatRepo, kernel: kernel}
}

const (
	maxChatTitleLen     = 100
	maxMessageLen       = 10000
	defaultMessageLimit = 50
)

// CreateChatRoom creates a room in the community. Titles are unique per
// community.
func (s *ChatService) CreateChatRoom(ctx context.Context, in CreateChatRoomInput) (*models.ChatRoom, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if len(title) > maxChatTitleLen {
		return nil, models.NewValidationError("Title too long (max 100 characters)")
	}

	if _, err := s.kernel.Authorize(ctx, in.UserID, in.CommunityID, authz.LevelMember); err != nil {
		return nil, err
	}

	room := &models.ChatRoom{CommunityID: in.CommunityID, Title: title}
	if err := s.chatRepo.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("A chat room with this title already exists in this community")
		}
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "chat room created",
		slog.Uint64("chat_id", uint64(room.ID)),
		slog.Uint64("community_id", uint64(in.CommunityID)),
	)
	return room, nil
}

// CreateDefaultRoom provisions the "General" room for a community.
// Idempotent: an existing room (by title or by a racing insert) is returned
// as-is.
func (s *ChatService) CreateDefaultRoom(ctx context.Context, communityID uint) (*models.ChatRoom, error) {
	existing, err := s.chatRepo.GetRoomByTitle(ctx, communityID, DefaultChatRoomTitle)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	room := &models.ChatRoom{CommunityID: communityID, Title: DefaultChatRoomTitle}
	if err := s.chatRepo.CreateRoom(ctx, room); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return s.chatRepo.GetRoomByTitle(ctx, communityID, DefaultChatRoomTitle)
		}
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "default chat room created",
		slog.Uint64("community_id", uint64(communityID)),
	)
	return room, nil
}

// ListCommunityChatRooms returns the community's rooms. Member-only.
func (s *ChatService) ListCommunityChatRooms(ctx context.Context, communityID uint, userID uuid.UUID) ([]*models.ChatRoom, error) {
	if _, err := s.kernel.Authorize(ctx, userID, communityID, authz.LevelMember); err != nil {
		return nil, err
	}
	return s.chatRepo.ListRoomsByCommunity(ctx, communityID)
}

// SendMessage posts a message to a room on behalf of UserID. Member standing
// is checked against the room's community.
func (s *ChatService) SendMessage(ctx context.Context, in SendMessageInput) (*MessageView, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxMessageLen {
		return nil, models.NewValidationError("Message too long (max 10000 characters)")
	}

	room, err := s.loadRoom(ctx, in.ChatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.kernel.Authorize(ctx, in.UserID, room.CommunityID, authz.LevelMember); err != nil {
		return nil, err
	}

	msgType := in.Type
	if msgType == "" {
		msgType = models.MessageTypeText
	}

	senderID := in.UserID
	message := &models.Message{
		ChatID:   in.ChatID,
		SenderID: &senderID,
		Type:     msgType,
		Content:  in.Content,
	}
	if err := s.chatRepo.CreateMessage(ctx, message); err != nil {
		return nil, err
	}

	stored, err := s.chatRepo.GetMessageByID(ctx, message.ID)
	if err != nil {
		return nil, err
	}
	view := newMessageView(stored, in.UserID)
	return &view, nil
}

// ListChatMessages returns a page of messages. Pagination walks newest-first
// but the returned slice is chronological (oldest first) for display.
// Member-only.
func (s *ChatService) ListChatMessages(ctx context.Context, in ListMessagesInput) (*MessagePage, error) {
	room, err := s.loadRoom(ctx, in.ChatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.kernel.Authorize(ctx, in.UserID, room.CommunityID, authz.LevelMember); err != nil {
		return nil, err
	}

	limit := in.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultMessageLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	total, err := s.chatRepo.CountMessagesByChat(ctx, in.ChatID)
	if err != nil {
		return nil, err
	}
	messages, err := s.chatRepo.ListMessagesByChat(ctx, in.ChatID, limit, offset)
	if err != nil {
		return nil, err
	}

	// Reverse the newest-first page into chronological order.
	views := make([]MessageView, len(messages))
	for i, m := range messages {
		views[len(messages)-1-i] = newMessageView(m, in.UserID)
	}

	return &MessagePage{
		Messages:   views,
		TotalCount: total,
		HasMore:    int64(offset+limit) < total,
	}, nil
}

func (s *ChatService) loadRoom(ctx context.Context, chatID uint) (*models.ChatRoom, error) {
	room, err := s.chatRepo.GetRoomByID(ctx, chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Chat room", chatID)
		}
		return nil, err
	}
	return room, nil
}

func newMessageView(message *models.Message, userID uuid.UUID) MessageView {
	view := MessageView{
		Message:           *message,
		SenderDisplayName: displayLabel(message.Sender),
	}
	if message.SenderID != nil && userID != uuid.Nil {
		view.IsSender = *message.SenderID == userID
	}
	return view
}
