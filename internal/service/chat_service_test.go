package service

import (
	"context"
	"testing"
	"time"

	"commons/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func chatRoomFixture() *chatRepoStub {
	chatRepo := noopChatRepo()
	chatRepo.getRoomByIDFn = func(_ context.Context, id uint) (*models.ChatRoom, error) {
		if id != 4 {
			return nil, gorm.ErrRecordNotFound
		}
		return &models.ChatRoom{ID: 4, CommunityID: 1, Title: "General"}, nil
	}
	return chatRepo
}

func TestChatService_CreateChatRoom(t *testing.T) {
	t.Parallel()

	community, memberships, _, member, stranger := chessClubFixture()
	ctx := context.Background()

	t.Run("title required", func(t *testing.T) {
		t.Parallel()
		svc := NewChatService(noopChatRepo(), kernelFor(community, memberships))
		_, err := svc.CreateChatRoom(ctx, CreateChatRoomInput{UserID: member, CommunityID: 1, Title: "  "})
		assertValidationError(t, err)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		t.Parallel()
		svc := NewChatService(noopChatRepo(), kernelFor(community, memberships))
		_, err := svc.CreateChatRoom(ctx, CreateChatRoomInput{UserID: stranger, CommunityID: 1, Title: "Openings"})
		assertForbiddenError(t, err)
	})

	t.Run("duplicate title is a conflict", func(t *testing.T) {
		t.Parallel()
		chatRepo := noopChatRepo()
		chatRepo.createRoomFn = func(_ context.Context, _ *models.ChatRoom) error {
			return gorm.ErrDuplicatedKey
		}
		svc := NewChatService(chatRepo, kernelFor(community, memberships))
		_, err := svc.CreateChatRoom(ctx, CreateChatRoomInput{UserID: member, CommunityID: 1, Title: "General"})
		assertConflictError(t, err)
	})

	t.Run("member creates with trimmed title", func(t *testing.T) {
		t.Parallel()
		chatRepo := noopChatRepo()
		chatRepo.createRoomFn = func(_ context.Context, r *models.ChatRoom) error {
			r.ID = 8
			return nil
		}
		svc := NewChatService(chatRepo, kernelFor(community, memberships))
		room, err := svc.CreateChatRoom(ctx, CreateChatRoomInput{UserID: member, CommunityID: 1, Title: " Openings "})
		require.NoError(t, err)
		assert.Equal(t, "Openings", room.Title)
		assert.Equal(t, uint(1), room.CommunityID)
	})
}

func TestChatService_CreateDefaultRoom_Idempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("existing room is returned", func(t *testing.T) {
		t.Parallel()
		chatRepo := noopChatRepo()
		chatRepo.getRoomByTitleFn = func(_ context.Context, communityID uint, title string) (*models.ChatRoom, error) {
			return &models.ChatRoom{ID: 4, CommunityID: communityID, Title: title}, nil
		}
		created := false
		chatRepo.createRoomFn = func(_ context.Context, _ *models.ChatRoom) error {
			created = true
			return nil
		}
		svc := NewChatService(chatRepo, nil)
		room, err := svc.CreateDefaultRoom(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(4), room.ID)
		assert.False(t, created)
	})

	t.Run("insert race falls back to the winner's room", func(t *testing.T) {
		t.Parallel()
		calls := 0
		chatRepo := noopChatRepo()
		chatRepo.getRoomByTitleFn = func(_ context.Context, communityID uint, title string) (*models.ChatRoom, error) {
			calls++
			if calls == 1 {
				return nil, gorm.ErrRecordNotFound
			}
			return &models.ChatRoom{ID: 4, CommunityID: communityID, Title: title}, nil
		}
		chatRepo.createRoomFn = func(_ context.Context, _ *models.ChatRoom) error {
			return gorm.ErrDuplicatedKey
		}
		svc := NewChatService(chatRepo, nil)
		room, err := svc.CreateDefaultRoom(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, uint(4), room.ID)
	})
}

func TestChatService_ListCommunityChatRooms_MemberOnly(t *testing.T) {
	t.Parallel()

	community, memberships, _, member, stranger := chessClubFixture()
	chatRepo := noopChatRepo()
	chatRepo.listRoomsFn = func(_ context.Context, _ uint) ([]*models.ChatRoom, error) {
		return []*models.ChatRoom{{ID: 4, CommunityID: 1, Title: "General"}}, nil
	}
	svc := NewChatService(chatRepo, kernelFor(community, memberships))
	ctx := context.Background()

	_, err := svc.ListCommunityChatRooms(ctx, 1, stranger)
	assertForbiddenError(t, err)

	rooms, err := svc.ListCommunityChatRooms(ctx, 1, member)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, "General", rooms[0].Title)
}

func TestChatService_SendMessage(t *testing.T) {
	t.Parallel()

	community, memberships, _, member, stranger := chessClubFixture()
	ctx := context.Background()

	chatRepo := chatRoomFixture()
	chatRepo.createMessageFn = func(_ context.Context, m *models.Message) error {
		m.ID = 21
		return nil
	}
	chatRepo.getMessageFn = func(_ context.Context, id uint) (*models.Message, error) {
		sender := member
		return &models.Message{
			ID: id, ChatID: 4, SenderID: &sender, Type: models.MessageTypeText, Content: "hello",
			Sender: &models.User{ID: member, Username: "mona"},
		}, nil
	}
	svc := NewChatService(chatRepo, kernelFor(community, memberships))

	t.Run("content required", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, SendMessageInput{UserID: member, ChatID: 4, Content: "  "})
		assertValidationError(t, err)
	})

	t.Run("missing room", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, SendMessageInput{UserID: member, ChatID: 99, Content: "hello"})
		assertNotFoundError(t, err)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		_, err := svc.SendMessage(ctx, SendMessageInput{UserID: stranger, ChatID: 4, Content: "hello"})
		assertForbiddenError(t, err)
	})

	t.Run("member sends", func(t *testing.T) {
		view, err := svc.SendMessage(ctx, SendMessageInput{UserID: member, ChatID: 4, Content: "hello"})
		require.NoError(t, err)
		assert.Equal(t, "mona", view.SenderDisplayName)
		assert.True(t, view.IsSender)
	})
}

func TestChatService_ListChatMessages(t *testing.T) {
	t.Parallel()

	community, memberships, _, member, stranger := chessClubFixture()
	other := uuid.New()
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ctx := context.Background()

	chatRepo := chatRoomFixture()
	chatRepo.countMessagesFn = func(_ context.Context, _ uint) (int64, error) { return 3, nil }
	chatRepo.listMessagesFn = func(_ context.Context, _ uint, _, _ int) ([]*models.Message, error) {
		sender := member
		// Newest first, as the store returns them.
		return []*models.Message{
			{ID: 3, ChatID: 4, SenderID: &sender, Content: "third", SentAt: base.Add(2 * time.Minute),
				Sender: &models.User{ID: member, Username: "mona"}},
			{ID: 2, ChatID: 4, SenderID: nil, Content: "second", SentAt: base.Add(time.Minute)},
			{ID: 1, ChatID: 4, SenderID: &other, Content: "first", SentAt: base,
				Sender: &models.User{ID: other, Email: "o@example.com"}},
		}, nil
	}
	svc := NewChatService(chatRepo, kernelFor(community, memberships))

	t.Run("non-member is rejected", func(t *testing.T) {
		_, err := svc.ListChatMessages(ctx, ListMessagesInput{ChatID: 4, UserID: stranger})
		assertForbiddenError(t, err)
	})

	t.Run("page is chronological with sender fallbacks", func(t *testing.T) {
		page, err := svc.ListChatMessages(ctx, ListMessagesInput{ChatID: 4, UserID: member, Limit: 50})
		require.NoError(t, err)
		require.Len(t, page.Messages, 3)
		assert.Equal(t, int64(3), page.TotalCount)
		assert.False(t, page.HasMore)

		assert.Equal(t, "first", page.Messages[0].Content)
		assert.Equal(t, "third", page.Messages[2].Content)

		assert.Equal(t, "o@example.com", page.Messages[0].SenderDisplayName)
		assert.Equal(t, "Unknown User", page.Messages[1].SenderDisplayName)
		assert.Equal(t, "mona", page.Messages[2].SenderDisplayName)

		assert.False(t, page.Messages[0].IsSender)
		assert.True(t, page.Messages[2].IsSender)
	})

	t.Run("has_more with a short page", func(t *testing.T) {
		page, err := svc.ListChatMessages(ctx, ListMessagesInput{ChatID: 4, UserID: member, Limit: 2})
		require.NoError(t, err)
		assert.True(t, page.HasMore)
	})
}
