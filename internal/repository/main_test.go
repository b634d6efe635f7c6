package repository

import (
	"testing"
	"time"

	"commons/internal/database"
	"commons/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// setupTestDB opens a fresh in-memory SQLite database with the full schema.
// Each test gets its own database, so fixtures never leak between tests.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.ConnectSQLite()
	require.NoError(t, err)
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{
		ID:       uuid.New(),
		Email:    username + "@example.com",
		Username: username,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestCommunity(t *testing.T, db *gorm.DB, name string, owner *models.User) *models.Community {
	t.Helper()
	community := &models.Community{Name: name, CreatedByUserID: &owner.ID}
	require.NoError(t, db.Create(community).Error)
	return community
}

func createTestPost(t *testing.T, db *gorm.DB, community *models.Community, author *models.User, content string) *models.Post {
	t.Helper()
	post := &models.Post{
		CommunityID: community.ID,
		AuthorID:    author.ID,
		Content:     content,
	}
	require.NoError(t, db.Create(post).Error)
	return post
}

func createTestRoom(t *testing.T, db *gorm.DB, community *models.Community, title string) *models.ChatRoom {
	t.Helper()
	room := &models.ChatRoom{CommunityID: community.ID, Title: title}
	require.NoError(t, db.Create(room).Error)
	return room
}

func createTestMessage(t *testing.T, db *gorm.DB, room *models.ChatRoom, sender *models.User, content string, sentAt time.Time) *models.Message {
	t.Helper()
	message := &models.Message{
		ChatID:   room.ID,
		SenderID: &sender.ID,
		Type:     models.MessageTypeText,
		Content:  content,
		SentAt:   sentAt,
	}
	require.NoError(t, db.Create(message).Error)
	return message
}
