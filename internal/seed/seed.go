// Package seed provides helpers to create demo data for development
// environments. Not intended for production use.
package seed

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"commons/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Options configuration for the seeder
type Options struct {
	NumUsers          int
	NumCommunities    int
	PostsPerCommunity int
}

var communityNames = []string{
	"Chess Club", "Movies", "Music", "Gaming", "Fitness",
	"Books", "Food", "Travel", "Programming", "Linux",
	"Homelab", "Art", "History", "Philosophy", "Science",
}

// Run seeds the database with a default demo data set. Safe to call on a
// database that already holds data; existing communities are kept.
func Run(ctx context.Context, db *gorm.DB) error {
	return Seed(ctx, db, Options{NumUsers: 25, NumCommunities: 8, PostsPerCommunity: 10})
}

// Seed populates the database with demo data per opts.
func Seed(ctx context.Context, db *gorm.DB, opts Options) error {
	log.Printf("seeding %d users and %d communities...", opts.NumUsers, opts.NumCommunities)
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	users, err := createUsers(ctx, db, opts.NumUsers)
	if err != nil {
		return fmt.Errorf("failed to create users: %w", err)
	}

	communities, err := createCommunities(ctx, db, users, opts.NumCommunities)
	if err != nil {
		return fmt.Errorf("failed to create communities: %w", err)
	}

	for _, community := range communities {
		members, err := joinMembers(ctx, db, community, users, r)
		if err != nil {
			return fmt.Errorf("failed to create memberships: %w", err)
		}
		if err := createContent(ctx, db, community, members, opts.PostsPerCommunity, r); err != nil {
			return fmt.Errorf("failed to create content: %w", err)
		}
	}

	log.Println("seeding complete")
	return nil
}

func createUsers(ctx context.Context, db *gorm.DB, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		name := gofakeit.Name()
		user := &models.User{
			ID:          uuid.New(),
			Email:       gofakeit.Email(),
			Username:    fmt.Sprintf("%s%d", strings.ToLower(gofakeit.Username()), i),
			DisplayName: name,
			Bio:         gofakeit.Sentence(8),
		}
		if err := db.WithContext(ctx).Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createCommunities(ctx context.Context, db *gorm.DB, users []*models.User, n int) ([]*models.Community, error) {
	if n > len(communityNames) {
		n = len(communityNames)
	}
	communities := make([]*models.Community, 0, n)
	for i := 0; i < n; i++ {
		owner := users[i%len(users)]
		community := &models.Community{
			Name:            communityNames[i],
			Description:     gofakeit.Sentence(12),
			CreatedByUserID: &owner.ID,
		}
		err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(community).Error
		if err != nil {
			return nil, err
		}
		if community.ID == 0 {
			// Already present from a previous run.
			if err := db.WithContext(ctx).Where("name = ?", community.Name).First(community).Error; err != nil {
				return nil, err
			}
		}
		communities = append(communities, community)

		room := &models.ChatRoom{CommunityID: community.ID, Title: "General"}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(room).Error; err != nil {
			return nil, err
		}
	}
	return communities, nil
}

// joinMembers enrolls a random subset of users. The owner is skipped; owner
// standing is derived, never stored as a membership row.
func joinMembers(ctx context.Context, db *gorm.DB, community *models.Community, users []*models.User, r *rand.Rand) ([]*models.User, error) {
	members := make([]*models.User, 0)
	for _, user := range users {
		if community.CreatedByUserID != nil && *community.CreatedByUserID == user.ID {
			members = append(members, user)
			continue
		}
		if r.Intn(100) >= 40 {
			continue
		}
		role := models.MembershipRoleMember
		if r.Intn(10) == 0 {
			role = models.MembershipRoleAdmin
		}
		membership := &models.Membership{
			UserID:      user.ID,
			CommunityID: community.ID,
			Role:        role,
		}
		if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(membership).Error; err != nil {
			return nil, err
		}
		members = append(members, user)
	}
	return members, nil
}

func createContent(ctx context.Context, db *gorm.DB, community *models.Community, members []*models.User, numPosts int, r *rand.Rand) error {
	if len(members) == 0 {
		return nil
	}

	var room models.ChatRoom
	if err := db.WithContext(ctx).Where("community_id = ?", community.ID).First(&room).Error; err != nil {
		return err
	}

	for i := 0; i < numPosts; i++ {
		author := members[r.Intn(len(members))]
		post := &models.Post{
			CommunityID: community.ID,
			AuthorID:    author.ID,
			Content:     gofakeit.Paragraph(1, 3, 8, "\n"),
		}
		if err := db.WithContext(ctx).Create(post).Error; err != nil {
			return err
		}

		for c := 0; c < r.Intn(4); c++ {
			commenter := members[r.Intn(len(members))]
			comment := &models.Comment{
				PostID:   post.ID,
				AuthorID: commenter.ID,
				Content:  gofakeit.Sentence(10),
			}
			if err := db.WithContext(ctx).Create(comment).Error; err != nil {
				return err
			}
		}

		for _, member := range members {
			if r.Intn(100) >= 30 {
				continue
			}
			like := &models.Like{PostID: post.ID, UserID: member.ID}
			if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(like).Error; err != nil {
				return err
			}
		}
	}

	for i := 0; i < 2*numPosts; i++ {
		sender := members[r.Intn(len(members))]
		message := &models.Message{
			ChatID:   room.ID,
			SenderID: &sender.ID,
			Type:     models.MessageTypeText,
			Content:  gofakeit.Sentence(7),
		}
		if err := db.WithContext(ctx).Create(message).Error; err != nil {
			return err
		}
	}

	return nil
}
