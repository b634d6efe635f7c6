// Package service provides application business logic for communities,
// memberships, posts, comments, likes, chat, and user profiles.
package service

import (
	"time"

	"commons/internal/models"

	"github.com/google/uuid"
)

// Read responses are assembled into explicit view structs; entity objects
// are never decorated in place.

// PageMeta carries pagination metadata for offset/limit listings.
type PageMeta struct {
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	HasMore    bool  `json:"has_more"`
}

// newPageMeta derives page metadata from the standard contract:
// has_more = skip + limit < total, page = skip/limit + 1.
func newPageMeta(total int64, limit, offset int) PageMeta {
	page := 1
	if limit > 0 {
		page = offset/limit + 1
	}
	return PageMeta{
		TotalCount: total,
		Page:       page,
		PageSize:   limit,
		HasMore:    int64(offset+limit) < total,
	}
}

// CommunityDetail is a community annotated relative to the requesting user.
type CommunityDetail struct {
	models.Community
	MemberCount int64 `json:"member_count"`
	IsMember    bool  `json:"is_member"`
	IsOwner     bool  `json:"is_owner"`
}

// MembershipStatus reports the requesting user's standing in a community.
type MembershipStatus struct {
	IsMember bool                  `json:"is_member"`
	IsOwner  bool                  `json:"is_owner"`
	Role     models.MembershipRole `json:"role,omitempty"`
}

// MemberView is one entry in a community member listing. The owner appears
// with MembershipID 0 and role "owner" when they hold no explicit row.
type MemberView struct {
	MembershipID    uint                  `json:"membership_id"`
	UserID          uuid.UUID             `json:"user_id"`
	CommunityID     uint                  `json:"community_id"`
	Role            models.MembershipRole `json:"role"`
	JoinedAt        time.Time             `json:"joined_at"`
	UserDisplayName string                `json:"user_display_name"`
	IsOwner         bool                  `json:"is_owner"`
}

// UserCommunityView is a community a user belongs to, annotated with their
// membership role and join time.
type UserCommunityView struct {
	models.Community
	Role     models.MembershipRole `json:"role"`
	JoinedAt time.Time             `json:"joined_at"`
}

// PostView is a post decorated with author display data relative to the
// requesting user.
type PostView struct {
	models.Post
	AuthorDisplayName string `json:"author_display_name"`
	IsAuthor          bool   `json:"is_author"`
}

// PostPage is a paginated post listing.
type PostPage struct {
	Posts []PostView `json:"posts"`
	PageMeta
}

// CommentView is a comment decorated with author display data.
type CommentView struct {
	models.Comment
	AuthorDisplayName string `json:"author_display_name"`
	IsAuthor          bool   `json:"is_author"`
}

// CommentPage is a paginated comment listing.
type CommentPage struct {
	Comments []CommentView `json:"comments"`
	PageMeta
}

// LikeStatus is the result of a like toggle or status query.
type LikeStatus struct {
	PostID    uint  `json:"post_id"`
	IsLiked   bool  `json:"is_liked"`
	LikeCount int64 `json:"like_count"`
}

// MessageView is a chat message decorated with sender display data.
type MessageView struct {
	models.Message
	SenderDisplayName string `json:"sender_display_name"`
	IsSender          bool   `json:"is_sender"`
}

// MessagePage is a paginated message listing in chronological order.
type MessagePage struct {
	Messages   []MessageView `json:"messages"`
	TotalCount int64         `json:"total_count"`
	HasMore    bool          `json:"has_more"`
}

// unknownSenderLabel is shown when a message's sender row no longer exists.
const unknownSenderLabel = "Unknown User"

func displayLabel(u *models.User) string {
	if u == nil {
		return unknownSenderLabel
	}
	return u.DisplayLabel()
}
