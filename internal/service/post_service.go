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

// PostService implements post CRUD. Creation requires member standing in the
// community; update and delete require authorship. Admin standing does not
// let a user edit another member's post.
type PostService struct {
	postRepo repository.PostRepository
	kernel   *authz.Kernel
}

// CreatePostInput is the input for creating a post.
type CreatePostInput struct {
	UserID      uuid.UUID
	CommunityID uint
	Content     string
	MediaURL    string
	MediaType   string
}

// ListPostsInput is the input for listing a community's posts.
type ListPostsInput struct {
	CommunityID uint
	UserID      uuid.UUID
	Limit       int
	Offset      int
}

// UpdatePostInput carries a partial patch; nil fields are left unchanged.
type UpdatePostInput struct {
	UserID    uuid.UUID
	PostID    uint
	Content   *string
	MediaURL  *string
	MediaType *string
}

// NewPostService returns a new PostService.
func NewPostService(postRepo repository.PostRepository, kernel *authz.Kernel) *PostService {
	return &PostService{postRepo: postRepo, kernel: kernel}
}

const (
	maxPostContentLen = 50000
	defaultPostLimit  = 20
)

// CreatePost creates a post in the community on behalf of UserID.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*PostView, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxPostContentLen {
		return nil, models.NewValidationError("Content too long (max 50000 characters)")
	}

	if _, err := s.kernel.Authorize(ctx, in.UserID, in.CommunityID, authz.LevelMember); err != nil {
		return nil, err
	}

	post := &models.Post{
		CommunityID: in.CommunityID,
		AuthorID:    in.UserID,
		Content:     in.Content,
		MediaURL:    in.MediaURL,
		MediaType:   in.MediaType,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "post created",
		slog.Uint64("post_id", uint64(post.ID)),
		slog.Uint64("community_id", uint64(in.CommunityID)),
	)

	return s.getPostView(ctx, post.ID, in.UserID)
}

// ListCommunityPosts returns a page of posts, newest first, decorated with
// author display data. Authenticated callers must be members; anonymous
// listing passes through without the membership gate.
func (s *PostService) ListCommunityPosts(ctx context.Context, in ListPostsInput) (*PostPage, error) {
	if in.UserID != uuid.Nil {
		if _, err := s.kernel.Authorize(ctx, in.UserID, in.CommunityID, authz.LevelMember); err != nil {
			return nil, err
		}
	} else {
		// Still surface NotFound for a bad community ID.
		if _, _, err := s.kernel.ResolveActor(ctx, uuid.Nil, in.CommunityID); err != nil {
			return nil, err
		}
	}

	limit := in.Limit
	if limit <= 0 || limit > 100 {
		limit = defaultPostLimit
	}
	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	total, err := s.postRepo.CountByCommunity(ctx, in.CommunityID)
	if err != nil {
		return nil, err
	}
	posts, err := s.postRepo.ListByCommunity(ctx, in.CommunityID, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]PostView, 0, len(posts))
	for _, p := range posts {
		views = append(views, newPostView(p, in.UserID))
	}

	return &PostPage{
		Posts:    views,
		PageMeta: newPageMeta(total, limit, offset),
	}, nil
}

// GetPost returns a single post decorated relative to the requesting user.
func (s *PostService) GetPost(ctx context.Context, postID uint, userID uuid.UUID) (*PostView, error) {
	return s.getPostView(ctx, postID, userID)
}

// UpdatePost applies a partial patch. Author-only.
func (s *PostService) UpdatePost(ctx context.Context, in UpdatePostInput) (*PostView, error) {
	post, err := s.loadPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}

	if post.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own posts")
	}

	if in.Content != nil {
		if strings.TrimSpace(*in.Content) == "" {
			return nil, models.NewValidationError("Content is required")
		}
		if len(*in.Content) > maxPostContentLen {
			return nil, models.NewValidationError("Content too long (max 50000 characters)")
		}
		post.Content = *in.Content
	}
	if in.MediaURL != nil {
		post.MediaURL = *in.MediaURL
	}
	if in.MediaType != nil {
		post.MediaType = *in.MediaType
	}

	if err := s.postRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.getPostView(ctx, post.ID, in.UserID)
}

// DeletePost removes a post. Author-only; comments and likes cascade.
func (s *PostService) DeletePost(ctx context.Context, postID uint, userID uuid.UUID) error {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return err
	}

	if post.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "post deleted",
		slog.Uint64("post_id", uint64(postID)),
	)
	return nil
}

func (s *PostService) loadPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	return post, nil
}

func (s *PostService) getPostView(ctx context.Context, postID uint, userID uuid.UUID) (*PostView, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	view := newPostView(post, userID)
	return &view, nil
}

func newPostView(post *models.Post, userID uuid.UUID) PostView {
	return PostView{
		Post:              *post,
		AuthorDisplayName: displayLabel(post.Author),
		IsAuthor:          userID != uuid.Nil && post.AuthorID == userID,
	}
}
