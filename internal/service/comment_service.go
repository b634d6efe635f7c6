package service

import (
	"context"
	"errors"
	"strings"

	"commons/internal/authz"
	"commons/internal/models"
	"commons/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentService implements comment CRUD. Membership is checked against the
// parent post's community; update and delete are author-only.
type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	kernel      *authz.Kernel
}

// CreateCommentInput is the input for creating a comment.
type CreateCommentInput struct {
	UserID  uuid.UUID
	PostID  uint
	Content string
}

// ListCommentsInput is the input for listing a post's comments.
type ListCommentsInput struct {
	PostID uint
	UserID uuid.UUID
	Limit  int
	Offset int
}

// UpdateCommentInput is the input for editing a comment.
type UpdateCommentInput struct {
	UserID    uuid.UUID
	CommentID uint
	Content   string
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	kernel *authz.Kernel,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		kernel:      kernel,
	}
}

const maxCommentLen = 10000

// CreateComment creates a comment on the post on behalf of UserID.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (*CommentView, error) {
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	post, err := s.loadPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if _, err := s.kernel.Authorize(ctx, in.UserID, post.CommunityID, authz.LevelMember); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		AuthorID: in.UserID,
		Content:  in.Content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	return s.getCommentView(ctx, comment.ID, in.UserID)
}

// ListPostComments returns a page of comments, newest first, decorated with
// author display data. Authenticated callers must be members of the post's
// community; anonymous listing passes through.
func (s *CommentService) ListPostComments(ctx context.Context, in ListCommentsInput) (*CommentPage, error) {
	post, err := s.loadPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	if in.UserID != uuid.Nil {
		if _, err := s.kernel.Authorize(ctx, in.UserID, post.CommunityID, authz.LevelMember); err != nil {
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

	total, err := s.commentRepo.CountByPost(ctx, in.PostID)
	if err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPost(ctx, in.PostID, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]CommentView, 0, len(comments))
	for _, c := range comments {
		views = append(views, newCommentView(c, in.UserID))
	}

	return &CommentPage{
		Comments: views,
		PageMeta: newPageMeta(total, limit, offset),
	}, nil
}

// GetComment returns a single comment decorated relative to the requesting user.
func (s *CommentService) GetComment(ctx context.Context, commentID uint, userID uuid.UUID) (*CommentView, error) {
	return s.getCommentView(ctx, commentID, userID)
}

// UpdateComment replaces a comment's content. Author-only.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*CommentView, error) {
	comment, err := s.loadComment(ctx, in.CommentID)
	if err != nil {
		return nil, err
	}

	if comment.AuthorID != in.UserID {
		return nil, models.NewForbiddenError("You can only edit your own comments")
	}
	if strings.TrimSpace(in.Content) == "" {
		return nil, models.NewValidationError("Content is required")
	}
	if len(in.Content) > maxCommentLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	comment.Content = in.Content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, err
	}

	return s.getCommentView(ctx, comment.ID, in.UserID)
}

// DeleteComment removes a comment. Author-only.
func (s *CommentService) DeleteComment(ctx context.Context, commentID uint, userID uuid.UUID) error {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return err
	}

	if comment.AuthorID != userID {
		return models.NewForbiddenError("You can only delete your own comments")
	}

	return s.commentRepo.Delete(ctx, commentID)
}

func (s *CommentService) loadPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	return post, nil
}

func (s *CommentService) loadComment(ctx context.Context, commentID uint) (*models.Comment, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Comment", commentID)
		}
		return nil, err
	}
	return comment, nil
}

func (s *CommentService) getCommentView(ctx context.Context, commentID uint, userID uuid.UUID) (*CommentView, error) {
	comment, err := s.loadComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	view := newCommentView(comment, userID)
	return &view, nil
}

func newCommentView(comment *models.Comment, userID uuid.UUID) CommentView {
	return CommentView{
		Comment:           *comment,
		AuthorDisplayName: displayLabel(comment.Author),
		IsAuthor:          userID != uuid.Nil && comment.AuthorID == userID,
	}
}
