package service

import (
	"context"
	"errors"
	"log/slog"

	"commons/internal/authz"
	"commons/internal/cache"
	"commons/internal/middleware"
	"commons/internal/models"
	"commons/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LikeService implements the like toggle. The store's unique
// (post_id, user_id) index resolves toggle races: a duplicate insert is
// absorbed as "already liked" and the state re-derived, never an error.
type LikeService struct {
	likeRepo repository.LikeRepository
	postRepo repository.PostRepository
	kernel   *authz.Kernel
	cache    *cache.Cache
}

// NewLikeService returns a new LikeService.
func NewLikeService(
	likeRepo repository.LikeRepository,
	postRepo repository.PostRepository,
	kernel *authz.Kernel,
	c *cache.Cache,
) *LikeService {
	return &LikeService{
		likeRepo: likeRepo,
		postRepo: postRepo,
		kernel:   kernel,
		cache:    c,
	}
}

// ToggleLike flips the user's like on a post: removes it if present, creates
// it otherwise. Requires member standing in the post's community. Always
// returns the fresh like count.
func (s *LikeService) ToggleLike(ctx context.Context, postID uint, userID uuid.UUID) (*LikeStatus, error) {
	post, err := s.loadPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if _, err := s.kernel.Authorize(ctx, userID, post.CommunityID, authz.LevelMember); err != nil {
		return nil, err
	}

	liked, err := s.likeRepo.Exists(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	if liked {
		if err := s.likeRepo.Delete(ctx, postID, userID); err != nil {
			return nil, err
		}
		liked = false
	} else {
		created, err := s.likeRepo.Insert(ctx, &models.Like{PostID: postID, UserID: userID})
		if err != nil {
			return nil, err
		}
		if !created {
			// Lost a toggle race; the like exists, which is the state we
			// wanted anyway.
			middleware.Logger.DebugContext(ctx, "like insert raced, treating as already liked",
				slog.Uint64("post_id", uint64(postID)),
			)
		}
		liked = true
	}
	s.cache.InvalidateLikeCount(ctx, postID)

	count, err := s.likeCount(ctx, postID)
	if err != nil {
		return nil, err
	}

	return &LikeStatus{PostID: postID, IsLiked: liked, LikeCount: count}, nil
}

// GetLikeStatus returns the like count and whether userID liked the post.
// userID may be uuid.Nil, in which case is_liked is always false.
func (s *LikeService) GetLikeStatus(ctx context.Context, postID uint, userID uuid.UUID) (*LikeStatus, error) {
	if _, err := s.loadPost(ctx, postID); err != nil {
		return nil, err
	}

	count, err := s.likeCount(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked := false
	if userID != uuid.Nil {
		liked, err = s.likeRepo.Exists(ctx, postID, userID)
		if err != nil {
			return nil, err
		}
	}

	return &LikeStatus{PostID: postID, IsLiked: liked, LikeCount: count}, nil
}

func (s *LikeService) likeCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := s.cache.Aside(ctx, cache.LikeCountKey(postID), &count, cache.LikeCountTTL, func() error {
		fresh, err := s.likeRepo.CountByPost(ctx, postID)
		if err != nil {
			return err
		}
		count = fresh
		return nil
	})
	return count, err
}

func (s *LikeService) loadPost(ctx context.Context, postID uint) (*models.Post, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", postID)
		}
		return nil, err
	}
	return post, nil
}
