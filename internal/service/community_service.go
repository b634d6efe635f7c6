package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"commons/internal/authz"
	"commons/internal/cache"
	"commons/internal/middleware"
	"commons/internal/models"
	"commons/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityService implements the community lifecycle: create with default
// chat room provisioning, owner-only update/delete, and detail reads.
type CommunityService struct {
	communityRepo  repository.CommunityRepository
	membershipRepo repository.MembershipRepository
	kernel         *authz.Kernel
	cache          *cache.Cache
	// provisionDefaultRoom creates the "General" room for a new community.
	// Best-effort: failures are logged and never roll back creation.
	provisionDefaultRoom func(ctx context.Context, communityID uint) error
}

// CreateCommunityInput is the input for creating a community.
type CreateCommunityInput struct {
	OwnerID     uuid.UUID
	Name        string
	Description string
}

// UpdateCommunityInput carries a partial patch; nil fields are left
// unchanged.
type UpdateCommunityInput struct {
	UserID      uuid.UUID
	CommunityID uint
	Name        *string
	Description *string
}

// NewCommunityService returns a new CommunityService.
func NewCommunityService(
	communityRepo repository.CommunityRepository,
	membershipRepo repository.MembershipRepository,
	kernel *authz.Kernel,
	c *cache.Cache,
	provisionDefaultRoom func(ctx context.Context, communityID uint) error,
) *CommunityService {
	return &CommunityService{
		communityRepo:        communityRepo,
		membershipRepo:       membershipRepo,
		kernel:               kernel,
		cache:                c,
		provisionDefaultRoom: provisionDefaultRoom,
	}
}

const maxCommunityNameLen = 100

// CreateCommunity creates a community owned by OwnerID and provisions its
// default "General" chat room.
func (s *CommunityService) CreateCommunity(ctx context.Context, in CreateCommunityInput) (*models.Community, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Community name is required")
	}
	if len(name) > maxCommunityNameLen {
		return nil, models.NewValidationError("Community name too long (max 100 characters)")
	}

	ownerID := in.OwnerID
	community := &models.Community{
		Name:            name,
		Description:     strings.TrimSpace(in.Description),
		CreatedByUserID: &ownerID,
	}
	if err := s.communityRepo.Create(ctx, community); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("A community with this name already exists")
		}
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "community created",
		slog.Uint64("community_id", uint64(community.ID)),
		slog.String("owner_id", ownerID.String()),
	)

	if s.provisionDefaultRoom != nil {
		if err := s.provisionDefaultRoom(ctx, community.ID); err != nil {
			// Community creation is not rolled back when room provisioning
			// fails; the inconsistency is tolerated and surfaced in logs.
			middleware.Logger.WarnContext(ctx, "failed to create default chat room",
				slog.Uint64("community_id", uint64(community.ID)),
				slog.String("error", err.Error()),
			)
		}
	}

	return community, nil
}

// GetCommunity returns the bare community row.
func (s *CommunityService) GetCommunity(ctx context.Context, id uint) (*models.Community, error) {
	community, err := s.communityRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Community", id)
		}
		return nil, err
	}
	return community, nil
}

// ListCommunities returns a public page of communities. Anonymous access is
// allowed.
func (s *CommunityService) ListCommunities(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return s.communityRepo.List(ctx, limit, offset)
}

// GetCommunityDetails returns the community with member count and the
// requesting user's standing. userID may be uuid.Nil for anonymous reads, in
// which case is_member and is_owner are false.
func (s *CommunityService) GetCommunityDetails(ctx context.Context, id uint, userID uuid.UUID) (*CommunityDetail, error) {
	community, actor, err := s.kernel.ResolveActor(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	memberCount, err := s.memberCount(ctx, community)
	if err != nil {
		return nil, err
	}

	detail := &CommunityDetail{
		Community:   *community,
		MemberCount: memberCount,
		IsMember:    actor.Kind != authz.ActorNonMember,
		IsOwner:     actor.Kind == authz.ActorOwner,
	}
	return detail, nil
}

// memberCount counts membership rows plus one for an owner that holds no
// explicit row of their own.
func (s *CommunityService) memberCount(ctx context.Context, community *models.Community) (int64, error) {
	var count int64
	err := s.cache.Aside(ctx, cache.MemberCountKey(community.ID), &count, cache.MemberCountTTL, func() error {
		rows, err := s.membershipRepo.CountByCommunity(ctx, community.ID)
		if err != nil {
			return err
		}
		count = rows

		if community.CreatedByUserID != nil {
			_, err := s.membershipRepo.Get(ctx, *community.CreatedByUserID, community.ID)
			switch {
			case err == nil:
				// Owner holds an explicit row; already counted.
			case errors.Is(err, gorm.ErrRecordNotFound):
				count++
			default:
				return err
			}
		}
		return nil
	})
	return count, err
}

// UpdateCommunity applies a partial patch. Only the creator may edit, and
// admin membership does not satisfy the check.
func (s *CommunityService) UpdateCommunity(ctx context.Context, in UpdateCommunityInput) (*models.Community, error) {
	community, err := s.GetCommunity(ctx, in.CommunityID)
	if err != nil {
		return nil, err
	}

	if !community.IsOwnedBy(in.UserID) {
		return nil, models.NewForbiddenError("You can only edit communities you created")
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, models.NewValidationError("Community name cannot be empty")
		}
		if len(name) > maxCommunityNameLen {
			return nil, models.NewValidationError("Community name too long (max 100 characters)")
		}
		community.Name = name
	}
	if in.Description != nil {
		community.Description = strings.TrimSpace(*in.Description)
	}

	if err := s.communityRepo.Update(ctx, community); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("A community with this name already exists")
		}
		return nil, err
	}
	return community, nil
}

// DeleteCommunity removes the community and everything scoped to it.
func (s *CommunityService) DeleteCommunity(ctx context.Context, communityID uint, userID uuid.UUID) error {
	community, err := s.GetCommunity(ctx, communityID)
	if err != nil {
		return err
	}

	if !community.IsOwnedBy(userID) {
		return models.NewForbiddenError("You can only delete communities you created")
	}

	if err := s.communityRepo.Delete(ctx, communityID); err != nil {
		return err
	}
	s.cache.InvalidateMemberCount(ctx, communityID)

	middleware.Logger.InfoContext(ctx, "community deleted",
		slog.Uint64("community_id", uint64(communityID)),
	)
	return nil
}
