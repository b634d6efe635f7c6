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

// MembershipService implements the membership lifecycle. Owners never hold a
// membership row: joining as the owner is rejected, leaving as the owner is
// rejected, and the owner's "role" is synthesized in listings.
type MembershipService struct {
	membershipRepo repository.MembershipRepository
	communityRepo  repository.CommunityRepository
	userRepo       repository.UserRepository
	kernel         *authz.Kernel
	cache          *cache.Cache
}

// UpdateMemberRoleInput is the input for changing a member's role.
type UpdateMemberRoleInput struct {
	RequestingUserID uuid.UUID
	CommunityID      uint
	TargetUserID     uuid.UUID
	Role             models.MembershipRole
}

// NewMembershipService returns a new MembershipService.
func NewMembershipService(
	membershipRepo repository.MembershipRepository,
	communityRepo repository.CommunityRepository,
	userRepo repository.UserRepository,
	kernel *authz.Kernel,
	c *cache.Cache,
) *MembershipService {
	return &MembershipService{
		membershipRepo: membershipRepo,
		communityRepo:  communityRepo,
		userRepo:       userRepo,
		kernel:         kernel,
		cache:          c,
	}
}

// JoinCommunity creates a membership with the default member role.
func (s *MembershipService) JoinCommunity(ctx context.Context, communityID uint, userID uuid.UUID) (*models.Membership, error) {
	community, actor, err := s.kernel.ResolveActor(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}

	switch actor.Kind {
	case authz.ActorOwner:
		return nil, models.NewConflictError("You are the owner of this community")
	case authz.ActorMember:
		return nil, models.NewConflictError("You are already a member of this community")
	}

	membership := &models.Membership{
		UserID:      userID,
		CommunityID: community.ID,
		Role:        models.MembershipRoleMember,
	}
	if err := s.membershipRepo.Create(ctx, membership); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a join race; the membership exists either way.
			return nil, models.NewConflictError("You are already a member of this community")
		}
		return nil, err
	}
	s.cache.InvalidateMemberCount(ctx, communityID)

	middleware.Logger.InfoContext(ctx, "user joined community",
		slog.String("user_id", userID.String()),
		slog.Uint64("community_id", uint64(communityID)),
	)
	return membership, nil
}

// LeaveCommunity deletes the user's membership row. Owners cannot leave.
func (s *MembershipService) LeaveCommunity(ctx context.Context, communityID uint, userID uuid.UUID) error {
	_, actor, err := s.kernel.ResolveActor(ctx, userID, communityID)
	if err != nil {
		return err
	}

	switch actor.Kind {
	case authz.ActorOwner:
		return models.NewForbiddenError("Community owners cannot leave their own community")
	case authz.ActorNonMember:
		return models.NewForbiddenError("You are not a member of this community")
	}

	if err := s.membershipRepo.Delete(ctx, userID, communityID); err != nil {
		return err
	}
	s.cache.InvalidateMemberCount(ctx, communityID)

	middleware.Logger.InfoContext(ctx, "user left community",
		slog.String("user_id", userID.String()),
		slog.Uint64("community_id", uint64(communityID)),
	)
	return nil
}

// GetMembershipStatus reports the requesting user's standing in a community.
func (s *MembershipService) GetMembershipStatus(ctx context.Context, communityID uint, userID uuid.UUID) (*MembershipStatus, error) {
	_, actor, err := s.kernel.ResolveActor(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}

	status := &MembershipStatus{}
	switch actor.Kind {
	case authz.ActorOwner:
		status.IsMember = true
		status.IsOwner = true
		status.Role = models.MembershipRoleOwner
	case authz.ActorMember:
		status.IsMember = true
		status.Role = actor.Role
	}
	return status, nil
}

// ListMembers returns all members of the community joined with user display
// data. Requires member standing. The owner is always present: synthesized
// at the head of the list with membership_id 0 when they hold no explicit
// row, or flagged on their real row otherwise.
func (s *MembershipService) ListMembers(ctx context.Context, communityID uint, requestingUserID uuid.UUID) ([]MemberView, error) {
	community, err := s.kernel.Authorize(ctx, requestingUserID, communityID, authz.LevelMember)
	if err != nil {
		return nil, err
	}

	memberships, err := s.membershipRepo.ListByCommunity(ctx, communityID)
	if err != nil {
		return nil, err
	}

	members := make([]MemberView, 0, len(memberships)+1)
	ownerHasRow := false
	for _, m := range memberships {
		view := MemberView{
			MembershipID:    m.ID,
			UserID:          m.UserID,
			CommunityID:     communityID,
			Role:            m.Role,
			JoinedAt:        m.JoinedAt,
			UserDisplayName: displayLabel(m.User),
		}
		if community.IsOwnedBy(m.UserID) {
			view.IsOwner = true
			ownerHasRow = true
		}
		members = append(members, view)
	}

	if community.CreatedByUserID != nil && !ownerHasRow {
		owner, err := s.userRepo.GetByID(ctx, *community.CreatedByUserID)
		if err == nil {
			synthetic := MemberView{
				MembershipID:    0,
				UserID:          owner.ID,
				CommunityID:     communityID,
				Role:            models.MembershipRoleOwner,
				JoinedAt:        community.CreatedAt,
				UserDisplayName: owner.DisplayLabel(),
				IsOwner:         true,
			}
			members = append([]MemberView{synthetic}, members...)
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	return members, nil
}

// ListUserCommunities returns every community the user belongs to, annotated
// with role and join time. Communities the user owns are included with the
// synthesized owner role even when they hold no membership row.
func (s *MembershipService) ListUserCommunities(ctx context.Context, userID uuid.UUID) ([]UserCommunityView, error) {
	memberships, err := s.membershipRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]UserCommunityView, 0, len(memberships))
	seen := make(map[uint]bool, len(memberships))
	for _, m := range memberships {
		if m.Community == nil {
			continue
		}
		role := m.Role
		if m.Community.IsOwnedBy(userID) {
			role = models.MembershipRoleOwner
		}
		views = append(views, UserCommunityView{
			Community: *m.Community,
			Role:      role,
			JoinedAt:  m.JoinedAt,
		})
		seen[m.CommunityID] = true
	}

	owned, err := s.communityRepo.ListByCreator(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range owned {
		if seen[c.ID] {
			continue
		}
		views = append(views, UserCommunityView{
			Community: *c,
			Role:      models.MembershipRoleOwner,
			JoinedAt:  c.CreatedAt,
		})
	}

	return views, nil
}

// UpdateMemberRole changes a member's role. Requires the requester to be the
// owner or an admin member. The owner's standing is immutable: it is not a
// membership row and cannot be assigned or revoked here.
func (s *MembershipService) UpdateMemberRole(ctx context.Context, in UpdateMemberRoleInput) (*models.Membership, error) {
	if !in.Role.Valid() {
		return nil, models.NewValidationError("Role must be 'member' or 'admin'")
	}

	community, err := s.kernel.Authorize(ctx, in.RequestingUserID, in.CommunityID, authz.LevelOwnerOrAdmin)
	if err != nil {
		return nil, err
	}

	if community.IsOwnedBy(in.TargetUserID) {
		return nil, models.NewForbiddenError("Cannot change the role of the community owner")
	}

	membership, err := s.membershipRepo.Get(ctx, in.TargetUserID, in.CommunityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Membership", in.TargetUserID)
		}
		return nil, err
	}

	membership.Role = in.Role
	if err := s.membershipRepo.Update(ctx, membership); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "member role updated",
		slog.String("target_user_id", in.TargetUserID.String()),
		slog.Uint64("community_id", uint64(in.CommunityID)),
		slog.String("role", string(in.Role)),
	)
	return membership, nil
}
