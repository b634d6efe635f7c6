// Package authz implements the authorization kernel: the single decision
// function every community-scoped read and write goes through. Ownership is
// derived from Community.CreatedByUserID, never from a membership row, and
// the ownership check always precedes the membership-role check. A missing
// community is a NotFound failure, distinct from a denial.
package authz

import (
	"context"
	"errors"

	"commons/internal/models"
	"commons/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Level is the access level an operation requires.
type Level int

const (
	// LevelMember requires the user to be the owner or hold any membership.
	LevelMember Level = iota
	// LevelOwnerOrAdmin requires the owner or a membership with the admin role.
	LevelOwnerOrAdmin
	// LevelOwnerOnly requires the user to be the community creator exactly.
	LevelOwnerOnly
)

// ActorKind tags the Actor variant.
type ActorKind int

const (
	// ActorNonMember is a user with no standing in the community.
	ActorNonMember ActorKind = iota
	// ActorMember holds an explicit membership row.
	ActorMember
	// ActorOwner is the community creator.
	ActorOwner
)

// Actor is a user's resolved standing in one community. It replaces the
// scattered "is owner? else load membership" string comparisons with a
// tagged variant.
type Actor struct {
	Kind ActorKind
	// Role is set only for ActorMember.
	Role models.MembershipRole
}

// Allows reports whether the actor satisfies the required level.
func (a Actor) Allows(level Level) bool {
	switch a.Kind {
	case ActorOwner:
		return true
	case ActorMember:
		switch level {
		case LevelMember:
			return true
		case LevelOwnerOrAdmin:
			return a.Role == models.MembershipRoleAdmin
		default:
			return false
		}
	default:
		return false
	}
}

// Kernel decides ALLOW/DENY for community-scoped actions. It is read-only:
// every call re-reads current ownership and membership state, so decisions
// are never served from a stale cache.
type Kernel struct {
	communities repository.CommunityRepository
	memberships repository.MembershipRepository
}

// NewKernel returns a Kernel backed by the given repositories.
func NewKernel(communities repository.CommunityRepository, memberships repository.MembershipRepository) *Kernel {
	return &Kernel{communities: communities, memberships: memberships}
}

// ResolveActor loads the community and classifies the user's standing in it.
// Resolution order is fixed: community load, then ownership, then membership.
func (k *Kernel) ResolveActor(ctx context.Context, userID uuid.UUID, communityID uint) (*models.Community, Actor, error) {
	community, err := k.communities.GetByID(ctx, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, Actor{}, models.NewNotFoundError("Community", communityID)
		}
		return nil, Actor{}, err
	}

	if userID != uuid.Nil && community.IsOwnedBy(userID) {
		return community, Actor{Kind: ActorOwner}, nil
	}

	if userID == uuid.Nil {
		return community, Actor{Kind: ActorNonMember}, nil
	}

	membership, err := k.memberships.Get(ctx, userID, communityID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return community, Actor{Kind: ActorNonMember}, nil
		}
		return nil, Actor{}, err
	}

	return community, Actor{Kind: ActorMember, Role: membership.Role}, nil
}

// Authorize decides whether userID may perform an action requiring level in
// the community. On allow it returns the loaded community so callers do not
// re-read it; on deny it returns a Forbidden error with the reason.
func (k *Kernel) Authorize(ctx context.Context, userID uuid.UUID, communityID uint, level Level) (*models.Community, error) {
	community, actor, err := k.ResolveActor(ctx, userID, communityID)
	if err != nil {
		return nil, err
	}

	if actor.Allows(level) {
		return community, nil
	}

	switch level {
	case LevelOwnerOrAdmin:
		if actor.Kind == ActorMember {
			return nil, models.NewForbiddenError("You must be an owner or admin to perform this action")
		}
		return nil, models.NewForbiddenError("You must be a member of this community")
	case LevelOwnerOnly:
		return nil, models.NewForbiddenError("Only the community owner can perform this action")
	default:
		return nil, models.NewForbiddenError("You must be a member of this community")
	}
}
