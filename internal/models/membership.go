package models

import (
	"time"

	"github.com/google/uuid"
)

// MembershipRole defines a member's role within a community.
type MembershipRole string

const (
	// MembershipRoleMember is the default role granted on join.
	MembershipRoleMember MembershipRole = "member"
	// MembershipRoleAdmin can manage other members' roles.
	MembershipRoleAdmin MembershipRole = "admin"
	// MembershipRoleOwner never appears in a stored membership row. It is
	// used only for synthesized member listings; owner status is derived
	// from Community.CreatedByUserID.
	MembershipRoleOwner MembershipRole = "owner"
)

// Valid reports whether r is a role that may be stored on a membership row.
func (r MembershipRole) Valid() bool {
	return r == MembershipRoleMember || r == MembershipRoleAdmin
}

// Membership grants a non-owner user access to a community. At most one
// row exists per (user, community) pair.
type Membership struct {
	ID          uint           `gorm:"primaryKey" json:"membership_id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_user_community" json:"user_id"`
	User        *User          `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	CommunityID uint           `gorm:"not null;uniqueIndex:idx_memberships_user_community;index" json:"community_id"`
	Community   *Community     `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"community,omitempty"`
	Role        MembershipRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt    time.Time      `gorm:"autoCreateTime" json:"joined_at"`
}
