package repository

import (
	"context"

	"commons/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MembershipRepository defines the interface for membership data operations
type MembershipRepository interface {
	Create(ctx context.Context, membership *models.Membership) error
	Get(ctx context.Context, userID uuid.UUID, communityID uint) (*models.Membership, error)
	Delete(ctx context.Context, userID uuid.UUID, communityID uint) error
	Update(ctx context.Context, membership *models.Membership) error
	ListByCommunity(ctx context.Context, communityID uint) ([]*models.Membership, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error)
	CountByCommunity(ctx context.Context, communityID uint) (int64, error)
}

type membershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new membership repository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &membershipRepository{db: db}
}

func (r *membershipRepository) Create(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *membershipRepository) Get(ctx context.Context, userID uuid.UUID, communityID uint) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

func (r *membershipRepository) Delete(ctx context.Context, userID uuid.UUID, communityID uint) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND community_id = ?", userID, communityID).
		Delete(&models.Membership{}).Error
}

func (r *membershipRepository) Update(ctx context.Context, membership *models.Membership) error {
	return r.db.WithContext(ctx).Save(membership).Error
}

func (r *membershipRepository) ListByCommunity(ctx context.Context, communityID uint) ([]*models.Membership, error) {
	var memberships []*models.Membership
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("community_id = ?", communityID).
		Order("joined_at ASC").
		Find(&memberships).Error
	return memberships, err
}

func (r *membershipRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error) {
	var memberships []*models.Membership
	err := r.db.WithContext(ctx).
		Preload("Community").
		Where("user_id = ?", userID).
		Order("joined_at ASC").
		Find(&memberships).Error
	return memberships, err
}

func (r *membershipRepository) CountByCommunity(ctx context.Context, communityID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	return count, err
}
