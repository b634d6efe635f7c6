package service

import (
	"context"
	"errors"
	"strings"

	"commons/internal/identity"
	"commons/internal/models"
	"commons/internal/repository"
	"commons/internal/validation"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService manages locally-stored user profiles. Accounts themselves are
// issued by the identity provider; this service only mirrors them and edits
// the in-system profile fields.
type UserService struct {
	userRepo repository.UserRepository
}

// UpdateProfileInput carries a partial profile update. Nil fields are left
// untouched.
type UpdateProfileInput struct {
	UserID      uuid.UUID
	Username    *string
	DisplayName *string
	Bio         *string
}

// NewUserService returns a new UserService.
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

const (
	maxDisplayNameLen = 100
	maxBioLen         = 500
)

// GetUserProfile returns the stored profile for a user.
func (s *UserService) GetUserProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", userID)
		}
		return nil, err
	}
	return user, nil
}

// UpdateUserProfile applies a partial update to the caller's own profile.
func (s *UserService) UpdateUserProfile(ctx context.Context, in UpdateProfileInput) (*models.User, error) {
	user, err := s.GetUserProfile(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	if in.Username != nil {
		username := strings.TrimSpace(*in.Username)
		// Empty clears the username; anything else must pass format rules.
		if username != "" {
			if err := validation.ValidateUsername(username); err != nil {
				return nil, models.NewValidationError(err.Error())
			}
		}
		user.Username = username
	}
	if in.DisplayName != nil {
		name := strings.TrimSpace(*in.DisplayName)
		if len(name) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 100 characters)")
		}
		user.DisplayName = name
	}
	if in.Bio != nil {
		if len(*in.Bio) > maxBioLen {
			return nil, models.NewValidationError("Bio too long (max 500 characters)")
		}
		user.Bio = *in.Bio
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, models.NewConflictError("Username is already taken")
		}
		return nil, err
	}
	return user, nil
}

// EnsureUser mirrors a resolved identity into the local user table. Called
// from the auth middleware on every authenticated request; existing rows only
// have their provider-owned email refreshed.
func (s *UserService) EnsureUser(ctx context.Context, ident *identity.Identity) error {
	user := &models.User{
		ID:          ident.ID,
		Email:       ident.Email,
		DisplayName: ident.DisplayName,
	}
	return s.userRepo.Upsert(ctx, user)
}
