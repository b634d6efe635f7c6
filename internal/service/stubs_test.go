package service

import (
	"context"
	"errors"
	"testing"

	"commons/internal/authz"
	"commons/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// communityRepoStub is a stub for repository.CommunityRepository.
type communityRepoStub struct {
	createFn        func(context.Context, *models.Community) error
	getByIDFn       func(context.Context, uint) (*models.Community, error)
	getByNameFn     func(context.Context, string) (*models.Community, error)
	listFn          func(context.Context, int, int) ([]*models.Community, error)
	listByCreatorFn func(context.Context, uuid.UUID) ([]*models.Community, error)
	updateFn        func(context.Context, *models.Community) error
	deleteFn        func(context.Context, uint) error
}

func (s *communityRepoStub) Create(ctx context.Context, community *models.Community) error {
	return s.createFn(ctx, community)
}
func (s *communityRepoStub) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	return s.getByIDFn(ctx, id)
}
func (s *communityRepoStub) GetByName(ctx context.Context, name string) (*models.Community, error) {
	return s.getByNameFn(ctx, name)
}
func (s *communityRepoStub) List(ctx context.Context, limit, offset int) ([]*models.Community, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *communityRepoStub) ListByCreator(ctx context.Context, userID uuid.UUID) ([]*models.Community, error) {
	return s.listByCreatorFn(ctx, userID)
}
func (s *communityRepoStub) Update(ctx context.Context, community *models.Community) error {
	return s.updateFn(ctx, community)
}
func (s *communityRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommunityRepo() *communityRepoStub {
	return &communityRepoStub{
		createFn:        func(_ context.Context, _ *models.Community) error { return nil },
		getByIDFn:       func(_ context.Context, _ uint) (*models.Community, error) { return &models.Community{}, nil },
		getByNameFn:     func(_ context.Context, _ string) (*models.Community, error) { return nil, gorm.ErrRecordNotFound },
		listFn:          func(_ context.Context, _, _ int) ([]*models.Community, error) { return nil, nil },
		listByCreatorFn: func(_ context.Context, _ uuid.UUID) ([]*models.Community, error) { return nil, nil },
		updateFn:        func(_ context.Context, _ *models.Community) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
	}
}

// membershipRepoStub is a stub for repository.MembershipRepository.
type membershipRepoStub struct {
	createFn          func(context.Context, *models.Membership) error
	getFn             func(context.Context, uuid.UUID, uint) (*models.Membership, error)
	deleteFn          func(context.Context, uuid.UUID, uint) error
	updateFn          func(context.Context, *models.Membership) error
	listByCommunityFn func(context.Context, uint) ([]*models.Membership, error)
	listByUserFn      func(context.Context, uuid.UUID) ([]*models.Membership, error)
	countFn           func(context.Context, uint) (int64, error)
}

func (s *membershipRepoStub) Create(ctx context.Context, membership *models.Membership) error {
	return s.createFn(ctx, membership)
}
func (s *membershipRepoStub) Get(ctx context.Context, userID uuid.UUID, communityID uint) (*models.Membership, error) {
	return s.getFn(ctx, userID, communityID)
}
func (s *membershipRepoStub) Delete(ctx context.Context, userID uuid.UUID, communityID uint) error {
	return s.deleteFn(ctx, userID, communityID)
}
func (s *membershipRepoStub) Update(ctx context.Context, membership *models.Membership) error {
	return s.updateFn(ctx, membership)
}
func (s *membershipRepoStub) ListByCommunity(ctx context.Context, communityID uint) ([]*models.Membership, error) {
	return s.listByCommunityFn(ctx, communityID)
}
func (s *membershipRepoStub) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Membership, error) {
	return s.listByUserFn(ctx, userID)
}
func (s *membershipRepoStub) CountByCommunity(ctx context.Context, communityID uint) (int64, error) {
	return s.countFn(ctx, communityID)
}

func noopMembershipRepo() *membershipRepoStub {
	return &membershipRepoStub{
		createFn: func(_ context.Context, _ *models.Membership) error { return nil },
		getFn: func(_ context.Context, _ uuid.UUID, _ uint) (*models.Membership, error) {
			return nil, gorm.ErrRecordNotFound
		},
		deleteFn:          func(_ context.Context, _ uuid.UUID, _ uint) error { return nil },
		updateFn:          func(_ context.Context, _ *models.Membership) error { return nil },
		listByCommunityFn: func(_ context.Context, _ uint) ([]*models.Membership, error) { return nil, nil },
		listByUserFn:      func(_ context.Context, _ uuid.UUID) ([]*models.Membership, error) { return nil, nil },
		countFn:           func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	getByIDFn func(context.Context, uuid.UUID) (*models.User, error)
	upsertFn  func(context.Context, *models.User) error
	updateFn  func(context.Context, *models.User) error
}

func (s *userRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) Upsert(ctx context.Context, user *models.User) error {
	return s.upsertFn(ctx, user)
}
func (s *userRepoStub) Update(ctx context.Context, user *models.User) error {
	return s.updateFn(ctx, user)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uuid.UUID) (*models.User, error) {
			return &models.User{ID: id, Email: "user@example.com"}, nil
		},
		upsertFn: func(_ context.Context, _ *models.User) error { return nil },
		updateFn: func(_ context.Context, _ *models.User) error { return nil },
	}
}

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn          func(context.Context, *models.Post) error
	getByIDFn         func(context.Context, uint) (*models.Post, error)
	listByCommunityFn func(context.Context, uint, int, int) ([]*models.Post, error)
	countFn           func(context.Context, uint) (int64, error)
	updateFn          func(context.Context, *models.Post) error
	deleteFn          func(context.Context, uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id)
}
func (s *postRepoStub) ListByCommunity(ctx context.Context, communityID uint, limit, offset int) ([]*models.Post, error) {
	return s.listByCommunityFn(ctx, communityID, limit, offset)
}
func (s *postRepoStub) CountByCommunity(ctx context.Context, communityID uint) (int64, error) {
	return s.countFn(ctx, communityID)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:          func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:         func(_ context.Context, _ uint) (*models.Post, error) { return &models.Post{}, nil },
		listByCommunityFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Post, error) { return nil, nil },
		countFn:           func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		updateFn:          func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:          func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint, int, int) ([]*models.Comment, error)
	countFn      func(context.Context, uint) (int64, error)
	updateFn     func(context.Context, *models.Comment) error
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID, limit, offset)
}
func (s *commentRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countFn(ctx, postID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, _ uint) (*models.Comment, error) { return &models.Comment{}, nil },
		listByPostFn: func(_ context.Context, _ uint, _, _ int) ([]*models.Comment, error) { return nil, nil },
		countFn:      func(_ context.Context, _ uint) (int64, error) { return 0, nil },
		updateFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

// likeRepoStub is a stub for repository.LikeRepository.
type likeRepoStub struct {
	insertFn func(context.Context, *models.Like) (bool, error)
	deleteFn func(context.Context, uint, uuid.UUID) error
	existsFn func(context.Context, uint, uuid.UUID) (bool, error)
	countFn  func(context.Context, uint) (int64, error)
}

func (s *likeRepoStub) Insert(ctx context.Context, like *models.Like) (bool, error) {
	return s.insertFn(ctx, like)
}
func (s *likeRepoStub) Delete(ctx context.Context, postID uint, userID uuid.UUID) error {
	return s.deleteFn(ctx, postID, userID)
}
func (s *likeRepoStub) Exists(ctx context.Context, postID uint, userID uuid.UUID) (bool, error) {
	return s.existsFn(ctx, postID, userID)
}
func (s *likeRepoStub) CountByPost(ctx context.Context, postID uint) (int64, error) {
	return s.countFn(ctx, postID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		insertFn: func(_ context.Context, _ *models.Like) (bool, error) { return true, nil },
		deleteFn: func(_ context.Context, _ uint, _ uuid.UUID) error { return nil },
		existsFn: func(_ context.Context, _ uint, _ uuid.UUID) (bool, error) { return false, nil },
		countFn:  func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// chatRepoStub is a stub for repository.ChatRepository.
type chatRepoStub struct {
	createRoomFn     func(context.Context, *models.ChatRoom) error
	getRoomByIDFn    func(context.Context, uint) (*models.ChatRoom, error)
	getRoomByTitleFn func(context.Context, uint, string) (*models.ChatRoom, error)
	listRoomsFn      func(context.Context, uint) ([]*models.ChatRoom, error)
	createMessageFn  func(context.Context, *models.Message) error
	getMessageFn     func(context.Context, uint) (*models.Message, error)
	listMessagesFn   func(context.Context, uint, int, int) ([]*models.Message, error)
	countMessagesFn  func(context.Context, uint) (int64, error)
}

func (s *chatRepoStub) CreateRoom(ctx context.Context, room *models.ChatRoom) error {
	return s.createRoomFn(ctx, room)
}
func (s *chatRepoStub) GetRoomByID(ctx context.Context, id uint) (*models.ChatRoom, error) {
	return s.getRoomByIDFn(ctx, id)
}
func (s *chatRepoStub) GetRoomByTitle(ctx context.Context, communityID uint, title string) (*models.ChatRoom, error) {
	return s.getRoomByTitleFn(ctx, communityID, title)
}
func (s *chatRepoStub) ListRoomsByCommunity(ctx context.Context, communityID uint) ([]*models.ChatRoom, error) {
	return s.listRoomsFn(ctx, communityID)
}
func (s *chatRepoStub) CreateMessage(ctx context.Context, message *models.Message) error {
	return s.createMessageFn(ctx, message)
}
func (s *chatRepoStub) GetMessageByID(ctx context.Context, id uint) (*models.Message, error) {
	return s.getMessageFn(ctx, id)
}
func (s *chatRepoStub) ListMessagesByChat(ctx context.Context, chatID uint, limit, offset int) ([]*models.Message, error) {
	return s.listMessagesFn(ctx, chatID, limit, offset)
}
func (s *chatRepoStub) CountMessagesByChat(ctx context.Context, chatID uint) (int64, error) {
	return s.countMessagesFn(ctx, chatID)
}

func noopChatRepo() *chatRepoStub {
	return &chatRepoStub{
		createRoomFn:  func(_ context.Context, _ *models.ChatRoom) error { return nil },
		getRoomByIDFn: func(_ context.Context, _ uint) (*models.ChatRoom, error) { return &models.ChatRoom{}, nil },
		getRoomByTitleFn: func(_ context.Context, _ uint, _ string) (*models.ChatRoom, error) {
			return nil, gorm.ErrRecordNotFound
		},
		listRoomsFn:     func(_ context.Context, _ uint) ([]*models.ChatRoom, error) { return nil, nil },
		createMessageFn: func(_ context.Context, _ *models.Message) error { return nil },
		getMessageFn:    func(_ context.Context, _ uint) (*models.Message, error) { return &models.Message{}, nil },
		listMessagesFn:  func(_ context.Context, _ uint, _, _ int) ([]*models.Message, error) { return nil, nil },
		countMessagesFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// kernelFor builds an authz.Kernel over a single community and a fixed set
// of membership rows keyed by user ID.
func kernelFor(community *models.Community, memberships map[uuid.UUID]*models.Membership) *authz.Kernel {
	communityRepo := noopCommunityRepo()
	communityRepo.getByIDFn = func(_ context.Context, id uint) (*models.Community, error) {
		if community != nil && community.ID == id {
			return community, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	membershipRepo := noopMembershipRepo()
	membershipRepo.getFn = func(_ context.Context, userID uuid.UUID, communityID uint) (*models.Membership, error) {
		if m, ok := memberships[userID]; ok && m.CommunityID == communityID {
			return m, nil
		}
		return nil, gorm.ErrRecordNotFound
	}
	return authz.NewKernel(communityRepo, membershipRepo)
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

// assertValidationError asserts that err is an AppError with code VALIDATION_ERROR.
func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeValidation)
}

// assertForbiddenError asserts that err is an AppError with code FORBIDDEN.
func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeForbidden)
}

// assertConflictError asserts that err is an AppError with code CONFLICT.
func assertConflictError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeConflict)
}

// assertNotFoundError asserts that err is an AppError with code NOT_FOUND.
func assertNotFoundError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, models.CodeNotFound)
}
