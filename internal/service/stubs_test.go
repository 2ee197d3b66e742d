package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"aurachat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// postRepoStub is a stub for repository.PostRepository.
type postRepoStub struct {
	createFn     func(context.Context, *models.Post) error
	getByIDFn    func(context.Context, uint, uint) (*models.Post, error)
	listFn       func(context.Context, int, int, uint) ([]*models.Post, int64, error)
	listByUserFn func(context.Context, uint, int, int, uint) ([]*models.Post, int64, error)
	feedFn       func(context.Context, uint, int, int) ([]*models.Post, int64, error)
	updateFn     func(context.Context, *models.Post) error
	deleteFn     func(context.Context, uint) error
	likeFn       func(context.Context, uint, uint) (bool, error)
	unlikeFn     func(context.Context, uint, uint) (bool, error)
	isLikedFn    func(context.Context, uint, uint) (bool, error)
	countLikesFn func(context.Context, uint) (int64, error)
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, limit, offset int, viewerID uint) ([]*models.Post, int64, error) {
	return s.listFn(ctx, limit, offset, viewerID)
}
func (s *postRepoStub) ListByUser(ctx context.Context, userID uint, limit, offset int, viewerID uint) ([]*models.Post, int64, error) {
	return s.listByUserFn(ctx, userID, limit, offset, viewerID)
}
func (s *postRepoStub) Feed(ctx context.Context, userID uint, limit, offset int) ([]*models.Post, int64, error) {
	return s.feedFn(ctx, userID, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) Like(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likeFn(ctx, userID, postID)
}
func (s *postRepoStub) Unlike(ctx context.Context, userID, postID uint) (bool, error) {
	return s.unlikeFn(ctx, userID, postID)
}
func (s *postRepoStub) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isLikedFn(ctx, userID, postID)
}
func (s *postRepoStub) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return s.countLikesFn(ctx, postID)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:     func(_ context.Context, _ *models.Post) error { return nil },
		getByIDFn:    func(_ context.Context, id, _ uint) (*models.Post, error) { return &models.Post{ID: id}, nil },
		listFn:       func(_ context.Context, _, _ int, _ uint) ([]*models.Post, int64, error) { return nil, 0, nil },
		listByUserFn: func(_ context.Context, _ uint, _, _ int, _ uint) ([]*models.Post, int64, error) { return nil, 0, nil },
		feedFn:       func(_ context.Context, _ uint, _, _ int) ([]*models.Post, int64, error) { return nil, 0, nil },
		updateFn:     func(_ context.Context, _ *models.Post) error { return nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
		likeFn:       func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		unlikeFn:     func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
		isLikedFn:    func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		countLikesFn: func(_ context.Context, _ uint) (int64, error) { return 0, nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	createFn     func(context.Context, *models.Comment) error
	getByIDFn    func(context.Context, uint) (*models.Comment, error)
	listByPostFn func(context.Context, uint) ([]*models.Comment, error)
	deleteFn     func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn:     func(_ context.Context, _ *models.Comment) error { return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Comment, error) { return &models.Comment{ID: id}, nil },
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return []*models.Comment{}, nil },
		deleteFn:     func(_ context.Context, _ uint) error { return nil },
	}
}

type sentNotification struct {
	UserID  uint
	Type    string
	Payload map[string]any
}

// recordingNotifier captures notifications instead of publishing them.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (n *recordingNotifier) NotifyUser(_ context.Context, userID uint, eventType string, payload map[string]any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{UserID: userID, Type: eventType, Payload: payload})
	return nil
}

func (n *recordingNotifier) all() []sentNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentNotification(nil), n.sent...)
}

func assertAppCode(t *testing.T, err error, code string) *models.AppError {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppCode(t, err, models.CodeValidation)
}

func assertForbiddenError(t *testing.T, err error) {
	t.Helper()
	assertAppCode(t, err, models.CodeForbidden)
}
