package service

import (
	"context"
	"errors"
	"testing"

	"bloglist/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blogRepoStub is a stub for repository.BlogRepository.
type blogRepoStub struct {
	createFn     func(context.Context, *models.Blog) error
	getByIDFn    func(context.Context, uint) (*models.Blog, error)
	listFn       func(context.Context) ([]*models.Blog, error)
	ownerOfFn    func(context.Context, uint) (uint, error)
	updateFn     func(context.Context, uint, models.BlogFields) error
	deleteFn     func(context.Context, uint) error
	addCommentFn func(context.Context, *models.Comment) error
}

func (s *blogRepoStub) Create(ctx context.Context, blog *models.Blog) error {
	return s.createFn(ctx, blog)
}
func (s *blogRepoStub) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	return s.getByIDFn(ctx, id)
}
func (s *blogRepoStub) List(ctx context.Context) ([]*models.Blog, error) {
	return s.listFn(ctx)
}
func (s *blogRepoStub) OwnerOf(ctx context.Context, id uint) (uint, error) {
	return s.ownerOfFn(ctx, id)
}
func (s *blogRepoStub) Update(ctx context.Context, id uint, fields models.BlogFields) error {
	return s.updateFn(ctx, id, fields)
}
func (s *blogRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *blogRepoStub) AddComment(ctx context.Context, comment *models.Comment) error {
	return s.addCommentFn(ctx, comment)
}

func noopBlogRepo() *blogRepoStub {
	return &blogRepoStub{
		createFn:     func(_ context.Context, b *models.Blog) error { b.ID = 1; return nil },
		getByIDFn:    func(_ context.Context, id uint) (*models.Blog, error) { return &models.Blog{ID: id}, nil },
		listFn:       func(context.Context) ([]*models.Blog, error) { return nil, nil },
		ownerOfFn:    func(context.Context, uint) (uint, error) { return 1, nil },
		updateFn:     func(context.Context, uint, models.BlogFields) error { return nil },
		deleteFn:     func(context.Context, uint) error { return nil },
		addCommentFn: func(context.Context, *models.Comment) error { return nil },
	}
}

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn           func(context.Context, *models.User) error
	getByIDFn          func(context.Context, uint) (*models.User, error)
	getByIDWithBlogsFn func(context.Context, uint) (*models.User, error)
	getByUsernameFn    func(context.Context, string) (*models.User, error)
	listWithBlogsFn    func(context.Context) ([]*models.User, error)
	countFn            func(context.Context) (int64, error)
	appendOwnedBlogFn  func(context.Context, uint, uint) error
	releaseOwnedBlogFn func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByIDWithBlogs(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDWithBlogsFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) ListWithBlogs(ctx context.Context) ([]*models.User, error) {
	return s.listWithBlogsFn(ctx)
}
func (s *userRepoStub) Count(ctx context.Context) (int64, error) {
	return s.countFn(ctx)
}
func (s *userRepoStub) AppendOwnedBlog(ctx context.Context, userID, blogID uint) error {
	return s.appendOwnedBlogFn(ctx, userID, blogID)
}
func (s *userRepoStub) ReleaseOwnedBlog(ctx context.Context, userID uint) error {
	return s.releaseOwnedBlogFn(ctx, userID)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:           func(_ context.Context, u *models.User) error { u.ID = 1; return nil },
		getByIDFn:          func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByIDWithBlogsFn: func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn:    func(context.Context, string) (*models.User, error) { return nil, nil },
		listWithBlogsFn:    func(context.Context) ([]*models.User, error) { return nil, nil },
		countFn:            func(context.Context) (int64, error) { return 0, nil },
		appendOwnedBlogFn:  func(context.Context, uint, uint) error { return nil },
		releaseOwnedBlogFn: func(context.Context, uint) error { return nil },
	}
}

// inlineTx runs fn without a database transaction.
type inlineTx struct{}

func (inlineTx) WithTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type inTxKey struct{}

// markingTx runs fn inline with a context marked as transactional.
type markingTx struct{ calls int }

func (m *markingTx) WithTx(ctx context.Context, fn func(context.Context) error) error {
	m.calls++
	return fn(context.WithValue(ctx, inTxKey{}, true))
}

func inTx(ctx context.Context) bool {
	v, _ := ctx.Value(inTxKey{}).(bool)
	return v
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}
