// Package repository implements the data access layer for users and blogs.
package repository

import (
	"context"
	"errors"

	"bloglist/internal/models"
	"bloglist/internal/observability"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByIDWithBlogs(ctx context.Context, id uint) (*models.User, error)
	// GetByUsername returns (nil, nil) when no user has that username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	ListWithBlogs(ctx context.Context) ([]*models.User, error)
	Count(ctx context.Context) (int64, error)
	AppendOwnedBlog(ctx context.Context, userID, blogID uint) error
	ReleaseOwnedBlog(ctx context.Context, userID uint) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	defer observability.TrackQuery("insert", "users")()
	if err := conn(ctx, r.db).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return models.NewConflictError("username must be unique")
		}
		return models.NewInternalError(err)
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()
	var user models.User
	if err := conn(ctx, r.db).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByIDWithBlogs(ctx context.Context, id uint) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()
	var user models.User
	if err := conn(ctx, r.db).Preload("Blogs", orderByID).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	defer observability.TrackQuery("select", "users")()
	var user models.User
	if err := conn(ctx, r.db).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) ListWithBlogs(ctx context.Context) ([]*models.User, error) {
	defer observability.TrackQuery("select", "users")()
	var users []*models.User
	if err := conn(ctx, r.db).Preload("Blogs", orderByID).Order("id").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := conn(ctx, r.db).Model(&models.User{}).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// AppendOwnedBlog records blogID as owned by userID with a single server-side increment,
// so concurrent creations never lose an update. It fails with NotFound when the user is
// gone or the blog does not reference it.
func (r *userRepository) AppendOwnedBlog(ctx context.Context, userID, blogID uint) error {
	defer observability.TrackQuery("update", "users")()
	res := conn(ctx, r.db).Model(&models.User{}).
		Where("id = ? AND EXISTS (SELECT 1 FROM blogs WHERE blogs.id = ? AND blogs.user_id = users.id)", userID, blogID).
		UpdateColumn("blog_count", gorm.Expr("blog_count + ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}

// ReleaseOwnedBlog is the inverse of AppendOwnedBlog, applied when a blog is deleted.
func (r *userRepository) ReleaseOwnedBlog(ctx context.Context, userID uint) error {
	defer observability.TrackQuery("update", "users")()
	res := conn(ctx, r.db).Model(&models.User{}).
		Where("id = ? AND blog_count > 0", userID).
		UpdateColumn("blog_count", gorm.Expr("blog_count - ?", 1))
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	return nil
}

func orderByID(db *gorm.DB) *gorm.DB {
	return db.Order("id")
}
