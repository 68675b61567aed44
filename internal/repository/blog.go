package repository

import (
	"context"
	"errors"

	"bloglist/internal/models"
	"bloglist/internal/observability"

	"gorm.io/gorm"
)

// BlogRepository defines persistence operations for blogs and their comments.
type BlogRepository interface {
	Create(ctx context.Context, blog *models.Blog) error
	GetByID(ctx context.Context, id uint) (*models.Blog, error)
	List(ctx context.Context) ([]*models.Blog, error)
	OwnerOf(ctx context.Context, id uint) (uint, error)
	Update(ctx context.Context, id uint, fields models.BlogFields) error
	Delete(ctx context.Context, id uint) error
	AddComment(ctx context.Context, comment *models.Comment) error
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository returns a new BlogRepository implementation.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *models.Blog) error {
	defer observability.TrackQuery("insert", "blogs")()
	// Omit associations so the owner row is never upserted through the blog.
	if err := conn(ctx, r.db).Omit("User", "Comments").Create(blog).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) GetByID(ctx context.Context, id uint) (*models.Blog, error) {
	defer observability.TrackQuery("select", "blogs")()
	var blog models.Blog
	if err := r.withDetails(ctx).First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Blog", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &blog, nil
}

func (r *blogRepository) List(ctx context.Context) ([]*models.Blog, error) {
	defer observability.TrackQuery("select", "blogs")()
	var blogs []*models.Blog
	if err := r.withDetails(ctx).Order("id").Find(&blogs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return blogs, nil
}

// OwnerOf returns the owner of blog id. Inside a transaction the row stays locked until
// commit, so a concurrent delete cannot slip in between.
func (r *blogRepository) OwnerOf(ctx context.Context, id uint) (uint, error) {
	defer observability.TrackQuery("select", "blogs")()
	var blog models.Blog
	if err := lockingConn(ctx, r.db).Select("id", "user_id").First(&blog, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, models.NewNotFoundError("Blog", id)
		}
		return 0, models.NewInternalError(err)
	}
	return blog.UserID, nil
}

// Update writes the non-nil fields in one statement. The owner column is never touched.
func (r *blogRepository) Update(ctx context.Context, id uint, fields models.BlogFields) error {
	defer observability.TrackQuery("update", "blogs")()

	changes := map[string]interface{}{}
	if fields.Title != nil {
		changes["title"] = *fields.Title
	}
	if fields.Author != nil {
		changes["author"] = *fields.Author
	}
	if fields.URL != nil {
		changes["url"] = *fields.URL
	}
	if fields.Likes != nil {
		changes["likes"] = *fields.Likes
	}
	if len(changes) == 0 {
		_, err := r.OwnerOf(ctx, id)
		return err
	}

	res := conn(ctx, r.db).Model(&models.Blog{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blog", id)
	}
	return nil
}

// Delete removes the blog and its comments.
func (r *blogRepository) Delete(ctx context.Context, id uint) error {
	defer observability.TrackQuery("delete", "blogs")()
	db := conn(ctx, r.db)
	if err := db.Where("blog_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
		return models.NewInternalError(err)
	}
	res := db.Delete(&models.Blog{}, id)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Blog", id)
	}
	return nil
}

// AddComment appends one comment with a single INSERT.
func (r *blogRepository) AddComment(ctx context.Context, comment *models.Comment) error {
	defer observability.TrackQuery("insert", "comments")()
	if err := conn(ctx, r.db).Create(comment).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *blogRepository) withDetails(ctx context.Context) *gorm.DB {
	return conn(ctx, r.db).
		Preload("User").
		Preload("Comments", orderByID)
}
