package service

import (
	"context"
	"log/slog"

	"bloglist/internal/cache"
	"bloglist/internal/listhelper"
	"bloglist/internal/middleware"
	"bloglist/internal/models"
	"bloglist/internal/notifications"
	"bloglist/internal/observability"
	"bloglist/internal/repository"
	"bloglist/internal/validation"
)

type BlogService struct {
	blogRepo repository.BlogRepository
	userRepo repository.UserRepository
	tx       repository.TxManager
	cache    *cache.Cache
	notifier *notifications.Notifier
	// requireOwnerOnUpdate restricts Update to the blog owner.
	requireOwnerOnUpdate bool
}

type CreateBlogInput struct {
	UserID uint
	Title  string
	Author string
	URL    string
	// Likes is the raw decoded JSON value; absent or non-numeric means 0.
	Likes any
}

type AddCommentInput struct {
	BlogID  uint
	Comment string
}

type UpdateBlogInput struct {
	BlogID uint
	// CallerID is the authenticated caller, 0 when the request carried no valid token.
	CallerID uint
	Title    *string
	Author   *string
	URL      *string
	Likes    any
}

type DeleteBlogInput struct {
	BlogID   uint
	CallerID uint
}

func NewBlogService(
	blogRepo repository.BlogRepository,
	userRepo repository.UserRepository,
	tx repository.TxManager,
	c *cache.Cache,
	notifier *notifications.Notifier,
	requireOwnerOnUpdate bool,
) *BlogService {
	return &BlogService{
		blogRepo:             blogRepo,
		userRepo:             userRepo,
		tx:                   tx,
		cache:                c,
		notifier:             notifier,
		requireOwnerOnUpdate: requireOwnerOnUpdate,
	}
}

// RequiresOwnerOnUpdate reports whether Update needs an authenticated owner.
func (s *BlogService) RequiresOwnerOnUpdate() bool {
	return s.requireOwnerOnUpdate
}

func (s *BlogService) List(ctx context.Context) ([]*models.Blog, error) {
	var blogs []*models.Blog
	err := s.cache.Aside(ctx, cache.BlogListKey, &blogs, cache.BlogListTTL, func() error {
		var err error
		blogs, err = s.blogRepo.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return blogs, nil
}

func (s *BlogService) Get(ctx context.Context, id uint) (*models.Blog, error) {
	var blog models.Blog
	err := s.cache.Aside(ctx, cache.BlogKey(id), &blog, cache.BlogTTL, func() error {
		found, err := s.blogRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		blog = *found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &blog, nil
}

// Create stores a blog owned by in.UserID and records it on the owner in the same
// transaction.
func (s *BlogService) Create(ctx context.Context, in CreateBlogInput) (blog *models.Blog, err error) {
	ctx, end := observability.StartSpan(ctx, "BlogService", "Create")
	defer func() { end(err) }()

	if err := validation.ValidateTitle(in.Title); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	likes, _, err := parseLikes(in.Likes)
	if err != nil {
		return nil, err
	}

	blog = &models.Blog{
		Title:  in.Title,
		Author: in.Author,
		URL:    in.URL,
		Likes:  likes,
		UserID: in.UserID,
	}
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := s.blogRepo.Create(ctx, blog); err != nil {
			return err
		}
		return s.userRepo.AppendOwnedBlog(ctx, in.UserID, blog.ID)
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateBlogList(ctx)
	s.publish(ctx, notifications.BlogCreated, blog.ID, in.UserID)
	return s.blogRepo.GetByID(ctx, blog.ID)
}

// AddComment appends one comment to the blog. The owner lookup and the insert share a
// transaction so a concurrent delete never leaves an orphaned comment.
func (s *BlogService) AddComment(ctx context.Context, in AddCommentInput) (*models.Blog, error) {
	if err := validation.ValidateComment(in.Comment); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	var ownerID uint
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		ownerID, err = s.blogRepo.OwnerOf(ctx, in.BlogID)
		if err != nil {
			return err
		}
		return s.blogRepo.AddComment(ctx, &models.Comment{BlogID: in.BlogID, Content: in.Comment})
	})
	if err != nil {
		return nil, err
	}

	s.cache.InvalidateBlog(ctx, in.BlogID)
	s.publish(ctx, notifications.BlogCommented, in.BlogID, ownerID)
	return s.blogRepo.GetByID(ctx, in.BlogID)
}

// Update replaces the provided fields. The owner never changes.
func (s *BlogService) Update(ctx context.Context, in UpdateBlogInput) (*models.Blog, error) {
	fields := models.BlogFields{Title: in.Title, Author: in.Author, URL: in.URL}
	if in.Title != nil {
		if err := validation.ValidateTitle(*in.Title); err != nil {
			return nil, models.NewValidationError(err.Error())
		}
	}
	if in.Likes != nil {
		likes, ok, err := parseLikes(in.Likes)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, models.NewValidationError("likes must be a non-negative integer")
		}
		fields.Likes = &likes
	}

	ownerID, err := s.blogRepo.OwnerOf(ctx, in.BlogID)
	if err != nil {
		return nil, err
	}
	if s.requireOwnerOnUpdate {
		if in.CallerID == 0 {
			return nil, models.NewUnauthorizedError("token missing or invalid")
		}
		if in.CallerID != ownerID {
			return nil, models.NewUnauthorizedError("token invalid")
		}
	}

	if err := s.blogRepo.Update(ctx, in.BlogID, fields); err != nil {
		return nil, err
	}

	s.cache.InvalidateBlog(ctx, in.BlogID)
	s.publish(ctx, notifications.BlogUpdated, in.BlogID, ownerID)
	return s.blogRepo.GetByID(ctx, in.BlogID)
}

// Delete removes a blog owned by the caller together with its comments.
func (s *BlogService) Delete(ctx context.Context, in DeleteBlogInput) (err error) {
	ctx, end := observability.StartSpan(ctx, "BlogService", "Delete")
	defer func() { end(err) }()

	var ownerID uint
	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		var err error
		ownerID, err = s.blogRepo.OwnerOf(ctx, in.BlogID)
		if err != nil {
			return err
		}
		if ownerID != in.CallerID {
			return models.NewUnauthorizedError("token invalid")
		}
		if err := s.blogRepo.Delete(ctx, in.BlogID); err != nil {
			return err
		}
		return s.userRepo.ReleaseOwnedBlog(ctx, ownerID)
	})
	if err != nil {
		return err
	}

	s.cache.InvalidateBlog(ctx, in.BlogID)
	s.publish(ctx, notifications.BlogDeleted, in.BlogID, ownerID)
	return nil
}

// Stats aggregates likes and authors over every blog.
func (s *BlogService) Stats(ctx context.Context) (listhelper.Stats, error) {
	blogs, err := s.List(ctx)
	if err != nil {
		return listhelper.Stats{}, err
	}
	return listhelper.Compute(blogs), nil
}

func (s *BlogService) publish(ctx context.Context, event string, blogID, ownerID uint) {
	observability.BlogEvents.WithLabelValues(event).Inc()
	ev := notifications.BlogEvent{Type: event, BlogID: blogID, UserID: ownerID}
	if err := s.notifier.PublishBlogEvent(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish blog event",
			slog.String("event", event),
			slog.Uint64("blog_id", uint64(blogID)),
			slog.String("error", err.Error()),
		)
	}
}
