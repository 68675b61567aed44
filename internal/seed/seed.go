// Package seed populates the database with a root account and fake demo data.
// It is used by cmd/seed and at startup when SEED_ROOT_USER is enabled.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"bloglist/internal/database"
	"bloglist/internal/middleware"
	"bloglist/internal/models"
	"bloglist/internal/repository"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// DefaultPassword is given to every generated user.
const DefaultPassword = "password123"

// Options configures a seeding run.
type Options struct {
	NumUsers    int
	NumBlogs    int
	MaxComments int
	ShouldClean bool
	// RandSeed makes the generated data reproducible. Zero picks a random seed.
	RandSeed int64
	HashCost int
}

// Summary reports what a run created.
type Summary struct {
	Users    int
	Blogs    int
	Comments int
}

// Seeder writes generated users, blogs and comments through the repositories so
// ownership counters stay consistent.
type Seeder struct {
	db    *gorm.DB
	users repository.UserRepository
	blogs repository.BlogRepository
	tx    repository.TxManager
	faker *gofakeit.Faker
	cost  int
}

func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Seeder{
		db:    db,
		users: repository.NewUserRepository(db),
		blogs: repository.NewBlogRepository(db),
		tx:    repository.NewTxManager(db),
		faker: gofakeit.New(opts.RandSeed),
		cost:  cost,
	}
}

// ClearAll removes every comment, blog and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return database.Reset(ctx, s.db)
}

// Run executes a full seeding pass according to opts.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var sum Summary
	if opts.ShouldClean {
		if err := s.ClearAll(ctx); err != nil {
			return sum, fmt.Errorf("clean: %w", err)
		}
	}

	users, err := s.SeedUsers(ctx, opts.NumUsers)
	if err != nil {
		return sum, err
	}
	sum.Users = len(users)

	blogs, err := s.SeedBlogs(ctx, users, opts.NumBlogs)
	if err != nil {
		return sum, err
	}
	sum.Blogs = len(blogs)

	comments, err := s.SeedComments(ctx, blogs, opts.MaxComments)
	if err != nil {
		return sum, err
	}
	sum.Comments = comments
	return sum, nil
}

// SeedUsers creates n users sharing DefaultPassword.
func (s *Seeder) SeedUsers(ctx context.Context, n int) ([]*models.User, error) {
	if n <= 0 {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		user := &models.User{
			Username:     s.username(i),
			Name:         s.faker.Name(),
			PasswordHash: string(hash),
		}
		if err := s.users.Create(ctx, user); err != nil {
			return users, fmt.Errorf("create user %q: %w", user.Username, err)
		}
		users = append(users, user)
	}
	middleware.Logger.Info("seeded users", slog.Int("count", len(users)))
	return users, nil
}

// SeedBlogs creates n blogs spread across owners at random.
func (s *Seeder) SeedBlogs(ctx context.Context, owners []*models.User, n int) ([]*models.Blog, error) {
	if n <= 0 || len(owners) == 0 {
		return nil, nil
	}

	blogs := make([]*models.Blog, 0, n)
	for i := 0; i < n; i++ {
		owner := owners[s.faker.Number(0, len(owners)-1)]
		blog := &models.Blog{
			Title:  strings.TrimSuffix(s.faker.Sentence(s.faker.Number(2, 6)), "."),
			Author: s.faker.Name(),
			URL:    s.faker.URL(),
			Likes:  s.faker.Number(0, 50),
			UserID: owner.ID,
		}
		err := s.tx.WithTx(ctx, func(ctx context.Context) error {
			if err := s.blogs.Create(ctx, blog); err != nil {
				return err
			}
			return s.users.AppendOwnedBlog(ctx, owner.ID, blog.ID)
		})
		if err != nil {
			return blogs, fmt.Errorf("create blog for %q: %w", owner.Username, err)
		}
		blogs = append(blogs, blog)
	}
	middleware.Logger.Info("seeded blogs", slog.Int("count", len(blogs)))
	return blogs, nil
}

// SeedComments attaches between zero and max comments to each blog.
func (s *Seeder) SeedComments(ctx context.Context, blogs []*models.Blog, max int) (int, error) {
	if max <= 0 {
		return 0, nil
	}
	total := 0
	for _, blog := range blogs {
		for j := s.faker.Number(0, max); j > 0; j-- {
			c := &models.Comment{BlogID: blog.ID, Content: s.faker.Sentence(s.faker.Number(3, 12))}
			if err := s.blogs.AddComment(ctx, c); err != nil {
				return total, fmt.Errorf("comment on blog %d: %w", blog.ID, err)
			}
			total++
		}
	}
	return total, nil
}

func (s *Seeder) username(i int) string {
	name := strings.ToLower(s.faker.Username())
	if len(name) > 48 {
		name = name[:48]
	}
	return fmt.Sprintf("%s%d", name, 100+i)
}

// RootUser describes the account created by EnsureRootUser.
type RootUser struct {
	Username string
	Name     string
	Password string
}

// EnsureRootUser creates the root account unless a user with that username already
// exists. An existing account is returned untouched.
func EnsureRootUser(ctx context.Context, users repository.UserRepository, root RootUser, cost int) (*models.User, error) {
	username := strings.TrimSpace(root.Username)
	if username == "" {
		return nil, fmt.Errorf("root username is required")
	}
	if root.Password == "" {
		return nil, fmt.Errorf("root password is required")
	}

	existing, err := users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(root.Password), cost)
	if err != nil {
		return nil, fmt.Errorf("hash root password: %w", err)
	}
	user := &models.User{Username: username, Name: root.Name, PasswordHash: string(hash)}
	if err := users.Create(ctx, user); err != nil {
		// Another instance created it first.
		if models.IsCode(err, models.CodeConflict) {
			return users.GetByUsername(ctx, username)
		}
		return nil, err
	}

	middleware.Logger.Info("root user created", slog.String("username", username))
	return user, nil
}
