package repository

import (
	"context"
	"testing"

	"bloglist/internal/models"
	"bloglist/internal/testkit"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

type fixture struct {
	db    *gorm.DB
	users UserRepository
	blogs BlogRepository
	tx    TxManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testkit.NewSQLiteDB(t)
	return &fixture{
		db:    db,
		users: NewUserRepository(db),
		blogs: NewBlogRepository(db),
		tx:    NewTxManager(db),
	}
}

func (f *fixture) user(t *testing.T, username string) *models.User {
	t.Helper()
	u := &models.User{Username: username, Name: username + " name", PasswordHash: "hash"}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) blog(t *testing.T, owner *models.User, title string) *models.Blog {
	t.Helper()
	ctx := context.Background()
	b := &models.Blog{Title: title, Author: "Richter", URL: "http://example.com/" + title, UserID: owner.ID}
	require.NoError(t, f.tx.WithTx(ctx, func(ctx context.Context) error {
		if err := f.blogs.Create(ctx, b); err != nil {
			return err
		}
		return f.users.AppendOwnedBlog(ctx, owner.ID, b.ID)
	}))
	return b
}
