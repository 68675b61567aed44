// Package service holds the business rules for users, logins and blogs.
package service

import (
	"context"
	"strings"

	"bloglist/internal/models"
	"bloglist/internal/observability"
	"bloglist/internal/repository"
	"bloglist/internal/tokens"
	"bloglist/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const invalidCredentials = "invalid username or password"

type UserService struct {
	userRepo repository.UserRepository
	tokens   *tokens.Service
	hashCost int
}

type RegisterInput struct {
	Username string
	Name     string
	Password string
}

type LoginInput struct {
	Username string
	Password string
}

func NewUserService(userRepo repository.UserRepository, tokenService *tokens.Service) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokenService,
		hashCost: bcrypt.DefaultCost,
	}
}

// Register creates a user with a bcrypt password hash and no blogs.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (user *models.User, err error) {
	ctx, end := observability.StartSpan(ctx, "UserService", "Register")
	defer func() {
		observability.Registrations.WithLabelValues(observability.Outcome(err)).Inc()
		end(err)
	}()

	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	username := strings.TrimSpace(in.Username)
	if err := validation.ValidateUsername(username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("username must be unique")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user = &models.User{
		Username:     username,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
	}
	// A concurrent registration can still win the race; the unique index reports it
	// as the same conflict.
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.ListWithBlogs(ctx)
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.userRepo.GetByIDWithBlogs(ctx, id)
}

// Login checks the credentials and issues a token. Unknown users and wrong passwords
// fail identically.
func (s *UserService) Login(ctx context.Context, in LoginInput) (view *models.LoginView, err error) {
	ctx, end := observability.StartSpan(ctx, "UserService", "Login")
	defer func() {
		observability.LoginAttempts.WithLabelValues(observability.Outcome(err)).Inc()
		end(err)
	}()

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(in.Username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, models.NewUnauthorizedError(invalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &models.LoginView{Token: token, Username: user.Username, Name: user.Name, ID: user.ID}, nil
}

// Authenticate verifies token and resolves the user it was issued for.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, models.NewUnauthorizedError("token missing or invalid")
	}
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, models.NewUnauthorizedError("token invalid")
		}
		return nil, err
	}
	return user, nil
}
