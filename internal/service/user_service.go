// Package service contains the business logic sitting between handlers and
// repositories.
package service

import (
	"context"

	"postboard/internal/models"
	"postboard/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CreateUserInput carries the registration payload.
type CreateUserInput struct {
	Name     string `json:"name"`
	Login    string `json:"login"`
	Password string `json:"password"`
}

// UserService handles account registration, authentication and deletion.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates a new user service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// CreateUser registers a new account. The password is stored as a bcrypt hash
// and an opaque session token is issued immediately.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, string, error) {
	if input.Login == "" {
		return nil, "", models.NewValidationError("login is required")
	}
	if input.Password == "" {
		return nil, "", models.NewValidationError("password is required")
	}
	name := input.Name
	if name == "" {
		name = models.DefaultUserName
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", models.NewInternalError("failed to hash password", err)
	}

	token := uuid.NewString()
	user := &models.User{
		Name:     name,
		Login:    input.Login,
		Password: string(hash),
		Token:    token,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Authenticate checks the login and password and returns the stored session
// token. Both an unknown login and a wrong password yield the same
// unauthorized error.
func (s *UserService) Authenticate(ctx context.Context, login, password string) (string, error) {
	user, err := s.users.GetByLogin(ctx, login)
	if err != nil {
		return "", err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return "", models.NewUnauthorizedError("invalid login or password")
	}
	return user.Token, nil
}

// ValidateToken resolves a session token to its owner. A nil user with a nil
// error means the token is unknown.
func (s *UserService) ValidateToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.users.GetByToken(ctx, token)
}

// GetUser fetches a user by ID.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// DeleteUser removes the user and all their posts.
func (s *UserService) DeleteUser(ctx context.Context, id uint) error {
	return s.users.DeleteWithPosts(ctx, id)
}
