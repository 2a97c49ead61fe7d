package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/taskboard-api/internal/models"
	"github.com/yukikurage/taskboard-api/internal/repository"
	"github.com/yukikurage/taskboard-api/internal/session"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNameRequired         = &ValidationError{Field: "name", Message: "name is required"}
	ErrPasswordRequired     = &ValidationError{Field: "password", Message: "password is required"}
	ErrNameTaken            = errors.New("name already exists")
	ErrInvalidCredentials   = errors.New("invalid name or password")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository) *AuthService {
	return &AuthService{
		userRepo: userRepo,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Name     string
	Password string
}

// Signup creates a new user. Names already taken are refused so that login by
// name stays unambiguous for new accounts.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*models.User, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if input.Password == "" {
		return nil, ErrPasswordRequired
	}

	if _, err := s.userRepo.FindByName(ctx, name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("failed to check name: %w", storeFailure(err))
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:     name,
		Password: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, storeFailure(err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Name     string
	Password string
}

// Login verifies credentials and makes the user current in sess.
func (s *AuthService) Login(ctx context.Context, sess *session.Session, input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByName(ctx, strings.TrimSpace(input.Name))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", storeFailure(err))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	sess.SetCurrent(*user)
	return user, nil
}

// Logout empties sess.
func (s *AuthService) Logout(sess *session.Session) {
	sess.Clear()
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", storeFailure(err))
	}

	return user, nil
}
