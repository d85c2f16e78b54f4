package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/xp-task-api/internal/constants"
	"github.com/yukikurage/xp-task-api/internal/models"
	"github.com/yukikurage/xp-task-api/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrUsernameRequired     = errors.New("username is required")
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrFailedToCreateUser   = errors.New("failed to create user")
)

// UserDefaults are applied to every new account.
type UserDefaults struct {
	DailyXPQuota   int
	DaysOffPerWeek int
}

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	defaults UserDefaults
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, defaults UserDefaults) *AuthService {
	if defaults.DaysOffPerWeek < 0 || defaults.DaysOffPerWeek > constants.MaxDaysOffPerWeek {
		defaults.DaysOffPerWeek = constants.MaxDaysOffPerWeek
	}
	if defaults.DailyXPQuota < 0 {
		defaults.DailyXPQuota = 0
	}
	return &AuthService{
		userRepo: userRepo,
		defaults: defaults,
	}
}

// SignupInput represents the required information to create a new user.
type SignupInput struct {
	Username string
	Password string
}

// Signup creates a new user with the default quota and day-off allowance.
func (s *AuthService) Signup(input SignupInput) (*models.User, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" {
		return nil, ErrUsernameRequired
	}
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	if _, err := s.userRepo.FindByUsername(username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Username:       username,
		PasswordHash:   string(hashedPassword),
		DailyXPQuota:   s.defaults.DailyXPQuota,
		DaysOffPerWeek: s.defaults.DaysOffPerWeek,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateUser, err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Username string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}
