package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-colab-api/internal/auth"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken           = newError(KindConflict, "email is already registered")
	ErrInvalidCredentials   = newError(KindUnauthorized, "invalid email or password")
	ErrPasswordTooShort     = newError(KindBadRequest, "password must be at least 8 characters")
	ErrNameRequired         = newError(KindBadRequest, "name is required")
	ErrEmailRequired        = newError(KindBadRequest, "email is required")
	ErrInvalidRole          = newError(KindBadRequest, "role must be buyer or problem_solver")
	ErrUserNotFound         = newError(KindNotFound, "user not found")
	ErrUserBlocked          = newError(KindForbidden, "your account has been blocked")
	ErrNotAuthenticated     = newError(KindUnauthorized, "authentication required")
	ErrWrongPassword        = newError(KindBadRequest, "current password is incorrect")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService handles authentication related business logic.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
	}
}

// AuthResult is a user together with a freshly issued bearer token.
type AuthResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.UserRole
}

// Register creates a buyer or problem solver account and logs it in.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	if input.Role != models.RoleBuyer && input.Role != models.RoleProblemSolver {
		return nil, ErrInvalidRole
	}

	user, err := s.CreateUser(input.Name, input.Email, input.Password, input.Role)
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// CreateUser validates and stores a new account with any role.
func (s *AuthService) CreateUser(name, email, password string, role models.UserRole) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	email = normalizeEmail(email)
	if email == "" {
		return nil, ErrEmailRequired
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, ErrPasswordTooShort
	}

	exists, err := s.userRepo.EmailExists(email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       models.UserStatusActive,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user with a token.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(normalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := auth.CheckPassword(input.Password, user.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status == models.UserStatusBlocked {
		return nil, ErrUserBlocked
	}

	now := time.Now()
	user.LastLoginAt = &now
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return s.issue(user)
}

// Authenticate resolves a bearer token to an active user.
func (s *AuthService) Authenticate(token string) (*models.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, wrapf(ErrNotAuthenticated, "%v", err)
	}
	return s.ActiveUser(userID)
}

// ActiveUser loads a user that may act: not deleted and not blocked.
func (s *AuthService) ActiveUser(id uint64) (*models.User, error) {
	user, err := s.GetUser(id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrNotAuthenticated
		}
		return nil, err
	}
	if user.Status == models.UserStatusBlocked {
		return nil, ErrUserBlocked
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

// ChangePasswordInput holds the current and the new password.
type ChangePasswordInput struct {
	CurrentPassword string
	NewPassword     string
}

// ChangePassword replaces the actor's password after checking the current one.
func (s *AuthService) ChangePassword(actor Actor, input ChangePasswordInput) error {
	user, err := s.GetUser(actor.ID)
	if err != nil {
		return err
	}

	if err := auth.CheckPassword(input.CurrentPassword, user.PasswordHash); err != nil {
		return ErrWrongPassword
	}
	if err := auth.ValidatePassword(input.NewPassword); err != nil {
		return ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(input.NewPassword)
	if err != nil {
		return ErrFailedToHashPassword
	}
	user.PasswordHash = hash

	if err := s.userRepo.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

func (s *AuthService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(*user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
