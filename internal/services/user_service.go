package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrAdminOnly         = newError(KindForbidden, "only admins can perform this action")
	ErrCannotModifySelf  = newError(KindBadRequest, "you cannot change the status of your own account")
	ErrInvalidUserStatus = newError(KindBadRequest, "status must be active or blocked")
)

// UserService handles user profiles and account administration.
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UpdateProfileInput represents the editable profile fields
type UpdateProfileInput struct {
	Name      *string
	Bio       *string
	Skills    []string
	AvatarURL *string
}

// ListUsersInput represents filters for listing users
type ListUsersInput struct {
	Role     *models.UserRole
	Status   *models.UserStatus
	Search   string
	Page     int
	PageSize int
}

// GetProfile returns a user by ID
func (s *UserService) GetProfile(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// UpdateProfile edits the actor's own profile
func (s *UserService) UpdateProfile(actor Actor, input UpdateProfileInput) (*models.User, error) {
	user, err := s.GetProfile(actor.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		user.Name = name
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.Skills != nil {
		user.Skills = cleanList(input.Skills)
	}
	if input.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*input.AvatarURL)
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// List returns users for admins
func (s *UserService) List(actor Actor, input ListUsersInput) ([]models.User, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, ErrAdminOnly
	}

	users, total, err := s.userRepo.List(repository.UserFilter{
		Role:     input.Role,
		Status:   input.Status,
		Search:   input.Search,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

// ListSolvers returns active problem solvers
func (s *UserService) ListSolvers(search string, page, pageSize int) ([]models.User, int64, error) {
	role := models.RoleProblemSolver
	status := models.UserStatusActive

	users, total, err := s.userRepo.List(repository.UserFilter{
		Role:     &role,
		Status:   &status,
		Search:   search,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list problem solvers: %w", err)
	}
	return users, total, nil
}

// UpdateStatus blocks or reactivates an account
func (s *UserService) UpdateStatus(actor Actor, id uint64, status models.UserStatus) (*models.User, error) {
	if !actor.IsAdmin() {
		return nil, ErrAdminOnly
	}
	if status != models.UserStatusActive && status != models.UserStatusBlocked {
		return nil, ErrInvalidUserStatus
	}
	if id == actor.ID {
		return nil, ErrCannotModifySelf
	}

	user, err := s.GetProfile(id)
	if err != nil {
		return nil, err
	}

	user.Status = status
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user status: %w", err)
	}
	return user, nil
}

// Delete soft deletes an account
func (s *UserService) Delete(actor Actor, id uint64) error {
	if !actor.IsAdmin() {
		return ErrAdminOnly
	}
	if id == actor.ID {
		return wrapf(ErrCannotModifySelf, "you cannot delete your own account")
	}

	if err := s.userRepo.SoftDelete(id, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// cleanList trims entries and drops empty ones.
func cleanList(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			cleaned = append(cleaned, v)
		}
	}
	return cleaned
}
