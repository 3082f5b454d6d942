package dto

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID          uint64            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Role        models.UserRole   `json:"role"`
	Status      models.UserStatus `json:"status"`
	Bio         string            `json:"bio"`
	Skills      []string          `json:"skills"`
	AvatarURL   string            `json:"avatar_url"`
	LastLoginAt *time.Time        `json:"last_login_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

// UserSummaryDTO is the public part of a user embedded in other resources
type UserSummaryDTO struct {
	ID        uint64          `json:"id"`
	Name      string          `json:"name"`
	Role      models.UserRole `json:"role"`
	AvatarURL string          `json:"avatar_url"`
}

// AuthDTO is returned by register and login
type AuthDTO struct {
	User      UserDTO   `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	skills := []string(user.Skills)
	if skills == nil {
		skills = []string{}
	}
	return UserDTO{
		ID:          user.ID,
		Name:        user.Name,
		Email:       user.Email,
		Role:        user.Role,
		Status:      user.Status,
		Bio:         user.Bio,
		Skills:      skills,
		AvatarURL:   user.AvatarURL,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// ToUserDTOs converts a slice of users
func ToUserDTOs(users []models.User) []UserDTO {
	return mapSlice(users, ToUserDTO)
}

// toUserSummary returns nil when the relation was not preloaded.
func toUserSummary(user *models.User) *UserSummaryDTO {
	if user == nil || user.ID == 0 {
		return nil
	}
	return &UserSummaryDTO{
		ID:        user.ID,
		Name:      user.Name,
		Role:      user.Role,
		AvatarURL: user.AvatarURL,
	}
}

func mapSlice[T, D any](items []T, convert func(T) D) []D {
	out := make([]D, len(items))
	for i, item := range items {
		out[i] = convert(item)
	}
	return out
}
