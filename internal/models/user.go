package models

import (
	"time"

	"gorm.io/datatypes"
)

type UserRole string

const (
	RoleAdmin         UserRole = "admin"
	RoleBuyer         UserRole = "buyer"
	RoleProblemSolver UserRole = "problem_solver"
)

type UserStatus string

const (
	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

type User struct {
	ID           uint64                      `gorm:"primarykey" json:"id"`
	Name         string                      `gorm:"type:varchar(100);not null" json:"name"`
	Email        string                      `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string                      `gorm:"type:varchar(255);not null" json:"-"`
	Role         UserRole                    `gorm:"type:varchar(20);not null;index" json:"role"`
	Status       UserStatus                  `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	Bio          string                      `gorm:"type:text" json:"bio"`
	Skills       datatypes.JSONSlice[string] `json:"skills"`
	AvatarURL    string                      `gorm:"type:varchar(500)" json:"avatar_url"`
	LastLoginAt  *time.Time                  `json:"last_login_at"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
	SoftDelete
}

func (u User) IsActive() bool {
	return u.Status == UserStatusActive && !u.IsDeleted
}
