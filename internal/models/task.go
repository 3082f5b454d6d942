package models

import "time"

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusReview     TaskStatus = "review"
	TaskStatusCompleted  TaskStatus = "completed"
)

type TaskTimeline struct {
	StartDate *time.Time `json:"start_date"`
	DueDate   time.Time  `gorm:"not null" json:"due_date"`
}

type Task struct {
	ID             uint64       `gorm:"primarykey" json:"id"`
	ProjectID      uint64       `gorm:"not null;index" json:"project_id"`
	CreatedByID    uint64       `gorm:"not null" json:"created_by_id"`
	Title          string       `gorm:"type:varchar(200);not null" json:"title"`
	Description    string       `gorm:"type:text" json:"description"`
	Status         TaskStatus   `gorm:"type:varchar(20);not null;default:'todo';index" json:"status"`
	Priority       Priority     `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	Timeline       TaskTimeline `gorm:"embedded;embeddedPrefix:timeline_" json:"timeline"`
	Order          int          `gorm:"column:sort_order;not null;default:0" json:"order"`
	EstimatedHours *float64     `json:"estimated_hours"`
	ActualHours    *float64     `json:"actual_hours"`
	CompletedAt    *time.Time   `json:"completed_at"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
	SoftDelete

	// Relations
	Project   Project `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CreatedBy User    `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`
}
