package dto

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID             uint64              `json:"id"`
	ProjectID      uint64              `json:"project_id"`
	CreatedByID    uint64              `json:"created_by_id"`
	Title          string              `json:"title"`
	Description    string              `json:"description"`
	Status         models.TaskStatus   `json:"status"`
	Priority       models.Priority     `json:"priority"`
	Timeline       models.TaskTimeline `json:"timeline"`
	Order          int                 `json:"order"`
	EstimatedHours *float64            `json:"estimated_hours"`
	ActualHours    *float64            `json:"actual_hours"`
	CompletedAt    *time.Time          `json:"completed_at"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
	CreatedBy      *UserSummaryDTO     `json:"created_by,omitempty"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:             task.ID,
		ProjectID:      task.ProjectID,
		CreatedByID:    task.CreatedByID,
		Title:          task.Title,
		Description:    task.Description,
		Status:         task.Status,
		Priority:       task.Priority,
		Timeline:       task.Timeline,
		Order:          task.Order,
		EstimatedHours: task.EstimatedHours,
		ActualHours:    task.ActualHours,
		CompletedAt:    task.CompletedAt,
		CreatedAt:      task.CreatedAt,
		UpdatedAt:      task.UpdatedAt,
		CreatedBy:      toUserSummary(&task.CreatedBy),
	}
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	return mapSlice(tasks, ToTaskDTO)
}
