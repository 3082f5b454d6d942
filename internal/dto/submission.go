package dto

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/models"
)

// SubmissionDTO represents a deliverable in API responses
type SubmissionDTO struct {
	ID           uint64                  `json:"id"`
	TaskID       uint64                  `json:"task_id"`
	ProjectID    uint64                  `json:"project_id"`
	SolverID     uint64                  `json:"solver_id"`
	File         models.SubmissionFile   `json:"file"`
	Description  string                  `json:"description"`
	Status       models.SubmissionStatus `json:"status"`
	ReviewedByID *uint64                 `json:"reviewed_by_id"`
	ReviewedAt   *time.Time              `json:"reviewed_at"`
	Feedback     string                  `json:"feedback,omitempty"`
	Version      int                     `json:"version"`
	CreatedAt    time.Time               `json:"created_at"`
	Solver       *UserSummaryDTO         `json:"solver,omitempty"`
}

// ToSubmissionDTO converts a Submission model to SubmissionDTO
func ToSubmissionDTO(submission models.Submission) SubmissionDTO {
	return SubmissionDTO{
		ID:           submission.ID,
		TaskID:       submission.TaskID,
		ProjectID:    submission.ProjectID,
		SolverID:     submission.SolverID,
		File:         submission.File,
		Description:  submission.Description,
		Status:       submission.Status,
		ReviewedByID: submission.ReviewedByID,
		ReviewedAt:   submission.ReviewedAt,
		Feedback:     submission.Feedback,
		Version:      submission.Version,
		CreatedAt:    submission.CreatedAt,
		Solver:       toUserSummary(&submission.Solver),
	}
}

// ToSubmissionDTOs converts a slice of submissions
func ToSubmissionDTOs(submissions []models.Submission) []SubmissionDTO {
	return mapSlice(submissions, ToSubmissionDTO)
}
