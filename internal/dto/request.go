package dto

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/models"
)

// RequestDTO represents a project application in API responses
type RequestDTO struct {
	ID                   uint64               `json:"id"`
	ProjectID            uint64               `json:"project_id"`
	SolverID             uint64               `json:"solver_id"`
	CoverLetter          string               `json:"cover_letter"`
	ProposedBudget       *float64             `json:"proposed_budget"`
	ProposedTimelineDays *int                 `json:"proposed_timeline_days"`
	Status               models.RequestStatus `json:"status"`
	RejectionReason      string               `json:"rejection_reason,omitempty"`
	RespondedAt          *time.Time           `json:"responded_at"`
	CreatedAt            time.Time            `json:"created_at"`
	Solver               *UserSummaryDTO      `json:"solver,omitempty"`
	Project              *ProjectSummaryDTO   `json:"project,omitempty"`
}

// ToRequestDTO converts a Request model to RequestDTO
func ToRequestDTO(request models.Request) RequestDTO {
	return RequestDTO{
		ID:                   request.ID,
		ProjectID:            request.ProjectID,
		SolverID:             request.SolverID,
		CoverLetter:          request.CoverLetter,
		ProposedBudget:       request.ProposedBudget,
		ProposedTimelineDays: request.ProposedTimelineDays,
		Status:               request.Status,
		RejectionReason:      request.RejectionReason,
		RespondedAt:          request.RespondedAt,
		CreatedAt:            request.CreatedAt,
		Solver:               toUserSummary(&request.Solver),
		Project:              toProjectSummary(request.Project),
	}
}

// ToRequestDTOs converts a slice of requests
func ToRequestDTOs(requests []models.Request) []RequestDTO {
	return mapSlice(requests, ToRequestDTO)
}
