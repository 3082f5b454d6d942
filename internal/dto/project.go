package dto

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/models"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID              uint64                 `json:"id"`
	Title           string                 `json:"title"`
	Description     string                 `json:"description"`
	BuyerID         uint64                 `json:"buyer_id"`
	AssignedToID    *uint64                `json:"assigned_to_id"`
	Status          models.ProjectStatus   `json:"status"`
	Category        string                 `json:"category"`
	Priority        models.Priority        `json:"priority"`
	Budget          models.Budget          `json:"budget"`
	Timeline        models.ProjectTimeline `json:"timeline"`
	Requirements    []string               `json:"requirements"`
	Tags            []string               `json:"tags"`
	ApplicantsCount int                    `json:"applicants_count"`
	CompletedAt     *time.Time             `json:"completed_at"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
	Buyer           *UserSummaryDTO        `json:"buyer,omitempty"`
	AssignedTo      *UserSummaryDTO        `json:"assigned_to,omitempty"`
}

// ProjectSummaryDTO is the short form of a project embedded in other resources
type ProjectSummaryDTO struct {
	ID     uint64               `json:"id"`
	Title  string               `json:"title"`
	Status models.ProjectStatus `json:"status"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:              project.ID,
		Title:           project.Title,
		Description:     project.Description,
		BuyerID:         project.BuyerID,
		AssignedToID:    project.AssignedToID,
		Status:          project.Status,
		Category:        project.Category,
		Priority:        project.Priority,
		Budget:          project.Budget,
		Timeline:        project.Timeline,
		Requirements:    nonNil(project.Requirements),
		Tags:            nonNil(project.Tags),
		ApplicantsCount: project.ApplicantsCount,
		CompletedAt:     project.CompletedAt,
		CreatedAt:       project.CreatedAt,
		UpdatedAt:       project.UpdatedAt,
		Buyer:           toUserSummary(&project.Buyer),
		AssignedTo:      toUserSummary(project.AssignedTo),
	}
}

// ToProjectDTOs converts a slice of projects
func ToProjectDTOs(projects []models.Project) []ProjectDTO {
	return mapSlice(projects, ToProjectDTO)
}

func toProjectSummary(project models.Project) *ProjectSummaryDTO {
	if project.ID == 0 {
		return nil
	}
	return &ProjectSummaryDTO{
		ID:     project.ID,
		Title:  project.Title,
		Status: project.Status,
	}
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
