package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-colab-api/internal/dto"
	"github.com/yukikurage/task-colab-api/internal/middleware"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/services"
	"github.com/yukikurage/task-colab-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

type budgetRequest struct {
	Min      *float64 `json:"min" binding:"required,gte=0"`
	Max      *float64 `json:"max" binding:"required,gte=0"`
	Currency string   `json:"currency" binding:"omitempty,len=3"`
}

type timelineRequest struct {
	StartDate             *time.Time `json:"start_date"`
	Deadline              *time.Time `json:"deadline" binding:"required"`
	EstimatedDurationDays *int       `json:"estimated_duration_days" binding:"omitempty,min=1"`
}

type projectListQuery struct {
	Status       string   `form:"status"`
	Category     string   `form:"category"`
	Priority     string   `form:"priority" binding:"omitempty,oneof=low medium high urgent"`
	BuyerID      *uint64  `form:"buyer_id"`
	AssignedToID *uint64  `form:"assigned_to_id"`
	Search       string   `form:"search"`
	MinBudget    *float64 `form:"min_budget" binding:"omitempty,gte=0"`
	MaxBudget    *float64 `form:"max_budget" binding:"omitempty,gte=0"`
	SortBy       string   `form:"sort_by" binding:"omitempty,oneof=created_at deadline budget applicants"`
	SortOrder    string   `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

func (q projectListQuery) input(params utils.PaginationParams) services.ListProjectsInput {
	input := services.ListProjectsInput{
		Category:     q.Category,
		BuyerID:      q.BuyerID,
		AssignedToID: q.AssignedToID,
		Search:       q.Search,
		MinBudget:    q.MinBudget,
		MaxBudget:    q.MaxBudget,
		SortBy:       q.SortBy,
		SortAsc:      q.SortOrder == "asc",
		Page:         params.Page,
		PageSize:     params.Limit,
	}
	if q.Status != "" {
		status := models.ProjectStatus(q.Status)
		input.Status = &status
	}
	if q.Priority != "" {
		priority := models.Priority(q.Priority)
		input.Priority = &priority
	}
	return input
}

// CreateProject publishes a new open project owned by the current buyer
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	type CreateProjectRequest struct {
		Title        string          `json:"title" binding:"required,max=200"`
		Description  string          `json:"description" binding:"required,max=5000"`
		Category     string          `json:"category" binding:"required,max=100"`
		Priority     models.Priority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
		Budget       budgetRequest   `json:"budget"`
		Timeline     timelineRequest `json:"timeline"`
		Requirements []string        `json:"requirements"`
		Tags         []string        `json:"tags"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Create(actor, services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Priority:    req.Priority,
		Budget: models.Budget{
			Min:      *req.Budget.Min,
			Max:      *req.Budget.Max,
			Currency: req.Budget.Currency,
		},
		StartDate:             req.Timeline.StartDate,
		Deadline:              *req.Timeline.Deadline,
		EstimatedDurationDays: req.Timeline.EstimatedDurationDays,
		Requirements:          req.Requirements,
		Tags:                  req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Project created successfully", dto.ToProjectDTO(*project))
}

// ListProjects returns projects matching the query filters
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	h.list(c, h.projectService.List)
}

// ListOpenProjects returns the projects accepting requests
func (h *ProjectHandler) ListOpenProjects(c *gin.Context) {
	h.list(c, h.projectService.ListOpen)
}

// ListMyProjects returns the projects the current user owns or works on
func (h *ProjectHandler) ListMyProjects(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	h.list(c, func(input services.ListProjectsInput) ([]models.Project, int64, error) {
		return h.projectService.ListMine(actor, input)
	})
}

func (h *ProjectHandler) list(c *gin.Context, fetch func(services.ListProjectsInput) ([]models.Project, int64, error)) {
	var query projectListQuery
	if !bindQuery(c, &query) {
		return
	}
	params := utils.GetPaginationParams(c)

	projects, total, err := fetch(query.input(params))
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, "Projects retrieved", dto.ToProjectDTOs(projects), params, total)
}

// GetProject returns a single project
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, err := h.projectService.Get(middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project retrieved", dto.ToProjectDTO(*project))
}

// UpdateProject edits an open or assigned project
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	type UpdateProjectRequest struct {
		Title                 *string          `json:"title" binding:"omitempty,min=1,max=200"`
		Description           *string          `json:"description" binding:"omitempty,min=1,max=5000"`
		Category              *string          `json:"category" binding:"omitempty,min=1,max=100"`
		Priority              *models.Priority `json:"priority" binding:"omitempty,oneof=low medium high urgent"`
		BudgetMin             *float64         `json:"budget_min" binding:"omitempty,gte=0"`
		BudgetMax             *float64         `json:"budget_max" binding:"omitempty,gte=0"`
		Currency              *string          `json:"currency" binding:"omitempty,len=3"`
		StartDate             *time.Time       `json:"start_date"`
		Deadline              *time.Time       `json:"deadline"`
		EstimatedDurationDays *int             `json:"estimated_duration_days" binding:"omitempty,min=1"`
		Requirements          []string         `json:"requirements"`
		Tags                  []string         `json:"tags"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Update(actor, middleware.GetIDParam(c, "id"), services.UpdateProjectInput{
		Title:                 req.Title,
		Description:           req.Description,
		Category:              req.Category,
		Priority:              req.Priority,
		BudgetMin:             req.BudgetMin,
		BudgetMax:             req.BudgetMax,
		Currency:              req.Currency,
		StartDate:             req.StartDate,
		Deadline:              req.Deadline,
		EstimatedDurationDays: req.EstimatedDurationDays,
		Requirements:          req.Requirements,
		Tags:                  req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project updated successfully", dto.ToProjectDTO(*project))
}

// UpdateProjectStatus moves a project along its lifecycle
func (h *ProjectHandler) UpdateProjectStatus(c *gin.Context) {
	type UpdateStatusRequest struct {
		Status models.ProjectStatus `json:"status" binding:"required"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateStatus(actor, middleware.GetIDParam(c, "id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project status updated", dto.ToProjectDTO(*project))
}

// AssignProject assigns an open project to a problem solver
func (h *ProjectHandler) AssignProject(c *gin.Context) {
	type AssignRequest struct {
		SolverID uint64 `json:"solver_id" binding:"required"`
	}

	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var req AssignRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.Assign(actor, middleware.GetIDParam(c, "id"), req.SolverID)
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project assigned", dto.ToProjectDTO(*project))
}

// UnassignProject returns an assigned project to open
func (h *ProjectHandler) UnassignProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	project, err := h.projectService.Unassign(actor, middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project unassigned", dto.ToProjectDTO(*project))
}

// DeleteProject soft deletes an open or cancelled project
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	if err := h.projectService.Delete(actor, middleware.GetIDParam(c, "id")); err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project deleted successfully", nil)
}

// GetProjectProgress returns task counts for a project
func (h *ProjectHandler) GetProjectProgress(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	progress, err := h.projectService.Progress(actor, middleware.GetIDParam(c, "id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respond(c, http.StatusOK, "Project progress retrieved", progress)
}

// ListProjectActivity returns the project's audit trail
func (h *ProjectHandler) ListProjectActivity(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)

	events, total, err := h.projectService.Activity(actor, middleware.GetIDParam(c, "id"), params.Page, params.Limit)
	if err != nil {
		respondError(c, err)
		return
	}

	respondPage(c, "Project activity retrieved", dto.ToActivityDTOs(events), params, total)
}
