package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yukikurage/task-colab-api/internal/constants"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/repository"
	"github.com/yukikurage/task-colab-api/internal/workflow"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound       = newError(KindNotFound, "project not found")
	ErrProjectPermission     = newError(KindForbidden, "only the project owner or an admin can perform this action")
	ErrNotProjectParticipant = newError(KindForbidden, "you are not a participant of this project")
	ErrOnlyBuyersCreate      = newError(KindForbidden, "only buyers can create projects")
	ErrTitleRequired         = newError(KindBadRequest, "title is required")
	ErrDescriptionRequired   = newError(KindBadRequest, "description is required")
	ErrCategoryRequired      = newError(KindBadRequest, "category is required")
	ErrInvalidPriority       = newError(KindBadRequest, "priority must be low, medium, high or urgent")
	ErrNegativeBudget        = newError(KindBadRequest, "budget cannot be negative")
	ErrInvalidBudget         = newError(KindBadRequest, "budget max must be greater than or equal to budget min")
	ErrDeadlineRequired      = newError(KindBadRequest, "deadline is required")
	ErrInvalidTimeline       = newError(KindBadRequest, "deadline must be after the start date")
	ErrInvalidProjectStatus  = newError(KindBadRequest, "invalid project status")
	ErrProjectNotEditable    = newError(KindBadRequest, "project can only be edited while open or assigned")
	ErrProjectNotDeletable   = newError(KindBadRequest, "project can only be deleted while open or cancelled")
	ErrProjectNotOpen        = newError(KindBadRequest, "project is not open")
	ErrProjectNotAssigned    = newError(KindBadRequest, "project is not assigned")
	ErrAssigneeRequired      = newError(KindBadRequest, "project has no assigned problem solver")
	ErrInvalidAssignee       = newError(KindBadRequest, "assignee must be an active problem solver")
)

var validPriorities = map[models.Priority]bool{
	models.PriorityLow:    true,
	models.PriorityMedium: true,
	models.PriorityHigh:   true,
	models.PriorityUrgent: true,
}

// ProjectService handles the project lifecycle
type ProjectService struct {
	projectRepo repository.ProjectRepository
	userRepo    repository.UserRepository
	taskRepo    repository.TaskRepository
	requestRepo repository.RequestRepository
	activity    *ActivityService
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo repository.ProjectRepository, userRepo repository.UserRepository, taskRepo repository.TaskRepository, requestRepo repository.RequestRepository, activity *ActivityService) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		taskRepo:    taskRepo,
		requestRepo: requestRepo,
		activity:    activity,
	}
}

// CreateProjectInput represents input for creating a project
type CreateProjectInput struct {
	Title                 string
	Description           string
	Category              string
	Priority              models.Priority
	Budget                models.Budget
	StartDate             *time.Time
	Deadline              time.Time
	EstimatedDurationDays *int
	Requirements          []string
	Tags                  []string
}

// UpdateProjectInput represents input for updating a project
type UpdateProjectInput struct {
	Title                 *string
	Description           *string
	Category              *string
	Priority              *models.Priority
	BudgetMin             *float64
	BudgetMax             *float64
	Currency              *string
	StartDate             *time.Time
	Deadline              *time.Time
	EstimatedDurationDays *int
	Requirements          []string
	Tags                  []string
}

// ListProjectsInput represents filters for listing projects
type ListProjectsInput struct {
	Status       *models.ProjectStatus
	Category     string
	Priority     *models.Priority
	BuyerID      *uint64
	AssignedToID *uint64
	Search       string
	MinBudget    *float64
	MaxBudget    *float64
	SortBy       string
	SortAsc      bool
	Page         int
	PageSize     int
}

// ProjectProgress summarizes the task board of a project
type ProjectProgress struct {
	ProjectID       uint64                      `json:"project_id"`
	Status          models.ProjectStatus        `json:"status"`
	TotalTasks      int64                       `json:"total_tasks"`
	CompletedTasks  int64                       `json:"completed_tasks"`
	PercentComplete float64                     `json:"percent_complete"`
	ByStatus        map[models.TaskStatus]int64 `json:"by_status"`
}

// projectRelation resolves the actor's workflow parties for a project.
func projectRelation(project *models.Project, actor Actor) workflow.Relation {
	return workflow.Relation{
		IsBuyer:          project.BuyerID == actor.ID,
		IsAssignedSolver: project.IsAssignedTo(actor.ID),
		IsAdmin:          actor.IsAdmin(),
	}
}

func canManageProject(project *models.Project, actor Actor) bool {
	return project.BuyerID == actor.ID || actor.IsAdmin()
}

func isProjectParticipant(project *models.Project, actor Actor) bool {
	return canManageProject(project, actor) || project.IsAssignedTo(actor.ID)
}

// Create creates a new open project owned by the actor
func (s *ProjectService) Create(actor Actor, input CreateProjectInput) (*models.Project, error) {
	if !actor.IsBuyer() && !actor.IsAdmin() {
		return nil, ErrOnlyBuyersCreate
	}

	project := &models.Project{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Category:     strings.TrimSpace(input.Category),
		Priority:     input.Priority,
		BuyerID:      actor.ID,
		Status:       models.ProjectStatusOpen,
		Budget:       input.Budget,
		Requirements: cleanList(input.Requirements),
		Tags:         cleanList(input.Tags),
		Timeline: models.ProjectTimeline{
			StartDate:             input.StartDate,
			Deadline:              input.Deadline,
			EstimatedDurationDays: input.EstimatedDurationDays,
		},
	}
	if project.Priority == "" {
		project.Priority = models.PriorityMedium
	}

	if err := validateProject(project); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	s.activity.Record(models.EntityProject, project.ID, project.ID, actor.ID, "created", nil)

	return s.Get(project.ID)
}

// validateProject normalizes and checks the fields shared by create and update.
func validateProject(project *models.Project) error {
	if project.Title == "" {
		return ErrTitleRequired
	}
	if project.Description == "" {
		return ErrDescriptionRequired
	}
	if project.Category == "" {
		return ErrCategoryRequired
	}
	if !validPriorities[project.Priority] {
		return ErrInvalidPriority
	}

	project.Budget.Currency = strings.ToUpper(strings.TrimSpace(project.Budget.Currency))
	if project.Budget.Currency == "" {
		project.Budget.Currency = constants.DefaultCurrency
	}
	if project.Budget.Min < 0 || project.Budget.Max < 0 {
		return ErrNegativeBudget
	}
	if project.Budget.Max < project.Budget.Min {
		return ErrInvalidBudget
	}

	if project.Timeline.Deadline.IsZero() {
		return ErrDeadlineRequired
	}
	if project.Timeline.StartDate != nil && !project.Timeline.Deadline.After(*project.Timeline.StartDate) {
		return ErrInvalidTimeline
	}
	if d := project.Timeline.EstimatedDurationDays; d != nil && *d < 1 {
		return wrapf(ErrValidation, "estimated duration must be at least 1 day")
	}
	return nil
}

// Get returns a project with its buyer and assignee
func (s *ProjectService) Get(id uint64) (*models.Project, error) {
	return s.find(id, "Buyer", "AssignedTo")
}

func (s *ProjectService) find(id uint64, preload ...string) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id, preload...)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// List returns projects matching the filters
func (s *ProjectService) List(input ListProjectsInput) ([]models.Project, int64, error) {
	filter := repository.ProjectFilter{
		Category:     strings.TrimSpace(input.Category),
		Priority:     input.Priority,
		BuyerID:      input.BuyerID,
		AssignedToID: input.AssignedToID,
		Search:       input.Search,
		MinBudget:    input.MinBudget,
		MaxBudget:    input.MaxBudget,
		SortBy:       input.SortBy,
		SortAsc:      input.SortAsc,
		Page:         input.Page,
		PageSize:     input.PageSize,
	}
	if input.Status != nil {
		if !workflow.ProjectTransitions.Valid(*input.Status) {
			return nil, 0, ErrInvalidProjectStatus
		}
		filter.Statuses = []models.ProjectStatus{*input.Status}
	}

	projects, total, err := s.projectRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// ListOpen returns the projects accepting requests
func (s *ProjectService) ListOpen(input ListProjectsInput) ([]models.Project, int64, error) {
	status := models.ProjectStatusOpen
	input.Status = &status
	return s.List(input)
}

// ListMine returns the projects the actor owns or works on
func (s *ProjectService) ListMine(actor Actor, input ListProjectsInput) ([]models.Project, int64, error) {
	input.BuyerID = nil
	input.AssignedToID = nil

	switch actor.Role {
	case models.RoleBuyer:
		input.BuyerID = &actor.ID
	case models.RoleProblemSolver:
		input.AssignedToID = &actor.ID
	}
	return s.List(input)
}

// Update edits a project while it is open or assigned
func (s *ProjectService) Update(actor Actor, id uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !canManageProject(project, actor) {
		return nil, ErrProjectPermission
	}
	if !workflow.ProjectEditable[project.Status] {
		return nil, ErrProjectNotEditable
	}

	if input.Title != nil {
		project.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		project.Description = strings.TrimSpace(*input.Description)
	}
	if input.Category != nil {
		project.Category = strings.TrimSpace(*input.Category)
	}
	if input.Priority != nil {
		project.Priority = *input.Priority
	}
	if input.BudgetMin != nil {
		project.Budget.Min = *input.BudgetMin
	}
	if input.BudgetMax != nil {
		project.Budget.Max = *input.BudgetMax
	}
	if input.Currency != nil {
		project.Budget.Currency = *input.Currency
	}
	if input.StartDate != nil {
		project.Timeline.StartDate = input.StartDate
	}
	if input.Deadline != nil {
		project.Timeline.Deadline = *input.Deadline
	}
	if input.EstimatedDurationDays != nil {
		project.Timeline.EstimatedDurationDays = input.EstimatedDurationDays
	}
	if input.Requirements != nil {
		project.Requirements = cleanList(input.Requirements)
	}
	if input.Tags != nil {
		project.Tags = cleanList(input.Tags)
	}

	if err := validateProject(project); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}
	s.activity.Record(models.EntityProject, project.ID, project.ID, actor.ID, "updated", nil)

	return s.Get(project.ID)
}

// UpdateStatus moves a project along its lifecycle
func (s *ProjectService) UpdateStatus(actor Actor, id uint64, target models.ProjectStatus) (*models.Project, error) {
	if !workflow.ProjectTransitions.Valid(target) {
		return nil, ErrInvalidProjectStatus
	}

	project, err := s.find(id)
	if err != nil {
		return nil, err
	}

	from := project.Status
	if err := workflow.ProjectTransitions.Check(from, target, projectRelation(project, actor)); err != nil {
		return nil, transitionError("project", err)
	}

	switch target {
	case models.ProjectStatusAssigned, models.ProjectStatusInProgress:
		if project.AssignedToID == nil {
			return nil, ErrAssigneeRequired
		}
	case models.ProjectStatusOpen:
		project.AssignedToID = nil
	}

	s.applyProjectStatus(project, target, time.Now())

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}
	s.activity.Transition(models.EntityProject, project.ID, project.ID, actor.ID, string(from), string(target))

	if target == models.ProjectStatusOpen {
		if err := s.releaseAcceptedRequest(project.ID, actor.ID); err != nil {
			return nil, err
		}
	}

	return s.Get(project.ID)
}

// applyProjectStatus sets the status and stamps the timestamps it implies.
func (s *ProjectService) applyProjectStatus(project *models.Project, target models.ProjectStatus, now time.Time) {
	project.Status = target
	switch target {
	case models.ProjectStatusInProgress:
		if project.Timeline.StartDate == nil {
			project.Timeline.StartDate = &now
		}
	case models.ProjectStatusCompleted:
		project.CompletedAt = &now
	}
}

// Assign gives an open project to a problem solver
func (s *ProjectService) Assign(actor Actor, id, solverID uint64) (*models.Project, error) {
	project, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !canManageProject(project, actor) {
		return nil, ErrProjectPermission
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, ErrProjectNotOpen
	}

	solver, err := s.userRepo.FindByID(solverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidAssignee
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if solver.Role != models.RoleProblemSolver || !solver.IsActive() {
		return nil, ErrInvalidAssignee
	}

	project.AssignedToID = &solver.ID
	project.Status = models.ProjectStatusAssigned

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to assign project: %w", err)
	}
	s.activity.Transition(models.EntityProject, project.ID, project.ID, actor.ID,
		string(models.ProjectStatusOpen), string(models.ProjectStatusAssigned))

	return s.Get(project.ID)
}

// Unassign returns an assigned project to open
func (s *ProjectService) Unassign(actor Actor, id uint64) (*models.Project, error) {
	project, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !canManageProject(project, actor) {
		return nil, ErrProjectPermission
	}
	if project.Status != models.ProjectStatusAssigned {
		return nil, ErrProjectNotAssigned
	}

	project.AssignedToID = nil
	project.Status = models.ProjectStatusOpen

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to unassign project: %w", err)
	}
	s.activity.Transition(models.EntityProject, project.ID, project.ID, actor.ID,
		string(models.ProjectStatusAssigned), string(models.ProjectStatusOpen))

	if err := s.releaseAcceptedRequest(project.ID, actor.ID); err != nil {
		return nil, err
	}

	return s.Get(project.ID)
}

// releaseAcceptedRequest withdraws the accepted request of a project that went
// back to open.
func (s *ProjectService) releaseAcceptedRequest(projectID, actorID uint64) error {
	released, err := s.requestRepo.ReleaseAccepted(projectID, constants.ReopenedReason, time.Now())
	if err != nil {
		log.Printf("project reopen: project %d is open but its accepted request was not released: %v", projectID, err)
		return fmt.Errorf("failed to release accepted request: %w", err)
	}
	if released > 0 {
		s.activity.CascadeStep(CascadeProjectReopen, "accepted_request_released", models.EntityProject, projectID, projectID, actorID,
			map[string]interface{}{"count": released})
	}
	return nil
}

// Delete soft deletes an open or cancelled project
func (s *ProjectService) Delete(actor Actor, id uint64) error {
	project, err := s.find(id)
	if err != nil {
		return err
	}
	if !canManageProject(project, actor) {
		return ErrProjectPermission
	}
	if !workflow.ProjectDeletable[project.Status] {
		return ErrProjectNotDeletable
	}

	if err := s.projectRepo.SoftDelete(project.ID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}
	s.activity.Record(models.EntityProject, project.ID, project.ID, actor.ID, "deleted", nil)
	return nil
}

// Progress summarizes the tasks of a project
func (s *ProjectService) Progress(actor Actor, id uint64) (*ProjectProgress, error) {
	project, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if !isProjectParticipant(project, actor) {
		return nil, ErrNotProjectParticipant
	}

	counts, err := s.taskRepo.CountByStatus(project.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	progress := &ProjectProgress{
		ProjectID: project.ID,
		Status:    project.Status,
		ByStatus:  map[models.TaskStatus]int64{},
	}
	for _, status := range []models.TaskStatus{
		models.TaskStatusTodo,
		models.TaskStatusInProgress,
		models.TaskStatusReview,
		models.TaskStatusCompleted,
	} {
		progress.ByStatus[status] = counts[status]
		progress.TotalTasks += counts[status]
	}
	progress.CompletedTasks = counts[models.TaskStatusCompleted]
	if progress.TotalTasks > 0 {
		progress.PercentComplete = float64(progress.CompletedTasks) * 100 / float64(progress.TotalTasks)
	}
	return progress, nil
}

// Activity returns the audit trail of a project
func (s *ProjectService) Activity(actor Actor, id uint64, page, pageSize int) ([]models.ActivityEvent, int64, error) {
	project, err := s.find(id)
	if err != nil {
		return nil, 0, err
	}
	if !isProjectParticipant(project, actor) {
		return nil, 0, ErrNotProjectParticipant
	}
	return s.activity.ListForProject(project.ID, page, pageSize)
}

// CompleteIfAllTasksDone completes an in-progress project once every task is
// completed. It reports whether the project was completed.
func (s *ProjectService) CompleteIfAllTasksDone(projectID, actorID uint64) (bool, error) {
	project, err := s.find(projectID)
	if err != nil {
		return false, err
	}
	if project.Status != models.ProjectStatusInProgress {
		return false, nil
	}

	counts, err := s.taskRepo.CountByStatus(project.ID)
	if err != nil {
		return false, fmt.Errorf("failed to count tasks: %w", err)
	}
	var total int64
	for _, n := range counts {
		total += n
	}
	if total == 0 || counts[models.TaskStatusCompleted] != total {
		return false, nil
	}

	s.applyProjectStatus(project, models.ProjectStatusCompleted, time.Now())
	if err := s.projectRepo.Update(project); err != nil {
		return false, fmt.Errorf("failed to complete project: %w", err)
	}
	s.activity.Transition(models.EntityProject, project.ID, project.ID, actorID,
		string(models.ProjectStatusInProgress), string(models.ProjectStatusCompleted))
	s.activity.CascadeStep(CascadeAutoCompletion, "project_completed", models.EntityProject, project.ID, project.ID, actorID, nil)

	return true, nil
}

// startProject promotes an assigned project to in progress.
func (s *ProjectService) startProject(project *models.Project, actorID uint64, cascade string) error {
	s.applyProjectStatus(project, models.ProjectStatusInProgress, time.Now())
	if err := s.projectRepo.Update(project); err != nil {
		return fmt.Errorf("failed to start project: %w", err)
	}
	s.activity.Transition(models.EntityProject, project.ID, project.ID, actorID,
		string(models.ProjectStatusAssigned), string(models.ProjectStatusInProgress))
	s.activity.CascadeStep(cascade, "project_started", models.EntityProject, project.ID, project.ID, actorID, nil)
	return nil
}
