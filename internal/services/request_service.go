package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/task-colab-api/internal/constants"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/repository"
	"github.com/yukikurage/task-colab-api/internal/workflow"
	"gorm.io/gorm"
)

var (
	ErrRequestNotFound      = newError(KindNotFound, "request not found")
	ErrOnlySolversApply     = newError(KindForbidden, "only problem solvers can apply to projects")
	ErrDuplicateRequest     = newError(KindConflict, "you have already applied to this project")
	ErrCoverLetterLength    = newError(KindBadRequest, fmt.Sprintf("cover letter must be between %d and %d characters", constants.MinCoverLetterLength, constants.MaxCoverLetterLength))
	ErrInvalidProposal      = newError(KindBadRequest, "proposed budget and timeline must be positive")
	ErrRequestPermission    = newError(KindForbidden, "you do not have access to this request")
	ErrInvalidRequestStatus = newError(KindBadRequest, "invalid request status")
)

// RequestService handles applications to projects and the acceptance cascade
type RequestService struct {
	requestRepo repository.RequestRepository
	projectRepo repository.ProjectRepository
	activity    *ActivityService
}

// NewRequestService creates a new RequestService
func NewRequestService(requestRepo repository.RequestRepository, projectRepo repository.ProjectRepository, activity *ActivityService) *RequestService {
	return &RequestService{
		requestRepo: requestRepo,
		projectRepo: projectRepo,
		activity:    activity,
	}
}

// CreateRequestInput represents input for applying to a project
type CreateRequestInput struct {
	ProjectID            uint64
	CoverLetter          string
	ProposedBudget       *float64
	ProposedTimelineDays *int
}

// ListRequestsInput represents filters for listing requests
type ListRequestsInput struct {
	Status   *models.RequestStatus
	Page     int
	PageSize int
}

// requestRelation resolves the actor's workflow parties for a request.
func requestRelation(request *models.Request, project *models.Project, actor Actor) workflow.Relation {
	return workflow.Relation{
		IsBuyer:     project.BuyerID == actor.ID,
		IsApplicant: request.SolverID == actor.ID,
		IsAdmin:     actor.IsAdmin(),
	}
}

// Create applies the actor to an open project
func (s *RequestService) Create(actor Actor, input CreateRequestInput) (*models.Request, error) {
	if !actor.IsProblemSolver() {
		return nil, ErrOnlySolversApply
	}

	coverLetter := strings.TrimSpace(input.CoverLetter)
	if n := utf8.RuneCountInString(coverLetter); n < constants.MinCoverLetterLength || n > constants.MaxCoverLetterLength {
		return nil, ErrCoverLetterLength
	}
	if (input.ProposedBudget != nil && *input.ProposedBudget < 0) ||
		(input.ProposedTimelineDays != nil && *input.ProposedTimelineDays < 1) {
		return nil, ErrInvalidProposal
	}

	project, err := s.findProject(input.ProjectID)
	if err != nil {
		return nil, err
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, ErrProjectNotOpen
	}

	exists, err := s.requestRepo.ExistsActive(project.ID, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing requests: %w", err)
	}
	if exists {
		return nil, ErrDuplicateRequest
	}

	request := &models.Request{
		ProjectID:            project.ID,
		SolverID:             actor.ID,
		CoverLetter:          coverLetter,
		ProposedBudget:       input.ProposedBudget,
		ProposedTimelineDays: input.ProposedTimelineDays,
		Status:               models.RequestStatusPending,
	}
	if err := s.requestRepo.Create(request); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if err := s.projectRepo.AdjustApplicants(project.ID, 1); err != nil {
		return nil, fmt.Errorf("failed to update applicants count: %w", err)
	}
	s.activity.Record(models.EntityRequest, request.ID, project.ID, actor.ID, "created", nil)

	return s.find(request.ID)
}

// Get returns a request visible to its applicant, the project buyer or an admin
func (s *RequestService) Get(actor Actor, id uint64) (*models.Request, error) {
	request, err := s.find(id)
	if err != nil {
		return nil, err
	}
	if request.SolverID != actor.ID && request.Project.BuyerID != actor.ID && !actor.IsAdmin() {
		return nil, ErrRequestPermission
	}
	return request, nil
}

// ListForProject returns the requests of a project for its buyer or an admin
func (s *RequestService) ListForProject(actor Actor, projectID uint64, input ListRequestsInput) ([]models.Request, int64, error) {
	project, err := s.findProject(projectID)
	if err != nil {
		return nil, 0, err
	}
	if !canManageProject(project, actor) {
		return nil, 0, ErrProjectPermission
	}

	return s.list(repository.RequestFilter{ProjectID: &project.ID}, input)
}

// ListMine returns the actor's own requests
func (s *RequestService) ListMine(actor Actor, input ListRequestsInput) ([]models.Request, int64, error) {
	return s.list(repository.RequestFilter{SolverID: &actor.ID}, input)
}

func (s *RequestService) list(filter repository.RequestFilter, input ListRequestsInput) ([]models.Request, int64, error) {
	if input.Status != nil && !workflow.RequestTransitions.Valid(*input.Status) {
		return nil, 0, ErrInvalidRequestStatus
	}
	filter.Status = input.Status
	filter.Page = input.Page
	filter.PageSize = input.PageSize

	requests, total, err := s.requestRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list requests: %w", err)
	}
	return requests, total, nil
}

// Accept runs the acceptance cascade: the request is accepted, the project is
// assigned to its solver and every other pending request is rejected. The
// steps are independent writes; a failure leaves the earlier steps in place.
func (s *RequestService) Accept(actor Actor, id uint64) (*models.Request, error) {
	request, project, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if err := workflow.RequestTransitions.Check(request.Status, models.RequestStatusAccepted, requestRelation(request, project, actor)); err != nil {
		return nil, transitionError("request", err)
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, ErrProjectNotOpen
	}

	now := time.Now()

	request.Status = models.RequestStatusAccepted
	request.RespondedAt = &now
	if err := s.requestRepo.Update(request); err != nil {
		return nil, fmt.Errorf("failed to accept request: %w", err)
	}
	s.activity.Transition(models.EntityRequest, request.ID, project.ID, actor.ID,
		string(models.RequestStatusPending), string(models.RequestStatusAccepted))
	s.activity.CascadeStep(CascadeRequestAcceptance, "request_accepted", models.EntityRequest, request.ID, project.ID, actor.ID, nil)

	project.AssignedToID = &request.SolverID
	project.Status = models.ProjectStatusAssigned
	if err := s.projectRepo.Update(project); err != nil {
		log.Printf("request acceptance: request %d accepted but project %d was not assigned: %v", request.ID, project.ID, err)
		return nil, fmt.Errorf("failed to assign project: %w", err)
	}
	s.activity.Transition(models.EntityProject, project.ID, project.ID, actor.ID,
		string(models.ProjectStatusOpen), string(models.ProjectStatusAssigned))
	s.activity.CascadeStep(CascadeRequestAcceptance, "project_assigned", models.EntityProject, project.ID, project.ID, actor.ID,
		map[string]interface{}{"solver_id": request.SolverID})

	rejected, err := s.requestRepo.RejectPendingExcept(project.ID, request.ID, constants.AutoRejectionReason, now)
	if err != nil {
		log.Printf("request acceptance: project %d assigned but sibling requests were not rejected: %v", project.ID, err)
		return nil, fmt.Errorf("failed to reject other requests: %w", err)
	}
	s.activity.CascadeStep(CascadeRequestAcceptance, "siblings_rejected", models.EntityProject, project.ID, project.ID, actor.ID,
		map[string]interface{}{"count": rejected})

	return s.find(request.ID)
}

// Reject declines a pending request
func (s *RequestService) Reject(actor Actor, id uint64, reason string) (*models.Request, error) {
	request, project, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if err := workflow.RequestTransitions.Check(request.Status, models.RequestStatusRejected, requestRelation(request, project, actor)); err != nil {
		return nil, transitionError("request", err)
	}

	now := time.Now()
	request.Status = models.RequestStatusRejected
	request.RejectionReason = strings.TrimSpace(reason)
	request.RespondedAt = &now
	if err := s.requestRepo.Update(request); err != nil {
		return nil, fmt.Errorf("failed to reject request: %w", err)
	}
	s.activity.Transition(models.EntityRequest, request.ID, project.ID, actor.ID,
		string(models.RequestStatusPending), string(models.RequestStatusRejected))

	return s.find(request.ID)
}

// Withdraw cancels the actor's own pending request
func (s *RequestService) Withdraw(actor Actor, id uint64) (*models.Request, error) {
	request, project, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if err := workflow.RequestTransitions.Check(request.Status, models.RequestStatusWithdrawn, requestRelation(request, project, actor)); err != nil {
		return nil, transitionError("request", err)
	}

	now := time.Now()
	request.Status = models.RequestStatusWithdrawn
	request.RespondedAt = &now
	if err := s.requestRepo.Update(request); err != nil {
		return nil, fmt.Errorf("failed to withdraw request: %w", err)
	}
	if err := s.projectRepo.AdjustApplicants(project.ID, -1); err != nil {
		return nil, fmt.Errorf("failed to update applicants count: %w", err)
	}
	s.activity.Transition(models.EntityRequest, request.ID, project.ID, actor.ID,
		string(models.RequestStatusPending), string(models.RequestStatusWithdrawn))

	return s.find(request.ID)
}

// load fetches a request together with its project.
func (s *RequestService) load(id uint64) (*models.Request, *models.Project, error) {
	request, err := s.requestRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrRequestNotFound
		}
		return nil, nil, fmt.Errorf("failed to find request: %w", err)
	}

	project, err := s.findProject(request.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return request, project, nil
}

func (s *RequestService) find(id uint64) (*models.Request, error) {
	request, err := s.requestRepo.FindByID(id, "Project", "Solver")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to find request: %w", err)
	}
	return request, nil
}

func (s *RequestService) findProject(id uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}
