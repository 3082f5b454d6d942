package services

import (
	"context"
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
	ErrTaskNotFound              = newError(KindNotFound, "task not found")
	ErrNotAssignedSolver         = newError(KindForbidden, "only the assigned problem solver can perform this action")
	ErrTaskPermission            = newError(KindForbidden, "only the assigned problem solver or an admin can modify this task")
	ErrProjectNotAcceptingTasks  = newError(KindBadRequest, "tasks can only be created while the project is assigned or in progress")
	ErrTaskCompleted             = newError(KindBadRequest, "completed tasks cannot be modified")
	ErrDueDateRequired           = newError(KindBadRequest, "due date is required")
	ErrInvalidTaskTimeline       = newError(KindBadRequest, "due date must not be before the start date")
	ErrInvalidHours              = newError(KindBadRequest, "hours cannot be negative")
	ErrInvalidTaskStatus         = newError(KindBadRequest, "invalid task status")
	ErrEmptyReorder              = newError(KindBadRequest, "at least one task order is required")
	ErrTaskNotInProject          = newError(KindBadRequest, "all tasks must belong to the project")
	ErrTaskHasAcceptedSubmission = newError(KindBadRequest, "tasks with accepted submissions cannot be deleted")
	ErrAIServiceNotConfigured    = newError(KindUnavailable, "AI service is not configured")
	ErrAINoTasksGenerated        = newError(KindBadRequest, "AI did not suggest any tasks")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo       repository.TaskRepository
	submissionRepo repository.SubmissionRepository
	projects       *ProjectService
	activity       *ActivityService
	ai             TaskSuggester
}

// NewTaskService creates a new TaskService. ai may be nil.
func NewTaskService(taskRepo repository.TaskRepository, submissionRepo repository.SubmissionRepository, projects *ProjectService, activity *ActivityService, ai TaskSuggester) *TaskService {
	return &TaskService{
		taskRepo:       taskRepo,
		submissionRepo: submissionRepo,
		projects:       projects,
		activity:       activity,
		ai:             ai,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID      uint64
	Title          string
	Description    string
	Priority       models.Priority
	StartDate      *time.Time
	DueDate        time.Time
	EstimatedHours *float64
	Order          *int
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Priority       *models.Priority
	StartDate      *time.Time
	DueDate        *time.Time
	EstimatedHours *float64
	ActualHours    *float64
}

// ReorderItem is the new order of one task
type ReorderItem struct {
	TaskID uint64
	Order  int
}

func canEditTask(project *models.Project, actor Actor) bool {
	return project.IsAssignedTo(actor.ID) || actor.IsAdmin()
}

// Create adds a task to an assigned or in-progress project. The first task on
// an assigned project starts it.
func (s *TaskService) Create(actor Actor, input CreateTaskInput) (*models.Task, error) {
	project, err := s.projects.find(input.ProjectID)
	if err != nil {
		return nil, err
	}
	if !workflow.ProjectAcceptsTasks[project.Status] {
		return nil, ErrProjectNotAcceptingTasks
	}
	if !project.IsAssignedTo(actor.ID) {
		return nil, ErrNotAssignedSolver
	}

	task := &models.Task{
		ProjectID:      project.ID,
		CreatedByID:    actor.ID,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Status:         models.TaskStatusTodo,
		Priority:       input.Priority,
		EstimatedHours: input.EstimatedHours,
		Timeline: models.TaskTimeline{
			StartDate: input.StartDate,
			DueDate:   input.DueDate,
		},
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if err := validateTask(task); err != nil {
		return nil, err
	}

	if input.Order != nil {
		task.Order = *input.Order
	} else {
		maxOrder, err := s.taskRepo.MaxOrder(project.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to compute task order: %w", err)
		}
		task.Order = maxOrder + 1
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	s.activity.Record(models.EntityTask, task.ID, project.ID, actor.ID, "created", nil)

	if project.Status == models.ProjectStatusAssigned {
		if err := s.projects.startProject(project, actor.ID, CascadeTaskCreation); err != nil {
			log.Printf("task creation: task %d created but project %d was not started: %v", task.ID, project.ID, err)
			return nil, err
		}
	}

	return s.find(task.ID)
}

func validateTask(task *models.Task) error {
	if task.Title == "" {
		return ErrTitleRequired
	}
	if !validPriorities[task.Priority] {
		return ErrInvalidPriority
	}
	if task.Timeline.DueDate.IsZero() {
		return ErrDueDateRequired
	}
	if task.Timeline.StartDate != nil && task.Timeline.DueDate.Before(*task.Timeline.StartDate) {
		return ErrInvalidTaskTimeline
	}
	if (task.EstimatedHours != nil && *task.EstimatedHours < 0) ||
		(task.ActualHours != nil && *task.ActualHours < 0) {
		return ErrInvalidHours
	}
	return nil
}

// Get returns a task visible to the project's participants
func (s *TaskService) Get(actor Actor, id uint64) (*models.Task, error) {
	task, project, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !isProjectParticipant(project, actor) {
		return nil, ErrNotProjectParticipant
	}
	return s.find(task.ID)
}

// ListForProject returns a project's tasks in display order
func (s *TaskService) ListForProject(actor Actor, projectID uint64, status *models.TaskStatus) ([]models.Task, error) {
	project, err := s.projects.find(projectID)
	if err != nil {
		return nil, err
	}
	if !isProjectParticipant(project, actor) {
		return nil, ErrNotProjectParticipant
	}
	if status != nil && !workflow.TaskTransitions.Valid(*status) {
		return nil, ErrInvalidTaskStatus
	}

	tasks, err := s.taskRepo.ListByProject(project.ID, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

// Update edits a task that is not completed
func (s *TaskService) Update(actor Actor, id uint64, input UpdateTaskInput) (*models.Task, error) {
	task, project, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !canEditTask(project, actor) {
		return nil, ErrTaskPermission
	}
	if task.Status == models.TaskStatusCompleted {
		return nil, ErrTaskCompleted
	}

	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Priority != nil {
		task.Priority = *input.Priority
	}
	if input.StartDate != nil {
		task.Timeline.StartDate = input.StartDate
	}
	if input.DueDate != nil {
		task.Timeline.DueDate = *input.DueDate
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = input.EstimatedHours
	}
	if input.ActualHours != nil {
		task.ActualHours = input.ActualHours
	}

	if err := validateTask(task); err != nil {
		return nil, err
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	s.activity.Record(models.EntityTask, task.ID, project.ID, actor.ID, "updated", nil)

	return s.find(task.ID)
}

// UpdateStatus moves a task along its lifecycle. Completing the last open
// task of an in-progress project completes the project.
func (s *TaskService) UpdateStatus(actor Actor, id uint64, target models.TaskStatus) (*models.Task, error) {
	if !workflow.TaskTransitions.Valid(target) {
		return nil, ErrInvalidTaskStatus
	}

	task, project, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if err := workflow.TaskTransitions.Check(task.Status, target, projectRelation(project, actor)); err != nil {
		return nil, transitionError("task", err)
	}

	from := task.Status
	if err := s.setStatus(task, target, actor.ID); err != nil {
		return nil, err
	}

	// Sending a task back from review is a revision request on what was submitted.
	if from == models.TaskStatusReview && target == models.TaskStatusInProgress {
		resolved, err := s.submissionRepo.ResolvePending(task.ID, models.SubmissionStatusRevisionRequested, actor.ID, time.Now())
		if err != nil {
			log.Printf("task %d returned to in progress but its pending submissions were not resolved: %v", task.ID, err)
			return nil, fmt.Errorf("failed to resolve pending submissions: %w", err)
		}
		if resolved > 0 {
			s.activity.CascadeStep(CascadeTaskReturned, "revision_requested", models.EntityTask, task.ID, project.ID, actor.ID,
				map[string]interface{}{"count": resolved})
		}
	}

	if target == models.TaskStatusCompleted {
		if _, err := s.projects.CompleteIfAllTasksDone(project.ID, actor.ID); err != nil {
			log.Printf("auto completion: task %d completed but project %d check failed: %v", task.ID, project.ID, err)
			return nil, err
		}
	}

	return s.find(task.ID)
}

// setStatus writes a task status, stamping the timestamps it implies.
func (s *TaskService) setStatus(task *models.Task, target models.TaskStatus, actorID uint64) error {
	from := task.Status
	now := time.Now()

	task.Status = target
	switch target {
	case models.TaskStatusInProgress:
		if task.Timeline.StartDate == nil {
			task.Timeline.StartDate = &now
		}
	case models.TaskStatusCompleted:
		task.CompletedAt = &now
	}

	if err := s.taskRepo.Update(task); err != nil {
		return fmt.Errorf("failed to update task status: %w", err)
	}
	s.activity.Transition(models.EntityTask, task.ID, task.ProjectID, actorID, string(from), string(target))
	return nil
}

// Reorder assigns new order values to tasks of one project
func (s *TaskService) Reorder(actor Actor, projectID uint64, items []ReorderItem) ([]models.Task, error) {
	project, err := s.projects.find(projectID)
	if err != nil {
		return nil, err
	}
	if !canEditTask(project, actor) {
		return nil, ErrTaskPermission
	}
	if len(items) == 0 {
		return nil, ErrEmptyReorder
	}

	orders := make(map[uint64]int, len(items))
	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		if _, dup := orders[item.TaskID]; dup {
			return nil, wrapf(ErrValidation, "task %d is listed more than once", item.TaskID)
		}
		orders[item.TaskID] = item.Order
		ids = append(ids, item.TaskID)
	}

	tasks, err := s.taskRepo.FindByIDs(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to find tasks: %w", err)
	}
	if len(tasks) != len(ids) {
		return nil, ErrTaskNotInProject
	}
	for _, task := range tasks {
		if task.ProjectID != project.ID {
			return nil, ErrTaskNotInProject
		}
		if task.Status == models.TaskStatusCompleted {
			return nil, wrapf(ErrTaskCompleted, "completed task %d cannot be reordered", task.ID)
		}
	}

	if err := s.taskRepo.UpdateOrders(orders); err != nil {
		return nil, fmt.Errorf("failed to reorder tasks: %w", err)
	}
	s.activity.Record(models.EntityProject, project.ID, project.ID, actor.ID, "tasks_reordered",
		map[string]interface{}{"count": len(items)})

	return s.ListForProject(actor, project.ID, nil)
}

// Delete soft deletes a task that is not completed and has no accepted submission
func (s *TaskService) Delete(actor Actor, id uint64) error {
	task, project, err := s.load(id)
	if err != nil {
		return err
	}
	if !canEditTask(project, actor) {
		return ErrTaskPermission
	}
	if task.Status == models.TaskStatusCompleted {
		return ErrTaskCompleted
	}

	accepted, err := s.submissionRepo.CountForTask(task.ID, models.SubmissionStatusAccepted, 0)
	if err != nil {
		return fmt.Errorf("failed to check submissions: %w", err)
	}
	if accepted > 0 {
		return ErrTaskHasAcceptedSubmission
	}

	if err := s.taskRepo.SoftDelete(task.ID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}
	s.activity.Record(models.EntityTask, task.ID, project.ID, actor.ID, "deleted", nil)
	return nil
}

// Suggest asks the AI service for a task breakdown of the project
func (s *TaskService) Suggest(ctx context.Context, actor Actor, projectID uint64) ([]SuggestedTask, error) {
	if s.ai == nil {
		return nil, ErrAIServiceNotConfigured
	}

	project, err := s.projects.find(projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsAssignedTo(actor.ID) {
		return nil, ErrNotAssignedSolver
	}

	suggestions, err := s.ai.SuggestTasks(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	valid := make([]SuggestedTask, 0, len(suggestions))
	for _, suggestion := range suggestions {
		suggestion.Title = strings.TrimSpace(suggestion.Title)
		if suggestion.Title == "" {
			continue
		}
		if !validPriorities[suggestion.Priority] {
			suggestion.Priority = models.PriorityMedium
		}
		valid = append(valid, suggestion)
		if len(valid) == constants.MaxAIGeneratedTasks {
			break
		}
	}
	if len(valid) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	return valid, nil
}

// load fetches a task together with its project.
func (s *TaskService) load(id uint64) (*models.Task, *models.Project, error) {
	task, err := s.taskRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTaskNotFound
		}
		return nil, nil, fmt.Errorf("failed to find task: %w", err)
	}

	project, err := s.projects.find(task.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return task, project, nil
}

func (s *TaskService) find(id uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(id, "CreatedBy")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}
