package services

import (
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"strings"
	"time"

	"github.com/yukikurage/task-colab-api/internal/constants"
	"github.com/yukikurage/task-colab-api/internal/models"
	"github.com/yukikurage/task-colab-api/internal/repository"
	"github.com/yukikurage/task-colab-api/internal/storage"
	"github.com/yukikurage/task-colab-api/internal/workflow"
	"gorm.io/gorm"
)

var (
	ErrSubmissionNotFound          = newError(KindNotFound, "submission not found")
	ErrFileRequired                = newError(KindBadRequest, "a ZIP file is required")
	ErrInvalidFileType             = newError(KindBadRequest, "only ZIP files are allowed")
	ErrFileTooLarge                = newError(KindBadRequest, "file must not exceed 50MB")
	ErrTaskNotAcceptingSubmissions = newError(KindBadRequest, "submissions can only be created for tasks in todo or in progress")
	ErrInvalidReviewStatus         = newError(KindBadRequest, "review status must be accepted, rejected or revision_requested")
	ErrSubmissionPermission        = newError(KindForbidden, "only the submitter or an admin can perform this action")
	ErrSubmissionNotPending        = newError(KindBadRequest, "only pending submissions can be deleted")
	ErrPendingSubmissionExists     = newError(KindConflict, "the task already has a submission awaiting review")
)

// zipMimeTypes are the accepted submission archive types.
var zipMimeTypes = map[string]bool{
	"application/zip":              true,
	"application/x-zip-compressed": true,
	"application/x-zip":            true,
}

// submissionFolder is the storage folder of submission archives.
const submissionFolder = "submissions"

// ValidateSubmissionFile checks the archive size and type
func ValidateSubmissionFile(mimeType string, size int64) error {
	if size > constants.MaxSubmissionFileSize {
		return ErrFileTooLarge
	}
	if !zipMimeTypes[strings.ToLower(mimeType)] {
		return ErrInvalidFileType
	}
	return nil
}

// SubmissionService handles deliverables and the review cascade
type SubmissionService struct {
	submissionRepo repository.SubmissionRepository
	tasks          *TaskService
	projects       *ProjectService
	store          storage.Store
	activity       *ActivityService
}

// NewSubmissionService creates a new SubmissionService
func NewSubmissionService(submissionRepo repository.SubmissionRepository, tasks *TaskService, projects *ProjectService, store storage.Store, activity *ActivityService) *SubmissionService {
	return &SubmissionService{
		submissionRepo: submissionRepo,
		tasks:          tasks,
		projects:       projects,
		store:          store,
		activity:       activity,
	}
}

// CreateSubmissionInput represents input for submitting a deliverable
type CreateSubmissionInput struct {
	TaskID      uint64
	Description string
	File        *multipart.FileHeader
}

// ReviewSubmissionInput represents a buyer's review decision
type ReviewSubmissionInput struct {
	Status   models.SubmissionStatus
	Feedback string
}

// ListSubmissionsInput represents filters for listing submissions
type ListSubmissionsInput struct {
	Status   *models.SubmissionStatus
	Page     int
	PageSize int
}

// Create stores a new version of a task's deliverable and moves the task to review
func (s *SubmissionService) Create(actor Actor, input CreateSubmissionInput) (*models.Submission, error) {
	if input.File == nil {
		return nil, ErrFileRequired
	}
	if err := ValidateSubmissionFile(storage.DetectMimeType(input.File), input.File.Size); err != nil {
		return nil, err
	}

	task, project, err := s.tasks.load(input.TaskID)
	if err != nil {
		return nil, err
	}
	if !project.IsAssignedTo(actor.ID) {
		return nil, ErrNotAssignedSolver
	}
	if !workflow.TaskAcceptsSubmissions[task.Status] {
		return nil, ErrTaskNotAcceptingSubmissions
	}
	pending, err := s.submissionRepo.CountForTask(task.ID, models.SubmissionStatusPending, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check pending submissions: %w", err)
	}
	if pending > 0 {
		return nil, ErrPendingSubmissionExists
	}

	version, err := s.submissionRepo.MaxVersion(task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute submission version: %w", err)
	}

	file, err := s.store.Save(fmt.Sprintf("%s/%d", submissionFolder, project.ID), input.File)
	if err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	submission := &models.Submission{
		TaskID:      task.ID,
		ProjectID:   project.ID,
		SolverID:    actor.ID,
		File:        file,
		Description: strings.TrimSpace(input.Description),
		Status:      models.SubmissionStatusPending,
		Version:     version + 1,
	}
	if err := s.submissionRepo.Create(submission); err != nil {
		if rmErr := s.store.Remove(file); rmErr != nil {
			log.Printf("submission: failed to remove orphaned file %s: %v", file.URL, rmErr)
		}
		return nil, fmt.Errorf("failed to create submission: %w", err)
	}
	s.activity.Record(models.EntitySubmission, submission.ID, project.ID, actor.ID, "created",
		map[string]interface{}{"version": submission.Version})

	if err := s.tasks.setStatus(task, models.TaskStatusReview, actor.ID); err != nil {
		log.Printf("submission: submission %d created but task %d was not moved to review: %v", submission.ID, task.ID, err)
		return nil, err
	}
	s.activity.CascadeStep(CascadeSubmissionCreate, "task_in_review", models.EntityTask, task.ID, project.ID, actor.ID, nil)

	return s.find(submission.ID)
}

// Review records the buyer's decision once and cascades it to the task and,
// on acceptance of the last open task, to the project.
func (s *SubmissionService) Review(actor Actor, id uint64, input ReviewSubmissionInput) (*models.Submission, error) {
	taskStatus, ok := workflow.TaskStatusAfterReview[input.Status]
	if !ok {
		return nil, ErrInvalidReviewStatus
	}

	submission, project, err := s.load(id)
	if err != nil {
		return nil, err
	}

	if err := workflow.SubmissionReviews.Check(submission.Status, input.Status, projectRelation(project, actor)); err != nil {
		return nil, transitionError("submission", err)
	}

	now := time.Now()
	submission.Status = input.Status
	submission.Feedback = strings.TrimSpace(input.Feedback)
	submission.ReviewedByID = &actor.ID
	submission.ReviewedAt = &now
	if err := s.submissionRepo.Update(submission); err != nil {
		return nil, fmt.Errorf("failed to review submission: %w", err)
	}
	s.activity.Transition(models.EntitySubmission, submission.ID, project.ID, actor.ID,
		string(models.SubmissionStatusPending), string(input.Status))
	s.activity.CascadeStep(CascadeSubmissionReview, "submission_reviewed", models.EntitySubmission, submission.ID, project.ID, actor.ID, nil)

	task, _, err := s.tasks.load(submission.TaskID)
	if err != nil {
		log.Printf("submission review: submission %d reviewed but its task could not be loaded: %v", submission.ID, err)
		return nil, err
	}
	if task.Status != taskStatus && task.Status != models.TaskStatusCompleted {
		if err := s.tasks.setStatus(task, taskStatus, actor.ID); err != nil {
			log.Printf("submission review: submission %d reviewed but task %d was not updated: %v", submission.ID, task.ID, err)
			return nil, err
		}
		s.activity.CascadeStep(CascadeSubmissionReview, "task_updated", models.EntityTask, task.ID, project.ID, actor.ID,
			map[string]interface{}{"status": string(taskStatus)})
	}

	if taskStatus == models.TaskStatusCompleted {
		if _, err := s.projects.CompleteIfAllTasksDone(project.ID, actor.ID); err != nil {
			log.Printf("submission review: task %d completed but project %d check failed: %v", task.ID, project.ID, err)
			return nil, err
		}
	}

	return s.find(submission.ID)
}

// Get returns a submission visible to the project's participants
func (s *SubmissionService) Get(actor Actor, id uint64) (*models.Submission, error) {
	submission, project, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if !isProjectParticipant(project, actor) && submission.SolverID != actor.ID {
		return nil, ErrNotProjectParticipant
	}
	return s.find(submission.ID)
}

// ListForTask returns the submissions of a task, newest version first
func (s *SubmissionService) ListForTask(actor Actor, taskID uint64, input ListSubmissionsInput) ([]models.Submission, int64, error) {
	task, project, err := s.tasks.load(taskID)
	if err != nil {
		return nil, 0, err
	}
	if !isProjectParticipant(project, actor) {
		return nil, 0, ErrNotProjectParticipant
	}
	return s.list(repository.SubmissionFilter{TaskID: &task.ID}, input)
}

// ListForProject returns the submissions of a project
func (s *SubmissionService) ListForProject(actor Actor, projectID uint64, input ListSubmissionsInput) ([]models.Submission, int64, error) {
	project, err := s.projects.find(projectID)
	if err != nil {
		return nil, 0, err
	}
	if !isProjectParticipant(project, actor) {
		return nil, 0, ErrNotProjectParticipant
	}
	return s.list(repository.SubmissionFilter{ProjectID: &project.ID}, input)
}

// ListMine returns the actor's own submissions
func (s *SubmissionService) ListMine(actor Actor, input ListSubmissionsInput) ([]models.Submission, int64, error) {
	return s.list(repository.SubmissionFilter{SolverID: &actor.ID}, input)
}

func (s *SubmissionService) list(filter repository.SubmissionFilter, input ListSubmissionsInput) ([]models.Submission, int64, error) {
	if input.Status != nil && !workflow.SubmissionReviews.Valid(*input.Status) {
		return nil, 0, wrapf(ErrValidation, "invalid submission status")
	}
	filter.Status = input.Status
	filter.Page = input.Page
	filter.PageSize = input.PageSize

	submissions, total, err := s.submissionRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list submissions: %w", err)
	}
	return submissions, total, nil
}

// Delete soft deletes a pending submission. A task left in review with no
// other pending submission goes back to in progress.
func (s *SubmissionService) Delete(actor Actor, id uint64) error {
	submission, project, err := s.load(id)
	if err != nil {
		return err
	}
	if submission.SolverID != actor.ID && !actor.IsAdmin() {
		return ErrSubmissionPermission
	}
	if submission.Status != models.SubmissionStatusPending {
		return ErrSubmissionNotPending
	}

	if err := s.submissionRepo.SoftDelete(submission.ID, time.Now()); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSubmissionNotFound
		}
		return fmt.Errorf("failed to delete submission: %w", err)
	}
	s.activity.Record(models.EntitySubmission, submission.ID, project.ID, actor.ID, "deleted", nil)

	task, _, err := s.tasks.load(submission.TaskID)
	if err != nil {
		if errors.Is(err, ErrTaskNotFound) {
			return nil
		}
		return err
	}
	if task.Status != models.TaskStatusReview {
		return nil
	}

	pending, err := s.submissionRepo.CountForTask(task.ID, models.SubmissionStatusPending, submission.ID)
	if err != nil {
		return fmt.Errorf("failed to check pending submissions: %w", err)
	}
	if pending == 0 {
		if err := s.tasks.setStatus(task, models.TaskStatusInProgress, actor.ID); err != nil {
			return err
		}
		s.activity.CascadeStep(CascadeSubmissionDelete, "task_reopened", models.EntityTask, task.ID, project.ID, actor.ID, nil)
	}
	return nil
}

// load fetches a submission together with its project.
func (s *SubmissionService) load(id uint64) (*models.Submission, *models.Project, error) {
	submission, err := s.submissionRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrSubmissionNotFound
		}
		return nil, nil, fmt.Errorf("failed to find submission: %w", err)
	}

	project, err := s.projects.find(submission.ProjectID)
	if err != nil {
		return nil, nil, err
	}
	return submission, project, nil
}

func (s *SubmissionService) find(id uint64) (*models.Submission, error) {
	submission, err := s.submissionRepo.FindByID(id, "Solver", "Task")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to find submission: %w", err)
	}
	return submission, nil
}
