package repository

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/database"
	"github.com/yukikurage/task-colab-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSubmissionRepository is a GORM implementation of SubmissionRepository
type GormSubmissionRepository struct {
	db *gorm.DB
}

// NewSubmissionRepository creates a new SubmissionRepository
func NewSubmissionRepository(db *gorm.DB) SubmissionRepository {
	return &GormSubmissionRepository{db: db}
}

// Create creates a new submission
func (r *GormSubmissionRepository) Create(submission *models.Submission) error {
	return r.db.Omit(clause.Associations).Create(submission).Error
}

// FindByID finds a submission by ID with optional preloading
func (r *GormSubmissionRepository) FindByID(id uint64, preload ...string) (*models.Submission, error) {
	var submission models.Submission
	query := r.db.Scopes(database.NotDeleted)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&submission, id).Error; err != nil {
		return nil, err
	}

	return &submission, nil
}

// List retrieves submissions with filtering and pagination
func (r *GormSubmissionRepository) List(filter SubmissionFilter) ([]models.Submission, int64, error) {
	var submissions []models.Submission

	query := r.db.Model(&models.Submission{}).Scopes(database.NotDeleted)

	if filter.TaskID != nil {
		query = query.Where("task_id = ?", *filter.TaskID)
	}
	if filter.ProjectID != nil {
		query = query.Where("project_id = ?", *filter.ProjectID)
	}
	if filter.SolverID != nil {
		query = query.Where("solver_id = ?", *filter.SolverID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("version DESC").
		Order("created_at DESC").
		Scopes(pageScope(filter.Page, filter.PageSize)).
		Preload("Solver").
		Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

// Update updates a submission
func (r *GormSubmissionRepository) Update(submission *models.Submission) error {
	return r.db.Omit(clause.Associations).Save(submission).Error
}

// MaxVersion returns the highest version of a task's submissions. Deleted rows
// count so versions are never reused.
func (r *GormSubmissionRepository) MaxVersion(taskID uint64) (int, error) {
	var max int
	err := r.db.Model(&models.Submission{}).
		Where("task_id = ?", taskID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&max).Error
	return max, err
}

// CountForTask counts a task's submissions in a status, excluding one ID
func (r *GormSubmissionRepository) CountForTask(taskID uint64, status models.SubmissionStatus, excludeID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Submission{}).
		Scopes(database.NotDeleted).
		Where("task_id = ? AND status = ? AND id <> ?", taskID, status, excludeID).
		Count(&count).Error
	return count, err
}

// ResolvePending records a review outcome on every pending submission of a task
func (r *GormSubmissionRepository) ResolvePending(taskID uint64, status models.SubmissionStatus, reviewerID uint64, at time.Time) (int64, error) {
	result := r.db.Model(&models.Submission{}).
		Scopes(database.NotDeleted).
		Where("task_id = ? AND status = ?", taskID, models.SubmissionStatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"reviewed_by_id": reviewerID,
			"reviewed_at":    at,
		})
	return result.RowsAffected, result.Error
}

// SoftDelete marks a submission as deleted
func (r *GormSubmissionRepository) SoftDelete(id uint64, at time.Time) error {
	return softDelete(r.db, &models.Submission{}, id, at)
}
