package repository

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/database"
	"github.com/yukikurage/task-colab-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormRequestRepository is a GORM implementation of RequestRepository
type GormRequestRepository struct {
	db *gorm.DB
}

// NewRequestRepository creates a new RequestRepository
func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &GormRequestRepository{db: db}
}

// Create creates a new request
func (r *GormRequestRepository) Create(request *models.Request) error {
	return r.db.Omit(clause.Associations).Create(request).Error
}

// FindByID finds a request by ID with optional preloading
func (r *GormRequestRepository) FindByID(id uint64, preload ...string) (*models.Request, error) {
	var request models.Request
	query := r.db.Scopes(database.NotDeleted)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&request, id).Error; err != nil {
		return nil, err
	}

	return &request, nil
}

// ExistsActive reports whether a non-withdrawn request exists for the pair
func (r *GormRequestRepository) ExistsActive(projectID, solverID uint64) (bool, error) {
	var count int64
	err := r.db.Model(&models.Request{}).
		Scopes(database.NotDeleted).
		Where("project_id = ? AND solver_id = ? AND status <> ?", projectID, solverID, models.RequestStatusWithdrawn).
		Count(&count).Error
	return count > 0, err
}

// List retrieves requests with filtering and pagination
func (r *GormRequestRepository) List(filter RequestFilter) ([]models.Request, int64, error) {
	var requests []models.Request

	query := r.db.Model(&models.Request{}).Scopes(database.NotDeleted)

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

	if err := query.Order("created_at DESC").
		Order("id DESC").
		Scopes(pageScope(filter.Page, filter.PageSize)).
		Preload("Solver").
		Preload("Project").
		Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

// Update updates a request
func (r *GormRequestRepository) Update(request *models.Request) error {
	return r.db.Omit(clause.Associations).Save(request).Error
}

// RejectPendingExcept rejects all pending requests of a project other than exceptID
func (r *GormRequestRepository) RejectPendingExcept(projectID, exceptID uint64, reason string, at time.Time) (int64, error) {
	result := r.db.Model(&models.Request{}).
		Scopes(database.NotDeleted).
		Where("project_id = ? AND status = ? AND id <> ?", projectID, models.RequestStatusPending, exceptID).
		Updates(map[string]interface{}{
			"status":           models.RequestStatusRejected,
			"rejection_reason": reason,
			"responded_at":     at,
		})
	return result.RowsAffected, result.Error
}

// ReleaseAccepted withdraws the accepted requests of a project that went back to open
func (r *GormRequestRepository) ReleaseAccepted(projectID uint64, reason string, at time.Time) (int64, error) {
	result := r.db.Model(&models.Request{}).
		Scopes(database.NotDeleted).
		Where("project_id = ? AND status = ?", projectID, models.RequestStatusAccepted).
		Updates(map[string]interface{}{
			"status":           models.RequestStatusWithdrawn,
			"rejection_reason": reason,
			"responded_at":     at,
		})
	return result.RowsAffected, result.Error
}
