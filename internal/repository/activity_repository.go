package repository

import (
	"github.com/yukikurage/task-colab-api/internal/models"
	"gorm.io/gorm"
)

// GormActivityRepository is a GORM implementation of ActivityRepository
type GormActivityRepository struct {
	db *gorm.DB
}

// NewActivityRepository creates a new ActivityRepository
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &GormActivityRepository{db: db}
}

// Create appends an event
func (r *GormActivityRepository) Create(event *models.ActivityEvent) error {
	return r.db.Create(event).Error
}

// ListByProject lists the events of a project, newest first
func (r *GormActivityRepository) ListByProject(projectID uint64, page, pageSize int) ([]models.ActivityEvent, int64, error) {
	var events []models.ActivityEvent

	query := r.db.Model(&models.ActivityEvent{}).Where("project_id = ?", projectID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").
		Order("id DESC").
		Scopes(pageScope(page, pageSize)).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
