package repository

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/database"
	"github.com/yukikurage/task-colab-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(task *models.Task) error {
	return r.db.Omit(clause.Associations).Create(task).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.Scopes(database.NotDeleted)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByIDs finds the non-deleted tasks with the given IDs
func (r *GormTaskRepository) FindByIDs(ids []uint64) ([]models.Task, error) {
	tasks := []models.Task{}
	if len(ids) == 0 {
		return tasks, nil
	}

	err := r.db.Scopes(database.NotDeleted).
		Where("id IN ?", ids).
		Find(&tasks).Error
	return tasks, err
}

// ListByProject lists the tasks of a project ordered by their order value
func (r *GormTaskRepository) ListByProject(projectID uint64, status *models.TaskStatus) ([]models.Task, error) {
	tasks := []models.Task{}

	query := r.db.Scopes(database.NotDeleted).Where("project_id = ?", projectID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	err := query.Order("sort_order ASC").Order("id ASC").Find(&tasks).Error
	return tasks, err
}

// Update updates a task
func (r *GormTaskRepository) Update(task *models.Task) error {
	return r.db.Omit(clause.Associations).Save(task).Error
}

// MaxOrder returns the highest order value in a project
func (r *GormTaskRepository) MaxOrder(projectID uint64) (int, error) {
	var max int
	err := r.db.Model(&models.Task{}).
		Scopes(database.NotDeleted).
		Where("project_id = ?", projectID).
		Select("COALESCE(MAX(sort_order), 0)").
		Scan(&max).Error
	return max, err
}

// CountByStatus counts the tasks of a project per status
func (r *GormTaskRepository) CountByStatus(projectID uint64) (map[models.TaskStatus]int64, error) {
	var rows []struct {
		Status models.TaskStatus
		Count  int64
	}

	err := r.db.Model(&models.Task{}).
		Scopes(database.NotDeleted).
		Select("status, COUNT(*) AS count").
		Where("project_id = ?", projectID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// UpdateOrders sets the order of several tasks at once
func (r *GormTaskRepository) UpdateOrders(orders map[uint64]int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for id, order := range orders {
			if err := tx.Model(&models.Task{}).
				Where("id = ?", id).
				UpdateColumn("sort_order", order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SoftDelete marks a task as deleted
func (r *GormTaskRepository) SoftDelete(id uint64, at time.Time) error {
	return softDelete(r.db, &models.Task{}, id, at)
}
