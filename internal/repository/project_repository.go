package repository

import (
	"strings"
	"time"

	"github.com/yukikurage/task-colab-api/internal/database"
	"github.com/yukikurage/task-colab-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// projectSortColumns whitelists the sortable project columns
var projectSortColumns = map[string]string{
	"created_at": "projects.created_at",
	"deadline":   "projects.timeline_deadline",
	"budget":     "projects.budget_max",
	"applicants": "projects.applicants_count",
}

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(project *models.Project) error {
	return r.db.Omit(clause.Associations).Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db.Scopes(database.NotDeleted)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

// List retrieves projects with filtering and pagination
func (r *GormProjectRepository) List(filter ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project

	query := r.db.Model(&models.Project{}).Scopes(database.NotDeleted)

	if len(filter.Statuses) > 0 {
		query = query.Where("projects.status IN ?", filter.Statuses)
	}
	if filter.Category != "" {
		query = query.Where("projects.category = ?", filter.Category)
	}
	if filter.Priority != nil {
		query = query.Where("projects.priority = ?", *filter.Priority)
	}
	if filter.BuyerID != nil {
		query = query.Where("projects.buyer_id = ?", *filter.BuyerID)
	}
	if filter.AssignedToID != nil {
		query = query.Where("projects.assigned_to_id = ?", *filter.AssignedToID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(strings.ToLower(search))
		query = query.Where("(LOWER(projects.title) LIKE ? OR LOWER(projects.description) LIKE ?)", pattern, pattern)
	}
	// A project matches a budget range when the two ranges overlap.
	if filter.MinBudget != nil {
		query = query.Where("projects.budget_max >= ?", *filter.MinBudget)
	}
	if filter.MaxBudget != nil {
		query = query.Where("projects.budget_min <= ?", *filter.MaxBudget)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := projectSortColumns[filter.SortBy]
	if !ok {
		column = projectSortColumns["created_at"]
	}
	direction := " DESC"
	if filter.SortAsc {
		direction = " ASC"
	}

	if err := query.Order(column + direction).
		Order("projects.id DESC").
		Scopes(pageScope(filter.Page, filter.PageSize)).
		Preload("Buyer").
		Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(project *models.Project) error {
	return r.db.Omit(clause.Associations).Save(project).Error
}

// AdjustApplicants adds delta to the applicants counter
func (r *GormProjectRepository) AdjustApplicants(id uint64, delta int) error {
	query := r.db.Model(&models.Project{}).Where("id = ?", id)
	if delta < 0 {
		query = query.Where("applicants_count >= ?", -delta)
	}
	return query.UpdateColumn("applicants_count", gorm.Expr("applicants_count + ?", delta)).Error
}

// SoftDelete marks a project as deleted
func (r *GormProjectRepository) SoftDelete(id uint64, at time.Time) error {
	return softDelete(r.db, &models.Project{}, id, at)
}
