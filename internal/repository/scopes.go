package repository

import (
	"time"

	"github.com/yukikurage/task-colab-api/internal/database"
	"github.com/yukikurage/task-colab-api/internal/utils"
	"gorm.io/gorm"
)

// pageScope applies pagination when both page and pageSize are set.
func pageScope(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || pageSize <= 0 {
			return db
		}
		return database.Paginate(utils.NewPaginationParams(page, pageSize))(db)
	}
}

// softDelete flags the row with the given ID as deleted.
func softDelete(db *gorm.DB, model interface{}, id uint64, at time.Time) error {
	result := db.Model(model).
		Scopes(database.NotDeleted).
		Where("id = ?", id).
		Updates(map[string]interface{}{"is_deleted": true, "deleted_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// likePattern builds a case-insensitive LIKE pattern for a search term.
func likePattern(search string) string {
	return "%" + search + "%"
}
