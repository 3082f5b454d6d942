package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// compositeIndexes are the multi-column indexes the list queries rely on.
// Single-column indexes come from the model tags.
var compositeIndexes = []struct {
	table   string
	name    string
	columns string
}{
	{"projects", "idx_projects_status_deleted", "status, is_deleted"},
	{"projects", "idx_projects_buyer_status", "buyer_id, status"},
	{"requests", "idx_requests_project_solver", "project_id, solver_id"},
	{"requests", "idx_requests_project_status", "project_id, status"},
	{"tasks", "idx_tasks_project_order", "project_id, sort_order"},
	{"submissions", "idx_submissions_task_version", "task_id, version"},
	{"messages", "idx_messages_conversation_created", "conversation_id, created_at"},
	{"activity_events", "idx_activity_project_created", "project_id, created_at"},
}

// AddIndexes creates the composite indexes that do not exist yet.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
