package database

import (
	"fmt"

	"gorm.io/gorm"
)

// AddIndexes adds the query-critical indexes that AutoMigrate does not
// derive from the model tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Project list ordering and filters
		{"projects", "idx_projects_status", "status"},
		{"projects", "idx_projects_created_at", "created_at"},
		{"projects", "idx_projects_due_date", "due_date"},

		// Membership lookups back the visibility scope
		{"project_members", "idx_project_members_project_id", "project_id"},
		{"project_members", "idx_project_members_user_id", "user_id"},

		// Task list ordering, filters and stats grouping
		{"tasks", "idx_tasks_status", "status"},
		{"tasks", "idx_tasks_priority", "priority"},
		{"tasks", "idx_tasks_created_at", "created_at"},
		{"tasks", "idx_tasks_due_date", "due_date"},
	}

	for _, idx := range indexes {
		var count int64
		err := db.Raw(`
			SELECT COUNT(*)
			FROM pg_indexes
			WHERE tablename = ? AND indexname = ?
		`, idx.table, idx.name).Count(&count).Error

		if err != nil {
			return fmt.Errorf("failed to check index %s: %w", idx.name, err)
		}

		if count > 0 {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}
	}

	return nil
}
