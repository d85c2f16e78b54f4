package database

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"
)

// AddIndexes adds the composite indexes the batch jobs and task listing rely on.
// Single-column indexes come from struct tags.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns []string
	}{
		// Listing a user's tasks by urgency
		{"tasks", "idx_tasks_user_deadline", []string{"user_id", "deadline"}},
		// Overdue sweep
		{"tasks", "idx_tasks_done_deadline", []string{"done", "deadline"}},
		// Streak sweep
		{"users", "idx_users_last_achieved_date", []string{"last_achieved_date"}},
		{"user_days_off", "idx_user_days_off_date", []string{"date"}},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, strings.Join(idx.columns, ", "))
	}

	return nil
}
