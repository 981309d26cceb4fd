// Package gorm provides GORM-based database operations for promptlean.
package gorm

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// runMigrations runs all database migrations using gormigrate, then drops
// leftovers from obsolete schema generations. Opening an already-current
// store performs no structural change.
func runMigrations(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		// Migration 001: Core tables (users, analysis_history, execution_history)
		{
			ID: "001_core_tables",
			Migrate: func(tx *gorm.DB) error {
				// AutoMigrate creates tables with all indexes from struct tags
				if err := tx.AutoMigrate(&User{}); err != nil {
					return err
				}
				if err := tx.AutoMigrate(&AnalysisRow{}); err != nil {
					return err
				}
				return tx.AutoMigrate(&ExecutionRow{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable("users", "analysis_history", "execution_history")
			},
		},
	})

	if err := m.Migrate(); err != nil {
		return fmt.Errorf("run gormigrate migrations: %w", err)
	}

	return dropLegacyTables(db)
}

// dropLegacyTables removes tables from obsolete schema generations. Older
// builds persisted precomputed reports in usage_reports; reports are derived
// data and are computed on demand now. Runs on every open so the store
// self-heals without a separate migration tool.
func dropLegacyTables(db *gorm.DB) error {
	if db.Migrator().HasTable("usage_reports") {
		if err := db.Migrator().DropTable("usage_reports"); err != nil {
			return fmt.Errorf("drop legacy usage_reports table: %w", err)
		}
	}
	return nil
}
