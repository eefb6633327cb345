package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/cliplab/annotation-backend/internal/platform/logger"
	"github.com/cliplab/annotation-backend/internal/types"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&types.Video{},
		&types.Query{},
		&types.Annotation{},
	)
}

// MigrateLegacySchema upgrades databases written by earlier schema
// revisions:
//
//   - queries: a scalar `tag` or `query_type` column becomes `query_types`,
//     a JSON-encoded list, with existing values wrapped as one-element
//     arrays and absent values defaulting to ["negative"]
//   - queries: status values pending/finished become unverified/verified
//   - annotations: `is_annotated` is added, defaulting to unannotated
//
// All data is preserved. Safe to run multiple times; already-applied steps
// are skipped.
func MigrateLegacySchema(db *gorm.DB, log *logger.Logger) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := migrateQueriesTable(tx, log); err != nil {
			return err
		}
		if err := migrateAnnotationsTable(tx, log); err != nil {
			return err
		}
		return nil
	})
}

func migrateQueriesTable(tx *gorm.DB, log *logger.Logger) error {
	m := tx.Migrator()
	hasTag := m.HasColumn(&types.Query{}, "tag")
	hasQueryType := m.HasColumn(&types.Query{}, "query_type")
	hasQueryTypes := m.HasColumn(&types.Query{}, "query_types")

	switch {
	case hasTag:
		log.Info("Migrating legacy 'tag' column to 'query_types'")
		if err := convertScalarTypeColumn(tx, "tag", hasQueryTypes); err != nil {
			return err
		}
	case hasQueryType:
		log.Info("Migrating legacy 'query_type' column to 'query_types'")
		if err := convertScalarTypeColumn(tx, "query_type", hasQueryTypes); err != nil {
			return err
		}
	case !hasQueryTypes:
		log.Info("Adding 'query_types' column to queries")
		if err := tx.Exec(`ALTER TABLE queries ADD COLUMN query_types text DEFAULT '["negative"]'`).Error; err != nil {
			return fmt.Errorf("add query_types: %w", err)
		}
	}

	if err := tx.Exec(`UPDATE queries SET status = 'unverified' WHERE status = 'pending'`).Error; err != nil {
		return fmt.Errorf("remap pending status: %w", err)
	}
	if err := tx.Exec(`UPDATE queries SET status = 'verified' WHERE status = 'finished'`).Error; err != nil {
		return fmt.Errorf("remap finished status: %w", err)
	}
	if err := tx.Exec(`UPDATE queries SET query_types = '["negative"]' WHERE query_types IS NULL OR query_types = ''`).Error; err != nil {
		return fmt.Errorf("backfill query_types: %w", err)
	}
	return nil
}

// convertScalarTypeColumn wraps each value of a legacy scalar tag column as
// a one-element JSON array in query_types, then drops the legacy column.
// The || concat form works on both Postgres and SQLite.
func convertScalarTypeColumn(tx *gorm.DB, legacyColumn string, hasQueryTypes bool) error {
	if !hasQueryTypes {
		if err := tx.Exec(`ALTER TABLE queries ADD COLUMN query_types text DEFAULT '["negative"]'`).Error; err != nil {
			return fmt.Errorf("add query_types: %w", err)
		}
	}
	stmt := fmt.Sprintf(`UPDATE queries SET query_types = '["' || COALESCE(%s, 'negative') || '"]'`, legacyColumn)
	if err := tx.Exec(stmt).Error; err != nil {
		return fmt.Errorf("convert %s values: %w", legacyColumn, err)
	}
	if err := tx.Migrator().DropColumn(&types.Query{}, legacyColumn); err != nil {
		return fmt.Errorf("drop %s: %w", legacyColumn, err)
	}
	return nil
}

func migrateAnnotationsTable(tx *gorm.DB, log *logger.Logger) error {
	if !tx.Migrator().HasColumn(&types.Annotation{}, "is_annotated") {
		log.Info("Adding 'is_annotated' column to annotations")
		if err := tx.Exec(`ALTER TABLE annotations ADD COLUMN is_annotated varchar(20) DEFAULT 'unannotated'`).Error; err != nil {
			return fmt.Errorf("add is_annotated: %w", err)
		}
	}
	if err := tx.Exec(`UPDATE annotations SET is_annotated = 'unannotated' WHERE is_annotated IS NULL`).Error; err != nil {
		return fmt.Errorf("backfill is_annotated: %w", err)
	}
	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := MigrateLegacySchema(s.db, s.log); err != nil {
		s.log.Error("Legacy schema migration failed", "error", err)
		return err
	}
	return nil
}
