package db

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/cliplab/annotation-backend/internal/platform/logger"
	"github.com/cliplab/annotation-backend/internal/types"
)

// legacyDB builds a database shaped like the oldest schema revision: queries
// carry a scalar `tag` column and pending/finished statuses, annotations have
// no is_annotated column.
func legacyDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file:legacymigrate?mode=memory&cache=shared"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	stmts := []string{
		`CREATE TABLE videos (
			id text PRIMARY KEY,
			url varchar(2048) NOT NULL,
			title varchar(500) NOT NULL,
			description text,
			topic varchar(200),
			notes text,
			annotator varchar(200),
			duration integer,
			status varchar(50),
			created_at datetime,
			updated_at datetime
		)`,
		`CREATE TABLE queries (
			id text PRIMARY KEY,
			video_id text,
			query_text text,
			status varchar(50),
			tag varchar(100),
			created_at datetime,
			updated_at datetime
		)`,
		`CREATE TABLE annotations (
			id text PRIMARY KEY,
			query_id text,
			start_timestamp varchar(8),
			end_timestamp varchar(8),
			notes text,
			created_at datetime,
			updated_at datetime
		)`,
	}
	for _, stmt := range stmts {
		if err := gdb.Exec(stmt).Error; err != nil {
			t.Fatalf("create legacy table: %v", err)
		}
	}
	return gdb
}

func TestMigrateLegacySchema(t *testing.T) {
	gdb := legacyDB(t)
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}

	videoID := uuid.New()
	taggedID := uuid.New()
	untaggedID := uuid.New()
	annID := uuid.New()

	if err := gdb.Exec(
		`INSERT INTO videos (id, url, title, duration, status) VALUES (?, ?, ?, ?, ?)`,
		videoID, "https://example.com/legacy.mp4", "legacy clip", 120, "pending",
	).Error; err != nil {
		t.Fatalf("insert video: %v", err)
	}
	if err := gdb.Exec(
		`INSERT INTO queries (id, video_id, query_text, status, tag) VALUES (?, ?, ?, ?, ?)`,
		taggedID, videoID, "tagged query", "pending", "positive",
	).Error; err != nil {
		t.Fatalf("insert tagged query: %v", err)
	}
	if err := gdb.Exec(
		`INSERT INTO queries (id, video_id, query_text, status, tag) VALUES (?, ?, ?, ?, NULL)`,
		untaggedID, videoID, "untagged query", "finished",
	).Error; err != nil {
		t.Fatalf("insert untagged query: %v", err)
	}
	if err := gdb.Exec(
		`INSERT INTO annotations (id, query_id, notes) VALUES (?, ?, ?)`,
		annID, taggedID, "old row",
	).Error; err != nil {
		t.Fatalf("insert annotation: %v", err)
	}

	if err := AutoMigrateAll(gdb); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	if err := MigrateLegacySchema(gdb, log); err != nil {
		t.Fatalf("MigrateLegacySchema: %v", err)
	}

	if gdb.Migrator().HasColumn(&types.Query{}, "tag") {
		t.Fatal("tag column survived migration")
	}

	var tagged types.Query
	if err := gdb.First(&tagged, "id = ?", taggedID).Error; err != nil {
		t.Fatalf("load tagged query: %v", err)
	}
	if string(tagged.QueryTypes) != `["positive"]` {
		t.Fatalf("tagged query_types = %s, want [\"positive\"]", tagged.QueryTypes)
	}
	if tagged.Status != types.QueryStatusUnverified {
		t.Fatalf("tagged status = %q, want unverified", tagged.Status)
	}

	var untagged types.Query
	if err := gdb.First(&untagged, "id = ?", untaggedID).Error; err != nil {
		t.Fatalf("load untagged query: %v", err)
	}
	if string(untagged.QueryTypes) != `["negative"]` {
		t.Fatalf("untagged query_types = %s, want [\"negative\"]", untagged.QueryTypes)
	}
	if untagged.Status != types.QueryStatusVerified {
		t.Fatalf("untagged status = %q, want verified", untagged.Status)
	}

	var ann types.Annotation
	if err := gdb.First(&ann, "id = ?", annID).Error; err != nil {
		t.Fatalf("load annotation: %v", err)
	}
	if ann.IsAnnotated != types.AnnotationFlagUnannotated {
		t.Fatalf("is_annotated = %q, want unannotated", ann.IsAnnotated)
	}

	// Running the migration again must be a no-op.
	if err := MigrateLegacySchema(gdb, log); err != nil {
		t.Fatalf("second MigrateLegacySchema: %v", err)
	}
	var again types.Query
	if err := gdb.First(&again, "id = ?", taggedID).Error; err != nil {
		t.Fatalf("reload tagged query: %v", err)
	}
	if string(again.QueryTypes) != `["positive"]` || again.Status != types.QueryStatusUnverified {
		t.Fatalf("rerun changed data: types=%s status=%q", again.QueryTypes, again.Status)
	}
}
