package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/cliplab/annotation-backend/internal/repos/testutil"
	"github.com/cliplab/annotation-backend/internal/types"
)

func TestAnnotationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAnnotationRepo(db, testutil.Logger(t))

	v := testutil.SeedVideo(t, ctx, tx, "https://example.com/annrepo.mp4")
	q := testutil.SeedQuery(t, ctx, tx, v.ID, "what happens at the start")

	a := &types.Annotation{
		ID:             uuid.New(),
		QueryID:        q.ID,
		StartTimestamp: "00:00:03",
		EndTimestamp:   "00:00:09",
		Notes:          "two dogs enter the frame",
		IsAnnotated:    types.AnnotationFlagUnannotated,
	}
	if _, err := repo.Create(ctx, tx, []*types.Annotation{a}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{a.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByIDs: err=%v len=%d", err, len(rows))
	}
	if rows, err := repo.GetByQueryIDs(ctx, tx, []uuid.UUID{q.ID}); err != nil || len(rows) != 1 {
		t.Fatalf("GetByQueryIDs: err=%v len=%d", err, len(rows))
	}

	if err := repo.UpdateFields(ctx, tx, a.ID, map[string]interface{}{"is_annotated": string(types.AnnotationFlagAnnotated)}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	rows, err := repo.GetByIDs(ctx, tx, []uuid.UUID{a.ID})
	if err != nil || len(rows) != 1 || rows[0].IsAnnotated != types.AnnotationFlagAnnotated {
		t.Fatalf("reload after update: err=%v rows=%v", err, rows)
	}

	// Video-level cascade target: annotations reachable through queries.
	testutil.SeedAnnotation(t, ctx, tx, q.ID, "second interval")
	if err := repo.DeleteByVideoIDs(ctx, tx, []uuid.UUID{v.ID}); err != nil {
		t.Fatalf("DeleteByVideoIDs: %v", err)
	}
	if rows, err := repo.GetByQueryIDs(ctx, tx, []uuid.UUID{q.ID}); err != nil || len(rows) != 0 {
		t.Fatalf("after DeleteByVideoIDs: err=%v len=%d", err, len(rows))
	}
}
