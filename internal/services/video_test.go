package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/cliplab/annotation-backend/internal/pkg/apperr"
	"github.com/cliplab/annotation-backend/internal/repos/testutil"
	"github.com/cliplab/annotation-backend/internal/types"
)

func TestVideoServiceUpdateValidation(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	s := newServiceStack(t, db)

	v := testutil.SeedVideo(t, ctx, tx, "https://example.com/videosvc-update.mp4")

	if _, err := s.video.Get(ctx, tx, uuid.New()); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown video: kind = %q", apperr.KindOf(err))
	}

	if _, err := s.video.Update(ctx, tx, v.ID, VideoUpdateInput{Title: str("  ")}); apperr.KindOf(err) != apperr.KindEmptyField {
		t.Fatalf("blank title: kind = %q", apperr.KindOf(err))
	}
	if _, err := s.video.Update(ctx, tx, v.ID, VideoUpdateInput{Duration: intp(0)}); apperr.KindOf(err) != apperr.KindInvalidDuration {
		t.Fatalf("zero duration: kind = %q", apperr.KindOf(err))
	}
	if _, err := s.video.SetStatus(ctx, tx, v.ID, "archived"); apperr.KindOf(err) != apperr.KindInvalidStatus {
		t.Fatalf("bad status: kind = %q", apperr.KindOf(err))
	}

	updated, err := s.video.Update(ctx, tx, v.ID, VideoUpdateInput{
		Title:     str("renamed"),
		Annotator: str("casey"),
		Duration:  intp(240),
		Status:    str("completed"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "renamed" || updated.Annotator != "casey" || updated.Duration != 240 || updated.Status != "completed" {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.URL != v.URL {
		t.Fatalf("url changed on update: %q", updated.URL)
	}
}

func TestVideoServiceDeleteCascades(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	s := newServiceStack(t, db)

	v := testutil.SeedVideo(t, ctx, tx, "https://example.com/videosvc-delete.mp4")
	q1 := testutil.SeedQuery(t, ctx, tx, v.ID, "first query")
	q2 := testutil.SeedQuery(t, ctx, tx, v.ID, "second query")
	testutil.SeedAnnotation(t, ctx, tx, q1.ID, "a")
	testutil.SeedAnnotation(t, ctx, tx, q1.ID, "b")
	testutil.SeedAnnotation(t, ctx, tx, q2.ID, "c")

	// A query on another video must survive the cascade.
	other := testutil.SeedVideo(t, ctx, tx, "https://example.com/videosvc-keep.mp4")
	keepQ := testutil.SeedQuery(t, ctx, tx, other.ID, "unrelated")
	testutil.SeedAnnotation(t, ctx, tx, keepQ.ID, "keep")

	if err := s.video.Delete(ctx, tx, v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.video.Get(ctx, tx, v.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("video still readable after delete: %v", err)
	}

	var queryCount int64
	if err := tx.WithContext(ctx).Model(&types.Query{}).Where("video_id = ?", v.ID).Count(&queryCount).Error; err != nil {
		t.Fatalf("count queries: %v", err)
	}
	if queryCount != 0 {
		t.Fatalf("orphan queries after cascade: %d", queryCount)
	}
	var annCount int64
	if err := tx.WithContext(ctx).Model(&types.Annotation{}).
		Where("query_id IN ?", []uuid.UUID{q1.ID, q2.ID}).Count(&annCount).Error; err != nil {
		t.Fatalf("count annotations: %v", err)
	}
	if annCount != 0 {
		t.Fatalf("orphan annotations after cascade: %d", annCount)
	}

	if _, err := s.query.Get(ctx, tx, keepQ.ID); err != nil {
		t.Fatalf("unrelated query lost: %v", err)
	}

	if err := s.video.Delete(ctx, tx, v.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("second delete: kind = %q", apperr.KindOf(err))
	}
}
