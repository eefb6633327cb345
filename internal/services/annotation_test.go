package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/cliplab/annotation-backend/internal/pkg/apperr"
	"github.com/cliplab/annotation-backend/internal/repos/testutil"
	"github.com/cliplab/annotation-backend/internal/types"
)

func TestAnnotationServiceCreate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	s := newServiceStack(t, db)

	v := testutil.SeedVideo(t, ctx, tx, "https://example.com/annsvc-create.mp4")
	q := testutil.SeedQuery(t, ctx, tx, v.ID, "create target")

	if _, err := s.annotation.Create(ctx, tx, q.ID, AnnotationCreateInput{}); apperr.KindOf(err) != apperr.KindMissingField {
		t.Fatalf("missing notes: kind = %q", apperr.KindOf(err))
	}
	if _, err := s.annotation.Create(ctx, tx, uuid.New(), AnnotationCreateInput{Notes: str("x")}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown query: kind = %q", apperr.KindOf(err))
	}

	a, err := s.annotation.Create(ctx, tx, q.ID, AnnotationCreateInput{
		EndTimestamp: "00:00:30",
		Notes:        str("jump cut"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if a.StartTimestamp != "00:00:00" {
		t.Fatalf("start = %q, want default 00:00:00", a.StartTimestamp)
	}
	if a.EndTimestamp != "00:00:30" || a.Notes != "jump cut" {
		t.Fatalf("fields not stored: %+v", a)
	}
	if a.IsAnnotated != types.AnnotationFlagUnannotated {
		t.Fatalf("is_annotated = %q, want unannotated", a.IsAnnotated)
	}
}

func TestAnnotationServiceUpdate(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	s := newServiceStack(t, db)

	v := testutil.SeedVideo(t, ctx, tx, "https://example.com/annsvc-update.mp4")
	q := testutil.SeedQuery(t, ctx, tx, v.ID, "update target")
	a := testutil.SeedAnnotation(t, ctx, tx, q.ID, "before")

	if _, err := s.annotation.Update(ctx, tx, a.ID, AnnotationUpdateInput{IsAnnotated: str("done")}); apperr.KindOf(err) != apperr.KindInvalidEnum {
		t.Fatalf("bad is_annotated: kind = %q", apperr.KindOf(err))
	}
	if _, err := s.annotation.Update(ctx, tx, a.ID, AnnotationUpdateInput{AnnotationType: str("tracking")}); apperr.KindOf(err) != apperr.KindInvalidEnum {
		t.Fatalf("bad annotation_type: kind = %q", apperr.KindOf(err))
	}

	count := 3
	score := 0.92
	updated, err := s.annotation.Update(ctx, tx, a.ID, AnnotationUpdateInput{
		Notes:           str("after"),
		EndTimestamp:    str("00:01:00"),
		IsAnnotated:     str("annotated"),
		AnnotationType:  str("counting"),
		BoundingBoxes:   []byte(`[{"x":1,"y":2,"w":10,"h":10}]`),
		ObjectCount:     &count,
		ObjectType:      str(" bicycle "),
		ConfidenceScore: &score,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Notes != "after" || updated.EndTimestamp != "00:01:00" {
		t.Fatalf("patch not applied: %+v", updated)
	}
	if updated.IsAnnotated != types.AnnotationFlagAnnotated {
		t.Fatalf("is_annotated = %q", updated.IsAnnotated)
	}
	if updated.AnnotationType != types.AnnotationTypeCounting {
		t.Fatalf("annotation_type = %q", updated.AnnotationType)
	}
	if updated.ObjectType != "bicycle" {
		t.Fatalf("object_type = %q, want trimmed", updated.ObjectType)
	}
	if updated.ObjectCount == nil || *updated.ObjectCount != 3 {
		t.Fatalf("object_count = %v", updated.ObjectCount)
	}
	if updated.StartTimestamp != a.StartTimestamp {
		t.Fatalf("start changed without patch: %q", updated.StartTimestamp)
	}

	if _, err := s.annotation.Update(ctx, tx, uuid.New(), AnnotationUpdateInput{Notes: str("x")}); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("unknown annotation: kind = %q", apperr.KindOf(err))
	}
}

func TestAnnotationServiceDelete(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	s := newServiceStack(t, db)

	v := testutil.SeedVideo(t, ctx, tx, "https://example.com/annsvc-delete.mp4")
	q := testutil.SeedQuery(t, ctx, tx, v.ID, "delete target")
	a := testutil.SeedAnnotation(t, ctx, tx, q.ID, "doomed")
	keep := testutil.SeedAnnotation(t, ctx, tx, q.ID, "survivor")

	if err := s.annotation.Delete(ctx, tx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.annotation.Get(ctx, tx, a.ID); apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("annotation still readable: %v", err)
	}
	if _, err := s.annotation.Get(ctx, tx, keep.ID); err != nil {
		t.Fatalf("sibling lost: %v", err)
	}
	// Deleting the leaf never touches its parents.
	if _, err := s.query.Get(ctx, tx, q.ID); err != nil {
		t.Fatalf("query lost: %v", err)
	}
}
