package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliplab/annotation-backend/internal/types"
)

func SeedVideo(tb testing.TB, ctx context.Context, tx *gorm.DB, url string) *types.Video {
	tb.Helper()
	v := &types.Video{
		ID:       uuid.New(),
		URL:      url,
		Title:    "clip",
		Duration: 120,
		Status:   "pending",
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed video: %v", err)
	}
	return v
}

func SeedQuery(tb testing.TB, ctx context.Context, tx *gorm.DB, videoID uuid.UUID, text string) *types.Query {
	tb.Helper()
	q := &types.Query{
		ID:         uuid.New(),
		VideoID:    videoID,
		QueryText:  text,
		Status:     types.QueryStatusUnverified,
		QueryTypes: types.DefaultQueryTypes(),
	}
	if err := tx.WithContext(ctx).Create(q).Error; err != nil {
		tb.Fatalf("seed query: %v", err)
	}
	return q
}

func SeedAnnotation(tb testing.TB, ctx context.Context, tx *gorm.DB, queryID uuid.UUID, notes string) *types.Annotation {
	tb.Helper()
	a := &types.Annotation{
		ID:             uuid.New(),
		QueryID:        queryID,
		StartTimestamp: "00:00:01",
		EndTimestamp:   "00:00:05",
		Notes:          notes,
		IsAnnotated:    types.AnnotationFlagUnannotated,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed annotation: %v", err)
	}
	return a
}
