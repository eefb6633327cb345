package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cliplab/annotation-backend/internal/pkg/apperr"
	"github.com/cliplab/annotation-backend/internal/platform/logger"
	"github.com/cliplab/annotation-backend/internal/repos"
	"github.com/cliplab/annotation-backend/internal/types"
)

type AnnotationCreateInput struct {
	StartTimestamp string  `json:"start_timestamp"`
	EndTimestamp   string  `json:"end_timestamp"`
	Notes          *string `json:"notes"`
}

// AnnotationUpdateInput is a partial patch; only non-nil fields are applied.
// Unknown JSON keys are dropped at decode time.
type AnnotationUpdateInput struct {
	StartTimestamp  *string         `json:"start_timestamp"`
	EndTimestamp    *string         `json:"end_timestamp"`
	Notes           *string         `json:"notes"`
	IsAnnotated     *string         `json:"is_annotated"`
	AnnotationType  *string         `json:"annotation_type"`
	BoundingBoxes   json.RawMessage `json:"bounding_boxes"`
	FrameNumber     *int            `json:"frame_number"`
	ObjectCount     *int            `json:"object_count"`
	ObjectType      *string         `json:"object_type"`
	ConfidenceScore *float64        `json:"confidence_score"`
}

type AnnotationService interface {
	Create(ctx context.Context, tx *gorm.DB, queryID uuid.UUID, in AnnotationCreateInput) (*types.Annotation, error)
	ListByQuery(ctx context.Context, tx *gorm.DB, queryID uuid.UUID) ([]*types.Annotation, error)
	Get(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID) (*types.Annotation, error)
	Update(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID, in AnnotationUpdateInput) (*types.Annotation, error)
	Delete(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID) error
}

type annotationService struct {
	db          *gorm.DB
	log         *logger.Logger
	queries     repos.QueryRepo
	annotations repos.AnnotationRepo
}

func NewAnnotationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	queries repos.QueryRepo,
	annotations repos.AnnotationRepo,
) AnnotationService {
	return &annotationService{
		db:          db,
		log:         baseLog.With("service", "AnnotationService"),
		queries:     queries,
		annotations: annotations,
	}
}

func (s *annotationService) Create(ctx context.Context, tx *gorm.DB, queryID uuid.UUID, in AnnotationCreateInput) (*types.Annotation, error) {
	if in.Notes == nil {
		return nil, apperr.Missing("notes")
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var created *types.Annotation
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		queries, err := s.queries.GetByIDs(ctx, txx, []uuid.UUID{queryID})
		if err != nil {
			return apperr.Store(fmt.Errorf("load query: %w", err))
		}
		if len(queries) == 0 {
			return apperr.NotFound("query", queryID)
		}

		a := &types.Annotation{
			ID:             uuid.New(),
			QueryID:        queryID,
			StartTimestamp: timestampOrDefault(in.StartTimestamp),
			EndTimestamp:   timestampOrDefault(in.EndTimestamp),
			Notes:          *in.Notes,
			IsAnnotated:    types.AnnotationFlagUnannotated,
		}
		if _, err := s.annotations.Create(ctx, txx, []*types.Annotation{a}); err != nil {
			return apperr.Store(fmt.Errorf("create annotation: %w", err))
		}
		created = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *annotationService) ListByQuery(ctx context.Context, tx *gorm.DB, queryID uuid.UUID) ([]*types.Annotation, error) {
	queries, err := s.queries.GetByIDs(ctx, tx, []uuid.UUID{queryID})
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("load query: %w", err))
	}
	if len(queries) == 0 {
		return nil, apperr.NotFound("query", queryID)
	}
	rows, err := s.annotations.GetByQueryIDs(ctx, tx, []uuid.UUID{queryID})
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("list annotations: %w", err))
	}
	return rows, nil
}

func (s *annotationService) Get(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID) (*types.Annotation, error) {
	rows, err := s.annotations.GetByIDs(ctx, tx, []uuid.UUID{annotationID})
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("load annotation: %w", err))
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("annotation", annotationID)
	}
	return rows[0], nil
}

func (s *annotationService) Update(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID, in AnnotationUpdateInput) (*types.Annotation, error) {
	fields := map[string]interface{}{}
	if in.StartTimestamp != nil {
		fields["start_timestamp"] = timestampOrDefault(*in.StartTimestamp)
	}
	if in.EndTimestamp != nil {
		fields["end_timestamp"] = timestampOrDefault(*in.EndTimestamp)
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if in.IsAnnotated != nil {
		flag := types.AnnotationFlag(*in.IsAnnotated)
		if !flag.Valid() {
			return nil, apperr.Newf(apperr.KindInvalidEnum, "is_annotated",
				"is_annotated must be %q or %q", types.AnnotationFlagAnnotated, types.AnnotationFlagUnannotated)
		}
		fields["is_annotated"] = string(flag)
	}
	if in.AnnotationType != nil {
		at := types.AnnotationType(*in.AnnotationType)
		if !at.Valid() {
			return nil, apperr.Newf(apperr.KindInvalidEnum, "annotation_type",
				"annotation_type must be %q, %q, or %q",
				types.AnnotationTypeGrounding, types.AnnotationTypeCounting, types.AnnotationTypeBoth)
		}
		fields["annotation_type"] = string(at)
	}
	if len(in.BoundingBoxes) > 0 {
		if !json.Valid(in.BoundingBoxes) {
			return nil, apperr.Newf(apperr.KindInvalidEnum, "bounding_boxes", "bounding_boxes must be valid JSON")
		}
		fields["bounding_boxes"] = datatypes.JSON(in.BoundingBoxes)
	}
	if in.FrameNumber != nil {
		fields["frame_number"] = *in.FrameNumber
	}
	if in.ObjectCount != nil {
		fields["object_count"] = *in.ObjectCount
	}
	if in.ObjectType != nil {
		fields["object_type"] = strings.TrimSpace(*in.ObjectType)
	}
	if in.ConfidenceScore != nil {
		fields["confidence_score"] = *in.ConfidenceScore
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var updated *types.Annotation
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if _, err := s.Get(ctx, txx, annotationID); err != nil {
			return err
		}
		if err := s.annotations.UpdateFields(ctx, txx, annotationID, fields); err != nil {
			return apperr.Store(fmt.Errorf("update annotation: %w", err))
		}
		var err error
		updated, err = s.Get(ctx, txx, annotationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *annotationService) Delete(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if _, err := s.Get(ctx, txx, annotationID); err != nil {
			return err
		}
		if err := s.annotations.DeleteByIDs(ctx, txx, []uuid.UUID{annotationID}); err != nil {
			return apperr.Store(fmt.Errorf("delete annotation: %w", err))
		}
		return nil
	})
}
