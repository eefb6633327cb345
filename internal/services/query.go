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

type QueryCreateInput struct {
	QueryText  *string  `json:"query_text"`
	QueryTypes []string `json:"query_types"`
}

// QueryUpdateInput is a partial patch; only non-nil fields are applied.
type QueryUpdateInput struct {
	QueryText  *string   `json:"query_text"`
	QueryTypes *[]string `json:"query_types"`
}

type QueryService interface {
	Create(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, in QueryCreateInput) (*types.Query, error)
	ListByVideo(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) ([]*types.Query, error)
	Get(ctx context.Context, tx *gorm.DB, queryID uuid.UUID) (*types.Query, error)
	Update(ctx context.Context, tx *gorm.DB, queryID uuid.UUID, in QueryUpdateInput) (*types.Query, error)
	// SetStatus moves the query between unverified and verified. Applying
	// the current status again is a no-op, not an error; values outside the
	// set are rejected. Descendants are never touched.
	SetStatus(ctx context.Context, tx *gorm.DB, queryID uuid.UUID, status string) (*types.Query, error)
	// Delete removes the query and all its annotations.
	Delete(ctx context.Context, tx *gorm.DB, queryID uuid.UUID) error
}

type queryService struct {
	db          *gorm.DB
	log         *logger.Logger
	videos      repos.VideoRepo
	queries     repos.QueryRepo
	annotations repos.AnnotationRepo
}

func NewQueryService(
	db *gorm.DB,
	baseLog *logger.Logger,
	videos repos.VideoRepo,
	queries repos.QueryRepo,
	annotations repos.AnnotationRepo,
) QueryService {
	return &queryService{
		db:          db,
		log:         baseLog.With("service", "QueryService"),
		videos:      videos,
		queries:     queries,
		annotations: annotations,
	}
}

func (s *queryService) Create(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, in QueryCreateInput) (*types.Query, error) {
	if in.QueryText == nil {
		return nil, apperr.Missing("query_text")
	}
	text := strings.TrimSpace(*in.QueryText)
	if text == "" {
		return nil, apperr.Empty("query_text")
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var created *types.Query
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		videos, err := s.videos.GetByIDs(ctx, txx, []uuid.UUID{videoID})
		if err != nil {
			return apperr.Store(fmt.Errorf("load video: %w", err))
		}
		if len(videos) == 0 {
			return apperr.NotFound("video", videoID)
		}

		q := &types.Query{
			ID:         uuid.New(),
			VideoID:    videoID,
			QueryText:  text,
			Status:     types.QueryStatusUnverified,
			QueryTypes: encodeQueryTypes(in.QueryTypes),
		}
		if _, err := s.queries.Create(ctx, txx, []*types.Query{q}); err != nil {
			return apperr.Store(fmt.Errorf("create query: %w", err))
		}
		created = q
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *queryService) ListByVideo(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) ([]*types.Query, error) {
	videos, err := s.videos.GetByIDs(ctx, tx, []uuid.UUID{videoID})
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("load video: %w", err))
	}
	if len(videos) == 0 {
		return nil, apperr.NotFound("video", videoID)
	}
	rows, err := s.queries.GetByVideoIDs(ctx, tx, []uuid.UUID{videoID})
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("list queries: %w", err))
	}
	return rows, nil
}

func (s *queryService) Get(ctx context.Context, tx *gorm.DB, queryID uuid.UUID) (*types.Query, error) {
	rows, err := s.queries.GetByIDs(ctx, tx, []uuid.UUID{queryID})
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("load query: %w", err))
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("query", queryID)
	}
	return rows[0], nil
}

func (s *queryService) Update(ctx context.Context, tx *gorm.DB, queryID uuid.UUID, in QueryUpdateInput) (*types.Query, error) {
	fields := map[string]interface{}{}
	if in.QueryText != nil {
		text := strings.TrimSpace(*in.QueryText)
		if text == "" {
			return nil, apperr.Empty("query_text")
		}
		fields["query_text"] = text
	}
	if in.QueryTypes != nil {
		raw, err := json.Marshal(*in.QueryTypes)
		if err != nil {
			return nil, apperr.Newf(apperr.KindInvalidEnum, "query_types", "unencodable query_types: %v", err)
		}
		fields["query_types"] = datatypes.JSON(raw)
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var updated *types.Query
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if _, err := s.Get(ctx, txx, queryID); err != nil {
			return err
		}
		if err := s.queries.UpdateFields(ctx, txx, queryID, fields); err != nil {
			return apperr.Store(fmt.Errorf("update query: %w", err))
		}
		var err error
		updated, err = s.Get(ctx, txx, queryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *queryService) SetStatus(ctx context.Context, tx *gorm.DB, queryID uuid.UUID, status string) (*types.Query, error) {
	next := types.QueryStatus(status)
	if !next.Valid() {
		return nil, apperr.Newf(apperr.KindInvalidStatus, "status",
			"status %q is not one of [%s %s]", status, types.QueryStatusUnverified, types.QueryStatusVerified)
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var updated *types.Query
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		q, err := s.Get(ctx, txx, queryID)
		if err != nil {
			return err
		}
		if q.Status == next {
			updated = q
			return nil
		}
		if err := s.queries.UpdateFields(ctx, txx, queryID, map[string]interface{}{"status": string(next)}); err != nil {
			return apperr.Store(fmt.Errorf("set query status: %w", err))
		}
		updated, err = s.Get(ctx, txx, queryID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *queryService) Delete(ctx context.Context, tx *gorm.DB, queryID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if _, err := s.Get(ctx, txx, queryID); err != nil {
			return err
		}
		if err := s.annotations.DeleteByQueryIDs(ctx, txx, []uuid.UUID{queryID}); err != nil {
			return apperr.Store(fmt.Errorf("cascade annotations: %w", err))
		}
		if err := s.queries.DeleteByIDs(ctx, txx, []uuid.UUID{queryID}); err != nil {
			return apperr.Store(fmt.Errorf("delete query: %w", err))
		}
		return nil
	})
}
