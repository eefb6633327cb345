package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliplab/annotation-backend/internal/platform/logger"
	"github.com/cliplab/annotation-backend/internal/types"
)

type QueryRepo interface {
	Create(ctx context.Context, tx *gorm.DB, queries []*types.Query) ([]*types.Query, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, queryIDs []uuid.UUID) ([]*types.Query, error)
	GetByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) ([]*types.Query, error)
	// GetByVideoAndText returns the query under videoID whose text exactly
	// matches text, or nil when none exists. Callers trim before lookup.
	GetByVideoAndText(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, text string) (*types.Query, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, queryID uuid.UUID, fields map[string]interface{}) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, queryIDs []uuid.UUID) error
	DeleteByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) error
}

type queryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQueryRepo(db *gorm.DB, baseLog *logger.Logger) QueryRepo {
	repoLog := baseLog.With("repo", "QueryRepo")
	return &queryRepo{db: db, log: repoLog}
}

func (r *queryRepo) Create(ctx context.Context, tx *gorm.DB, queries []*types.Query) ([]*types.Query, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(queries) == 0 {
		return []*types.Query{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&queries).Error; err != nil {
		return nil, err
	}
	return queries, nil
}

func (r *queryRepo) GetByIDs(ctx context.Context, tx *gorm.DB, queryIDs []uuid.UUID) ([]*types.Query, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Query
	if len(queryIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", queryIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *queryRepo) GetByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) ([]*types.Query, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Query
	if len(videoIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("video_id IN ?", videoIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *queryRepo) GetByVideoAndText(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, text string) (*types.Query, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Query
	if err := transaction.WithContext(ctx).
		Where("video_id = ? AND query_text = ?", videoID, text).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *queryRepo) UpdateFields(ctx context.Context, tx *gorm.DB, queryID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Query{}).
		Where("id = ?", queryID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *queryRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, queryIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(queryIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", queryIDs).
		Delete(&types.Query{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *queryRepo) DeleteByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(videoIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("video_id IN ?", videoIDs).
		Delete(&types.Query{}).Error; err != nil {
		return err
	}
	return nil
}
