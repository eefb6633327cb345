package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliplab/annotation-backend/internal/platform/logger"
	"github.com/cliplab/annotation-backend/internal/types"
)

type AnnotationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, annotations []*types.Annotation) ([]*types.Annotation, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, annotationIDs []uuid.UUID) ([]*types.Annotation, error)
	GetByQueryIDs(ctx context.Context, tx *gorm.DB, queryIDs []uuid.UUID) ([]*types.Annotation, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID, fields map[string]interface{}) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, annotationIDs []uuid.UUID) error
	DeleteByQueryIDs(ctx context.Context, tx *gorm.DB, queryIDs []uuid.UUID) error
	// DeleteByVideoIDs removes annotations under every query of the given
	// videos, for video-level cascades.
	DeleteByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) error
}

type annotationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnnotationRepo(db *gorm.DB, baseLog *logger.Logger) AnnotationRepo {
	repoLog := baseLog.With("repo", "AnnotationRepo")
	return &annotationRepo{db: db, log: repoLog}
}

func (r *annotationRepo) Create(ctx context.Context, tx *gorm.DB, annotations []*types.Annotation) ([]*types.Annotation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(annotations) == 0 {
		return []*types.Annotation{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&annotations).Error; err != nil {
		return nil, err
	}
	return annotations, nil
}

func (r *annotationRepo) GetByIDs(ctx context.Context, tx *gorm.DB, annotationIDs []uuid.UUID) ([]*types.Annotation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Annotation
	if len(annotationIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", annotationIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *annotationRepo) GetByQueryIDs(ctx context.Context, tx *gorm.DB, queryIDs []uuid.UUID) ([]*types.Annotation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Annotation
	if len(queryIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("query_id IN ?", queryIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *annotationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, annotationID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Annotation{}).
		Where("id = ?", annotationID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *annotationRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, annotationIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(annotationIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", annotationIDs).
		Delete(&types.Annotation{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *annotationRepo) DeleteByQueryIDs(ctx context.Context, tx *gorm.DB, queryIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(queryIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("query_id IN ?", queryIDs).
		Delete(&types.Annotation{}).Error; err != nil {
		return err
	}
	return nil
}

func (r *annotationRepo) DeleteByVideoIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(videoIDs) == 0 {
		return nil
	}

	sub := transaction.Model(&types.Query{}).Select("id").Where("video_id IN ?", videoIDs)
	if err := transaction.WithContext(ctx).
		Where("query_id IN (?)", sub).
		Delete(&types.Annotation{}).Error; err != nil {
		return err
	}
	return nil
}
