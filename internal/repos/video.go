package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliplab/annotation-backend/internal/platform/logger"
	"github.com/cliplab/annotation-backend/internal/types"
)

type VideoRepo interface {
	Create(ctx context.Context, tx *gorm.DB, videos []*types.Video) ([]*types.Video, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) ([]*types.Video, error)
	// GetByURL returns the video with this exact url, or nil when none exists.
	GetByURL(ctx context.Context, tx *gorm.DB, url string) (*types.Video, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.Video, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, fields map[string]interface{}) error
	DeleteByIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) error
}

type videoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewVideoRepo(db *gorm.DB, baseLog *logger.Logger) VideoRepo {
	repoLog := baseLog.With("repo", "VideoRepo")
	return &videoRepo{db: db, log: repoLog}
}

func (r *videoRepo) Create(ctx context.Context, tx *gorm.DB, videos []*types.Video) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(videos) == 0 {
		return []*types.Video{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&videos).Error; err != nil {
		return nil, err
	}
	return videos, nil
}

func (r *videoRepo) GetByIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Video
	if len(videoIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", videoIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *videoRepo) GetByURL(ctx context.Context, tx *gorm.DB, url string) (*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Video
	if err := transaction.WithContext(ctx).
		Where("url = ?", url).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *videoRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.Video, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.Video
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *videoRepo) UpdateFields(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(fields) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Video{}).
		Where("id = ?", videoID).
		Updates(fields).Error; err != nil {
		return err
	}
	return nil
}

func (r *videoRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, videoIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(videoIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", videoIDs).
		Delete(&types.Video{}).Error; err != nil {
		return err
	}
	return nil
}
