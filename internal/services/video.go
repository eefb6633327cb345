package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cliplab/annotation-backend/internal/pkg/apperr"
	"github.com/cliplab/annotation-backend/internal/platform/logger"
	"github.com/cliplab/annotation-backend/internal/repos"
	"github.com/cliplab/annotation-backend/internal/types"
)

// VideoUpdateInput is a partial patch; only non-nil fields are applied.
type VideoUpdateInput struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Topic       *string `json:"topic"`
	Notes       *string `json:"notes"`
	Annotator   *string `json:"annotator"`
	Duration    *int    `json:"duration"`
	Status      *string `json:"status"`
}

type VideoService interface {
	List(ctx context.Context, tx *gorm.DB) ([]*types.Video, error)
	Get(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) (*types.Video, error)
	Update(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, in VideoUpdateInput) (*types.Video, error)
	// SetStatus validates against the configured video status set. Video
	// status is never derived from query statuses; callers own any rollup.
	SetStatus(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, status string) (*types.Video, error)
	// Delete removes the video and cascades to all its queries and their
	// annotations in one transaction.
	Delete(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error
}

type videoService struct {
	db          *gorm.DB
	log         *logger.Logger
	videos      repos.VideoRepo
	queries     repos.QueryRepo
	annotations repos.AnnotationRepo
	statuses    VideoStatusSet
}

func NewVideoService(
	db *gorm.DB,
	baseLog *logger.Logger,
	videos repos.VideoRepo,
	queries repos.QueryRepo,
	annotations repos.AnnotationRepo,
	statuses VideoStatusSet,
) VideoService {
	return &videoService{
		db:          db,
		log:         baseLog.With("service", "VideoService"),
		videos:      videos,
		queries:     queries,
		annotations: annotations,
		statuses:    statuses,
	}
}

func (s *videoService) List(ctx context.Context, tx *gorm.DB) ([]*types.Video, error) {
	videos, err := s.videos.List(ctx, tx)
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("list videos: %w", err))
	}
	return videos, nil
}

func (s *videoService) Get(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) (*types.Video, error) {
	rows, err := s.videos.GetByIDs(ctx, tx, []uuid.UUID{videoID})
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("load video: %w", err))
	}
	if len(rows) == 0 {
		return nil, apperr.NotFound("video", videoID)
	}
	return rows[0], nil
}

func (s *videoService) Update(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, in VideoUpdateInput) (*types.Video, error) {
	fields := map[string]interface{}{}
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperr.Empty("title")
		}
		fields["title"] = title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Topic != nil {
		fields["topic"] = *in.Topic
	}
	if in.Notes != nil {
		fields["notes"] = *in.Notes
	}
	if in.Annotator != nil {
		fields["annotator"] = *in.Annotator
	}
	if in.Duration != nil {
		if *in.Duration <= 0 {
			return nil, apperr.Newf(apperr.KindInvalidDuration, "duration",
				"duration must be a positive number of seconds, got %d", *in.Duration)
		}
		fields["duration"] = *in.Duration
	}
	if in.Status != nil {
		if !s.statuses.Contains(*in.Status) {
			return nil, apperr.Newf(apperr.KindInvalidStatus, "status",
				"status %q is not one of %v", *in.Status, s.statuses.Values())
		}
		fields["status"] = *in.Status
	}

	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var updated *types.Video
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if _, err := s.Get(ctx, txx, videoID); err != nil {
			return err
		}
		if err := s.videos.UpdateFields(ctx, txx, videoID, fields); err != nil {
			return apperr.Store(fmt.Errorf("update video: %w", err))
		}
		var err error
		updated, err = s.Get(ctx, txx, videoID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *videoService) SetStatus(ctx context.Context, tx *gorm.DB, videoID uuid.UUID, status string) (*types.Video, error) {
	return s.Update(ctx, tx, videoID, VideoUpdateInput{Status: &status})
}

func (s *videoService) Delete(ctx context.Context, tx *gorm.DB, videoID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if _, err := s.Get(ctx, txx, videoID); err != nil {
			return err
		}
		// Children first so no orphan ever survives a partial failure.
		if err := s.annotations.DeleteByVideoIDs(ctx, txx, []uuid.UUID{videoID}); err != nil {
			return apperr.Store(fmt.Errorf("cascade annotations: %w", err))
		}
		if err := s.queries.DeleteByVideoIDs(ctx, txx, []uuid.UUID{videoID}); err != nil {
			return apperr.Store(fmt.Errorf("cascade queries: %w", err))
		}
		if err := s.videos.DeleteByIDs(ctx, txx, []uuid.UUID{videoID}); err != nil {
			return apperr.Store(fmt.Errorf("delete video: %w", err))
		}
		s.log.Info("video deleted", "video_id", videoID)
		return nil
	})
}
