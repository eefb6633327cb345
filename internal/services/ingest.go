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
	"github.com/cliplab/annotation-backend/internal/platform/mediaprobe"
	"github.com/cliplab/annotation-backend/internal/repos"
	"github.com/cliplab/annotation-backend/internal/types"
)

// SubmissionInput is one video submission: metadata plus an optional nested
// tree of queries and annotations. URL and Title are pointers so a missing
// key and a blank value report as distinct failures.
type SubmissionInput struct {
	URL         *string      `json:"url"`
	Title       *string      `json:"title"`
	Description string       `json:"description"`
	Topic       string       `json:"topic"`
	Notes       string       `json:"notes"`
	Annotator   string       `json:"annotator"`
	Duration    *int         `json:"duration"`
	Queries     []QueryInput `json:"queries"`
}

type QueryInput struct {
	QueryText   string            `json:"query_text"`
	QueryTypes  []string          `json:"query_types"`
	Annotations []AnnotationInput `json:"annotations"`
}

type AnnotationInput struct {
	StartTimestamp string  `json:"start_timestamp"`
	EndTimestamp   string  `json:"end_timestamp"`
	Notes          *string `json:"notes"`
}

// SubmitResult reports the resolved video and how many rows the submission
// actually created. Reused queries are not counted.
type SubmitResult struct {
	Video              *types.Video `json:"video"`
	VideoExisted       bool         `json:"video_existed"`
	QueriesCreated     int          `json:"queries_created"`
	AnnotationsCreated int          `json:"annotations_created"`
}

type BatchResult struct {
	Items              []*SubmitResult `json:"items"`
	NewVideos          int             `json:"new_videos"`
	ExistingVideos     int             `json:"existing_videos"`
	QueriesCreated     int             `json:"queries_created"`
	AnnotationsCreated int             `json:"annotations_created"`
}

type IngestService interface {
	// SubmitVideo materializes one submission in a single transaction,
	// reusing an existing video with the same url and existing queries with
	// the same trimmed text.
	SubmitVideo(ctx context.Context, tx *gorm.DB, in SubmissionInput) (*SubmitResult, error)
	// SubmitBatch applies SubmitVideo to each item inside one outer
	// transaction; a failure on any item rolls back the whole batch and the
	// returned error carries the failing index.
	SubmitBatch(ctx context.Context, tx *gorm.DB, items []SubmissionInput) (*BatchResult, error)
}

type ingestService struct {
	db          *gorm.DB
	log         *logger.Logger
	videos      repos.VideoRepo
	queries     repos.QueryRepo
	annotations repos.AnnotationRepo
	prober      mediaprobe.Prober
	statuses    VideoStatusSet
}

func NewIngestService(
	db *gorm.DB,
	baseLog *logger.Logger,
	videos repos.VideoRepo,
	queries repos.QueryRepo,
	annotations repos.AnnotationRepo,
	prober mediaprobe.Prober,
	statuses VideoStatusSet,
) IngestService {
	return &ingestService{
		db:          db,
		log:         baseLog.With("service", "IngestService"),
		videos:      videos,
		queries:     queries,
		annotations: annotations,
		prober:      prober,
		statuses:    statuses,
	}
}

func (s *ingestService) SubmitVideo(ctx context.Context, tx *gorm.DB, in SubmissionInput) (*SubmitResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	var result *SubmitResult
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		r, err := s.submitOne(ctx, txx, in)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ingestService) SubmitBatch(ctx context.Context, tx *gorm.DB, items []SubmissionInput) (*BatchResult, error) {
	transaction := tx
	if transaction == nil {
		transaction = s.db
	}

	batch := &BatchResult{}
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		for i, in := range items {
			r, err := s.submitOne(ctx, txx, in)
			if err != nil {
				return apperr.AtIndex(err, i)
			}
			batch.Items = append(batch.Items, r)
			if r.VideoExisted {
				batch.ExistingVideos++
			} else {
				batch.NewVideos++
			}
			batch.QueriesCreated += r.QueriesCreated
			batch.AnnotationsCreated += r.AnnotationsCreated
		}
		return nil
	})
	if err != nil {
		s.log.Warn("batch submit rolled back", "items", len(items), "error", err)
		return nil, err
	}
	return batch, nil
}

func (s *ingestService) submitOne(ctx context.Context, tx *gorm.DB, in SubmissionInput) (*SubmitResult, error) {
	if in.URL == nil {
		return nil, apperr.Missing("url")
	}
	url := strings.TrimSpace(*in.URL)
	if url == "" {
		return nil, apperr.Empty("url")
	}
	if in.Title == nil {
		return nil, apperr.Missing("title")
	}
	title := strings.TrimSpace(*in.Title)
	if title == "" {
		return nil, apperr.Empty("title")
	}

	existing, err := s.videos.GetByURL(ctx, tx, url)
	if err != nil {
		return nil, apperr.Store(fmt.Errorf("lookup video by url: %w", err))
	}

	video := existing
	videoExisted := existing != nil
	if !videoExisted {
		// Duration is only resolved for new videos; resubmissions keep the
		// stored metadata untouched.
		duration, err := s.resolveDuration(ctx, url, in.Duration)
		if err != nil {
			return nil, err
		}
		video = &types.Video{
			ID:          uuid.New(),
			URL:         url,
			Title:       title,
			Description: in.Description,
			Topic:       in.Topic,
			Notes:       in.Notes,
			Annotator:   in.Annotator,
			Duration:    duration,
			Status:      s.statuses.Default(),
		}
		if _, err := s.videos.Create(ctx, tx, []*types.Video{video}); err != nil {
			return nil, apperr.Store(fmt.Errorf("create video: %w", err))
		}
	}

	result := &SubmitResult{Video: video, VideoExisted: videoExisted}
	for _, qin := range in.Queries {
		text := strings.TrimSpace(qin.QueryText)
		if text == "" {
			// Blank query entries are skipped, not rejected.
			continue
		}
		q, err := s.queries.GetByVideoAndText(ctx, tx, video.ID, text)
		if err != nil {
			return nil, apperr.Store(fmt.Errorf("lookup query by text: %w", err))
		}
		if q == nil {
			q = &types.Query{
				ID:         uuid.New(),
				VideoID:    video.ID,
				QueryText:  text,
				Status:     types.QueryStatusUnverified,
				QueryTypes: encodeQueryTypes(qin.QueryTypes),
			}
			if _, err := s.queries.Create(ctx, tx, []*types.Query{q}); err != nil {
				return nil, apperr.Store(fmt.Errorf("create query: %w", err))
			}
			result.QueriesCreated++
		}

		var batch []*types.Annotation
		for _, ain := range qin.Annotations {
			if ain.Notes == nil {
				continue
			}
			batch = append(batch, &types.Annotation{
				ID:             uuid.New(),
				QueryID:        q.ID,
				StartTimestamp: timestampOrDefault(ain.StartTimestamp),
				EndTimestamp:   timestampOrDefault(ain.EndTimestamp),
				Notes:          *ain.Notes,
				IsAnnotated:    types.AnnotationFlagUnannotated,
			})
		}
		if _, err := s.annotations.Create(ctx, tx, batch); err != nil {
			return nil, apperr.Store(fmt.Errorf("create annotations: %w", err))
		}
		result.AnnotationsCreated += len(batch)
	}

	s.log.Debug("submission materialized",
		"url", url,
		"video_existed", videoExisted,
		"queries_created", result.QueriesCreated,
		"annotations_created", result.AnnotationsCreated,
	)
	return result, nil
}

func (s *ingestService) resolveDuration(ctx context.Context, url string, supplied *int) (int, error) {
	if supplied != nil {
		if *supplied <= 0 {
			return 0, apperr.Newf(apperr.KindInvalidDuration, "duration",
				"duration must be a positive number of seconds, got %d", *supplied)
		}
		return *supplied, nil
	}
	if !mediaprobe.IsRemote(url) {
		return 0, apperr.Newf(apperr.KindMissingDuration, "duration",
			"duration is required for non-remote source %q", url)
	}
	seconds, err := s.prober.Duration(ctx, url)
	if err != nil {
		return 0, apperr.New(apperr.KindDurationUnavailable, "duration",
			fmt.Errorf("could not determine duration for %s: %w", url, err))
	}
	return seconds, nil
}

func encodeQueryTypes(tags []string) datatypes.JSON {
	cleaned := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	if len(cleaned) == 0 {
		return types.DefaultQueryTypes()
	}
	raw, _ := json.Marshal(cleaned)
	return datatypes.JSON(raw)
}

func timestampOrDefault(ts string) string {
	ts = strings.TrimSpace(ts)
	if ts == "" {
		return "00:00:00"
	}
	return ts
}
