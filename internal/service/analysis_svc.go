package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/syre/datamining-with-python/internal/db"
	"github.com/syre/datamining-with-python/internal/metrics"
	"github.com/syre/datamining-with-python/internal/model"
	"github.com/syre/datamining-with-python/internal/repository"
	"github.com/syre/datamining-with-python/internal/sentiment"
)

// LatestLimit is how many analyses the previous-results page lists.
const LatestLimit = 5

// Scraper fetches video metadata and comments from the platform.
type Scraper interface {
	FetchVideoInfo(ctx context.Context, videoID string) (*model.Video, []model.VideoCategory, error)
	FetchComments(ctx context.Context, videoID string, limit int) ([]model.Comment, error)
}

// CommentClassifier turns a video's comments into per-comment and
// aggregate sentiment.
type CommentClassifier interface {
	ClassifyComments(comments []model.Comment) (model.VideoSentiment, []model.CommentSentiment, error)
}

// AnalysisService runs the fetch, classify and persist pipeline for a video.
type AnalysisService struct {
	repo         *repository.SentimentRepo
	scraper      Scraper
	classifier   CommentClassifier
	cache        *CacheService
	commentLimit int
	log          zerolog.Logger
}

func NewAnalysisService(
	repo *repository.SentimentRepo,
	scraper Scraper,
	classifier CommentClassifier,
	cache *CacheService,
	commentLimit int,
	log zerolog.Logger,
) *AnalysisService {
	return &AnalysisService{
		repo:         repo,
		scraper:      scraper,
		classifier:   classifier,
		cache:        cache,
		commentLimit: commentLimit,
		log:          log.With().Str("component", "analysis").Logger(),
	}
}

// Analyze returns the sentiment of a video. The platform is always asked for
// the current metadata; comments are only fetched and classified again when
// the video is new or its comment count changed since the last analysis.
func (s *AnalysisService) Analyze(ctx context.Context, videoID string) (*model.VideoResult, error) {
	fresh, cats, err := s.scraper.FetchVideoInfo(ctx, videoID)
	if err != nil {
		metrics.Metrics.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	stored, err := s.repo.FindVideo(ctx, videoID)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		metrics.Metrics.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("find video %s: %w", videoID, err)
	}

	if !sentiment.NeedsAnalysis(stored, *fresh) {
		res, err := s.Stored(ctx, videoID)
		switch {
		case err == nil:
			// Metadata is shown as the platform reports it now.
			analyzedAt := res.Video.AnalyzedAt
			res.Video = *fresh
			res.Video.AnalyzedAt = analyzedAt
			metrics.Metrics.AnalysesTotal.WithLabelValues("stored").Inc()
			s.log.Debug().Str("video_id", videoID).Msg("comment count unchanged, using stored analysis")
			return res, nil
		case errors.Is(err, db.ErrNotFound):
			// Video row without a sentiment: a previous run did not finish.
		default:
			metrics.Metrics.AnalysesTotal.WithLabelValues("error").Inc()
			return nil, err
		}
	}

	res, err := s.analyzeFresh(ctx, fresh, cats)
	if err != nil {
		metrics.Metrics.AnalysesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.Metrics.AnalysesTotal.WithLabelValues("fresh").Inc()
	return res, nil
}

func (s *AnalysisService) analyzeFresh(ctx context.Context, video *model.Video, cats []model.VideoCategory) (*model.VideoResult, error) {
	start := time.Now()
	defer func() { metrics.Metrics.AnalysisDuration.Observe(time.Since(start).Seconds()) }()

	comments, err := s.scraper.FetchComments(ctx, video.ID, s.commentLimit)
	if err != nil {
		return nil, err
	}
	comments = dedupeComments(comments)

	vs, cs, err := s.classifier.ClassifyComments(comments)
	if err != nil {
		return nil, fmt.Errorf("classify comments of %s: %w", video.ID, err)
	}

	inserted, err := s.repo.SaveAnalysis(ctx, *video, cats, comments, vs, cs)
	if err != nil {
		return nil, fmt.Errorf("store analysis of %s: %w", video.ID, err)
	}

	var positive int
	for _, c := range cs {
		if c.Positive {
			positive++
		}
	}
	metrics.Metrics.CommentsClassified.WithLabelValues("positive").Add(float64(positive))
	metrics.Metrics.CommentsClassified.WithLabelValues("negative").Add(float64(len(cs) - positive))

	if err := s.cache.InvalidateResult(ctx, video.ID); err != nil {
		s.log.Warn().Err(err).Str("video_id", video.ID).Msg("cache invalidation failed")
	}

	s.log.Info().
		Str("video_id", video.ID).
		Int("comments", len(comments)).
		Int("new_comments", inserted).
		Str("verdict", string(vs.Verdict)).
		Msg("video analyzed")

	categories := make([]string, 0, len(cats))
	for _, c := range cats {
		categories = append(categories, c.Category)
	}
	return &model.VideoResult{
		Video:       *video,
		Sentiment:   vs,
		Categories:  categories,
		NumAnalyzed: len(cs),
	}, nil
}

// Stored returns the last analysis of a video without contacting the
// platform, or db.ErrNotFound when it was never analyzed.
func (s *AnalysisService) Stored(ctx context.Context, videoID string) (*model.VideoResult, error) {
	if res, err := s.cache.GetResult(ctx, videoID); err != nil {
		s.log.Warn().Err(err).Str("video_id", videoID).Msg("cache read failed")
	} else if res != nil {
		return res, nil
	}

	video, err := s.repo.FindVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}
	vs, err := s.repo.VideoSentiment(ctx, videoID)
	if err != nil {
		return nil, err
	}
	cats, err := s.repo.Categories(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("load categories of %s: %w", videoID, err)
	}
	counts, err := s.repo.CommentSentimentCounts(ctx, videoID)
	if err != nil {
		return nil, fmt.Errorf("count comment sentiments of %s: %w", videoID, err)
	}

	res := &model.VideoResult{
		Video:       *video,
		Sentiment:   *vs,
		Categories:  cats,
		NumAnalyzed: int(counts.Positive + counts.Negative),
		FromStore:   true,
	}
	if err := s.cache.SetResult(ctx, res); err != nil {
		s.log.Warn().Err(err).Str("video_id", videoID).Msg("cache write failed")
	}
	return res, nil
}

// Latest returns up to n of the most recently analyzed videos, newest first.
func (s *AnalysisService) Latest(ctx context.Context, n int) ([]model.VideoResult, error) {
	videos, err := s.repo.LatestVideos(ctx, n)
	if err != nil {
		return nil, fmt.Errorf("latest videos: %w", err)
	}

	results := make([]model.VideoResult, 0, len(videos))
	for _, v := range videos {
		vs, err := s.repo.VideoSentiment(ctx, v.ID)
		if err != nil {
			return nil, fmt.Errorf("sentiment of %s: %w", v.ID, err)
		}
		results = append(results, model.VideoResult{Video: v, Sentiment: *vs, FromStore: true})
	}
	return results, nil
}

// CommentDistribution returns the stored number of positive and negative
// comments of a video.
func (s *AnalysisService) CommentDistribution(ctx context.Context, videoID string) (model.SentimentCounts, error) {
	if _, err := s.repo.VideoSentiment(ctx, videoID); err != nil {
		return model.SentimentCounts{}, err
	}
	return s.repo.CommentSentimentCounts(ctx, videoID)
}

// SentimentPoints returns the sentiment of every analyzed video and,
// separately, the one of videoID.
func (s *AnalysisService) SentimentPoints(ctx context.Context, videoID string) ([]model.VideoSentiment, *model.VideoSentiment, error) {
	current, err := s.repo.VideoSentiment(ctx, videoID)
	if err != nil {
		return nil, nil, err
	}
	all, err := s.repo.AllVideoSentiments(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("all video sentiments: %w", err)
	}
	return all, current, nil
}

// Stats returns aggregate statistics over all stored analyses.
func (s *AnalysisService) Stats(ctx context.Context) (*model.Stats, error) {
	return s.repo.Stats(ctx)
}

// dedupeComments drops repeated comment ids, keeping the first occurrence.
func dedupeComments(comments []model.Comment) []model.Comment {
	seen := make(map[string]struct{}, len(comments))
	out := comments[:0:0]
	for _, c := range comments {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, c)
	}
	return out
}
