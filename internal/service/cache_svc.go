package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/syre/datamining-with-python/internal/metrics"
	"github.com/syre/datamining-with-python/internal/model"
)

// ResultCacheTTL bounds how long a rendered analysis stays in Redis.
const ResultCacheTTL = 5 * time.Minute

// CacheService provides a Redis cache-aside layer for analysis results.
type CacheService struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewCacheService creates a new CacheService. If redisURL is empty or connection
// fails, it returns a CacheService with a nil client (cache operations become no-ops).
func NewCacheService(redisURL string, log zerolog.Logger) *CacheService {
	log = log.With().Str("component", "cache").Logger()
	if redisURL == "" {
		log.Info().Msg("no redis URL configured, caching disabled")
		return &CacheService{log: log}
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.Warn().Err(err).Msg("invalid redis URL, caching disabled")
		return &CacheService{log: log}
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Msg("redis connection failed, caching disabled")
		_ = rdb.Close()
		return &CacheService{log: log}
	}

	log.Info().Msg("redis connected, caching enabled")
	return &CacheService{rdb: rdb, log: log}
}

// Client returns the underlying Redis client (for health checks). May be nil.
func (c *CacheService) Client() *redis.Client {
	return c.rdb
}

// GetResult returns a cached analysis. Returns nil if not cached or cache is disabled.
func (c *CacheService) GetResult(ctx context.Context, videoID string) (*model.VideoResult, error) {
	if c.rdb == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, resultKey(videoID)).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.Metrics.CacheMisses.Inc()
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var res model.VideoResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode cached result: %w", err)
	}
	metrics.Metrics.CacheHits.Inc()
	return &res, nil
}

// SetResult stores an analysis in cache.
func (c *CacheService) SetResult(ctx context.Context, res *model.VideoResult) error {
	if c.rdb == nil || res == nil {
		return nil
	}
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, resultKey(res.Video.ID), b, ResultCacheTTL).Err()
}

// InvalidateResult removes an analysis from cache (called after re-analysis).
func (c *CacheService) InvalidateResult(ctx context.Context, videoID string) error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Del(ctx, resultKey(videoID)).Err()
}

// Close shuts down the Redis connection.
func (c *CacheService) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func resultKey(videoID string) string {
	return fmt.Sprintf("video:%s", videoID)
}
