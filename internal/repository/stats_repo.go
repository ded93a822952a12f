package repository

import (
	"context"
	"fmt"

	"github.com/syre/datamining-with-python/internal/model"
)

// TopCategoryLimit bounds the categories reported by Stats.
const TopCategoryLimit = 10

type labelCount struct {
	Label string `db:"label"`
	Total int64  `db:"total"`
}

// Stats returns aggregate statistics from all tables.
func (r *SentimentRepo) Stats(ctx context.Context) (*model.Stats, error) {
	var stats model.Stats
	err := r.conn.Get(ctx, &stats, `
		SELECT
			(SELECT COUNT(*) FROM video_sentiments) AS total_videos,
			(SELECT COUNT(*) FROM comments) AS total_comments,
			(SELECT COUNT(*) FROM comment_sentiments WHERE positive) AS positive_comments,
			(SELECT COUNT(*) FROM comment_sentiments WHERE NOT positive) AS negative_comments`)
	if err != nil {
		return nil, fmt.Errorf("count totals: %w", err)
	}

	var verdicts []labelCount
	err = r.conn.Select(ctx, &verdicts, `
		SELECT verdict AS label, COUNT(*) AS total
		FROM video_sentiments
		GROUP BY verdict`)
	if err != nil {
		return nil, fmt.Errorf("count verdicts: %w", err)
	}

	var cats []labelCount
	err = r.conn.Select(ctx, &cats, `
		SELECT vc.category AS label, COUNT(*) AS total
		FROM video_categories vc
		JOIN video_sentiments vs ON vs.video_id = vc.video_id
		GROUP BY vc.category
		ORDER BY total DESC, vc.category
		LIMIT $1`, TopCategoryLimit)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}

	stats.Verdicts = make(map[string]int64, len(verdicts))
	for _, v := range verdicts {
		stats.Verdicts[v.Label] = v.Total
	}
	stats.TopCategories = make(map[string]int64, len(cats))
	for _, c := range cats {
		stats.TopCategories[c.Label] = c.Total
	}
	return &stats, nil
}
