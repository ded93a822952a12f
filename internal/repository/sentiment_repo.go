package repository

import (
	"context"
	"fmt"

	"github.com/syre/datamining-with-python/internal/db"
	"github.com/syre/datamining-with-python/internal/model"
)

// SentimentRepo persists videos, comments and their sentiment results.
type SentimentRepo struct {
	conn db.Conn
}

func NewSentimentRepo(conn db.Conn) *SentimentRepo {
	return &SentimentRepo{conn: conn}
}

const videoColumns = `id, title, author_id, view_count, duration, likes, dislikes,
	rating, num_raters, published, analyzed_at, num_comments`

// FindVideo returns the stored video, or db.ErrNotFound.
func (r *SentimentRepo) FindVideo(ctx context.Context, videoID string) (*model.Video, error) {
	var v model.Video
	err := r.conn.Get(ctx, &v, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, videoID)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// UpsertVideo inserts the video or overwrites the stored copy.
func (r *SentimentRepo) UpsertVideo(ctx context.Context, v model.Video) error {
	_, err := r.conn.Exec(ctx, `
		INSERT INTO videos (`+videoColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			author_id = excluded.author_id,
			view_count = excluded.view_count,
			duration = excluded.duration,
			likes = excluded.likes,
			dislikes = excluded.dislikes,
			rating = excluded.rating,
			num_raters = excluded.num_raters,
			published = excluded.published,
			analyzed_at = excluded.analyzed_at,
			num_comments = excluded.num_comments`,
		v.ID, v.Title, v.AuthorID, v.ViewCount, v.Duration, v.Likes, v.Dislikes,
		v.Rating, v.NumRaters, v.Published.UTC(), v.AnalyzedAt.UTC(), v.NumComments,
	)
	if err != nil {
		return fmt.Errorf("upsert video %s: %w", v.ID, err)
	}
	return nil
}

// LatestVideos returns the n most recently analyzed videos that have a
// stored sentiment, newest first.
func (r *SentimentRepo) LatestVideos(ctx context.Context, n int) ([]model.Video, error) {
	var videos []model.Video
	err := r.conn.Select(ctx, &videos, `
		SELECT `+latestVideoColumns+`
		FROM videos v
		JOIN video_sentiments s ON s.video_id = v.id
		ORDER BY v.analyzed_at DESC
		LIMIT $1`, n)
	return videos, err
}

const latestVideoColumns = `v.id, v.title, v.author_id, v.view_count, v.duration, v.likes,
	v.dislikes, v.rating, v.num_raters, v.published, v.analyzed_at, v.num_comments`

// SaveAnalysis stores the outcome of one analysis in a single transaction:
// the video, its categories, its comments and their sentiment. Either all of
// it is written or none of it, so a stored comment count always matches the
// stored sentiment. It returns how many comments were new.
func (r *SentimentRepo) SaveAnalysis(
	ctx context.Context,
	v model.Video,
	cats []model.VideoCategory,
	comments []model.Comment,
	vs model.VideoSentiment,
	cs []model.CommentSentiment,
) (int, error) {
	var inserted int
	err := r.conn.InTx(ctx, func(tx db.Conn) error {
		txRepo := NewSentimentRepo(tx)
		if err := txRepo.UpsertVideo(ctx, v); err != nil {
			return err
		}
		if err := txRepo.ReplaceCategories(ctx, v.ID, cats); err != nil {
			return fmt.Errorf("store categories of %s: %w", v.ID, err)
		}
		n, err := txRepo.InsertComments(ctx, comments)
		if err != nil {
			return err
		}
		inserted = n
		return txRepo.SaveSentiment(ctx, vs, cs)
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// ReplaceCategories swaps the stored categories of a video for cats.
func (r *SentimentRepo) ReplaceCategories(ctx context.Context, videoID string, cats []model.VideoCategory) error {
	return r.conn.InTx(ctx, func(tx db.Conn) error {
		if _, err := tx.Exec(ctx, `DELETE FROM video_categories WHERE video_id = $1`, videoID); err != nil {
			return err
		}
		for _, c := range cats {
			_, err := tx.Exec(ctx, `
				INSERT INTO video_categories (video_id, category) VALUES ($1, $2)
				ON CONFLICT (video_id, category) DO NOTHING`,
				videoID, c.Category)
			if err != nil {
				return fmt.Errorf("insert category %q: %w", c.Category, err)
			}
		}
		return nil
	})
}

// Categories returns the category labels of a video in alphabetical order.
func (r *SentimentRepo) Categories(ctx context.Context, videoID string) ([]string, error) {
	var cats []string
	err := r.conn.Select(ctx, &cats, `
		SELECT category FROM video_categories
		WHERE video_id = $1
		ORDER BY category`, videoID)
	return cats, err
}

// InsertComments stores the comments that are not already present and
// returns how many were new.
func (r *SentimentRepo) InsertComments(ctx context.Context, comments []model.Comment) (int, error) {
	var inserted int
	err := r.conn.InTx(ctx, func(tx db.Conn) error {
		for _, c := range comments {
			n, err := tx.Exec(ctx, `
				INSERT INTO comments (id, video_id, author_id, author_name, content, published)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO NOTHING`,
				c.ID, c.VideoID, c.AuthorID, c.AuthorName, c.Content, c.Published.UTC())
			if err != nil {
				return fmt.Errorf("insert comment %s: %w", c.ID, err)
			}
			inserted += int(n)
		}
		return nil
	})
	return inserted, err
}

// Comments returns the stored comments of a video, oldest first.
func (r *SentimentRepo) Comments(ctx context.Context, videoID string) ([]model.Comment, error) {
	var comments []model.Comment
	err := r.conn.Select(ctx, &comments, `
		SELECT id, video_id, author_id, author_name, content, published
		FROM comments
		WHERE video_id = $1
		ORDER BY published, id`, videoID)
	return comments, err
}

// SaveSentiment stores comment sentiments that are not yet present and
// overwrites the video's sentiment, atomically.
func (r *SentimentRepo) SaveSentiment(ctx context.Context, vs model.VideoSentiment, cs []model.CommentSentiment) error {
	return r.conn.InTx(ctx, func(tx db.Conn) error {
		for _, s := range cs {
			_, err := tx.Exec(ctx, `
				INSERT INTO comment_sentiments (comment_id, video_id, positive)
				VALUES ($1, $2, $3)
				ON CONFLICT (comment_id) DO NOTHING`,
				s.CommentID, s.VideoID, s.Positive)
			if err != nil {
				return fmt.Errorf("insert comment sentiment %s: %w", s.CommentID, err)
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO video_sentiments (video_id, n_pos, n_neg, verdict)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (video_id) DO UPDATE SET
				n_pos = excluded.n_pos,
				n_neg = excluded.n_neg,
				verdict = excluded.verdict`,
			vs.VideoID, vs.Positive, vs.Negative, string(vs.Verdict))
		if err != nil {
			return fmt.Errorf("upsert video sentiment %s: %w", vs.VideoID, err)
		}
		return nil
	})
}

// VideoSentiment returns the stored sentiment of a video, or db.ErrNotFound.
func (r *SentimentRepo) VideoSentiment(ctx context.Context, videoID string) (*model.VideoSentiment, error) {
	var vs model.VideoSentiment
	err := r.conn.Get(ctx, &vs, `
		SELECT video_id, n_pos, n_neg, verdict
		FROM video_sentiments
		WHERE video_id = $1`, videoID)
	if err != nil {
		return nil, err
	}
	return &vs, nil
}

// AllVideoSentiments returns every stored video sentiment.
func (r *SentimentRepo) AllVideoSentiments(ctx context.Context) ([]model.VideoSentiment, error) {
	var all []model.VideoSentiment
	err := r.conn.Select(ctx, &all, `
		SELECT video_id, n_pos, n_neg, verdict
		FROM video_sentiments
		ORDER BY video_id`)
	return all, err
}

// CommentSentimentCounts tallies the stored comment polarities of a video.
func (r *SentimentRepo) CommentSentimentCounts(ctx context.Context, videoID string) (model.SentimentCounts, error) {
	var counts model.SentimentCounts
	err := r.conn.Get(ctx, &counts, `
		SELECT
			COALESCE(SUM(CASE WHEN positive THEN 1 ELSE 0 END), 0) AS positive,
			COALESCE(SUM(CASE WHEN positive THEN 0 ELSE 1 END), 0) AS negative
		FROM comment_sentiments
		WHERE video_id = $1`, videoID)
	return counts, err
}
