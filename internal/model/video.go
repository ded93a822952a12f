package model

import "time"

// Video is the platform metadata captured when a video is analyzed.
// Rating statistics are optional on the platform and stay nil when absent.
type Video struct {
	ID          string    `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	AuthorID    string    `db:"author_id" json:"authorId"`
	ViewCount   int64     `db:"view_count" json:"viewCount"`
	Duration    int64     `db:"duration" json:"duration"`
	Likes       *int64    `db:"likes" json:"likes,omitempty"`
	Dislikes    *int64    `db:"dislikes" json:"dislikes,omitempty"`
	Rating      *float64  `db:"rating" json:"rating,omitempty"`
	NumRaters   *int64    `db:"num_raters" json:"numRaters,omitempty"`
	Published   time.Time `db:"published" json:"published"`
	AnalyzedAt  time.Time `db:"analyzed_at" json:"analyzedAt"`
	NumComments int64     `db:"num_comments" json:"numComments"`
}

// VideoCategory is a platform category label attached to a video.
type VideoCategory struct {
	VideoID  string `db:"video_id" json:"videoId"`
	Category string `db:"category" json:"category"`
}

// VideoResult is what the analysis pages and the JSON API render.
type VideoResult struct {
	Video      Video          `json:"video"`
	Sentiment  VideoSentiment `json:"sentiment"`
	Categories []string       `json:"categories"`
	// NumAnalyzed is the number of distinct comments the verdict is based on.
	NumAnalyzed int  `json:"numAnalyzed"`
	FromStore   bool `json:"fromStore"`
}
