package model

// Verdict is the overall sentiment band of a video.
type Verdict string

const (
	StrongNegative Verdict = "strong negative"
	SlightNegative Verdict = "slight negative"
	Neutral        Verdict = "neutral"
	SlightPositive Verdict = "slight positive"
	StrongPositive Verdict = "strong positive"
)

// VideoSentiment holds the normalized share of positive and negative
// comments (Positive + Negative == 1) and the resulting verdict.
type VideoSentiment struct {
	VideoID  string  `db:"video_id" json:"videoId"`
	Positive float64 `db:"n_pos" json:"positive"`
	Negative float64 `db:"n_neg" json:"negative"`
	Verdict  Verdict `db:"verdict" json:"verdict"`
}

// CommentSentiment is the classifier's polarity for a single comment.
type CommentSentiment struct {
	CommentID string `db:"comment_id" json:"commentId"`
	VideoID   string `db:"video_id" json:"videoId"`
	Positive  bool   `db:"positive" json:"positive"`
}

// SentimentCounts is the number of positive and negative comments stored for a video.
type SentimentCounts struct {
	Positive int64 `db:"positive" json:"positive"`
	Negative int64 `db:"negative" json:"negative"`
}

// Stats is the API response for aggregate statistics over all analyses.
type Stats struct {
	TotalVideos      int64            `db:"total_videos" json:"totalVideos"`
	TotalComments    int64            `db:"total_comments" json:"totalComments"`
	PositiveComments int64            `db:"positive_comments" json:"positiveComments"`
	NegativeComments int64            `db:"negative_comments" json:"negativeComments"`
	Verdicts         map[string]int64 `db:"-" json:"verdicts"`
	TopCategories    map[string]int64 `db:"-" json:"topCategories"`
}
