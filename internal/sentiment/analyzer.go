package sentiment

import (
	"github.com/rs/zerolog"

	"github.com/syre/datamining-with-python/internal/model"
)

// Analyzer classifies a video's comments and derives its overall sentiment.
type Analyzer struct {
	clf *Classifier
	log zerolog.Logger
}

func NewAnalyzer(clf *Classifier, log zerolog.Logger) *Analyzer {
	return &Analyzer{clf: clf, log: log.With().Str("component", "sentiment").Logger()}
}

// ClassifyComments labels every comment and aggregates the labels for the
// video the comments belong to. It returns ErrNoComments for an empty slice.
func (a *Analyzer) ClassifyComments(comments []model.Comment) (model.VideoSentiment, []model.CommentSentiment, error) {
	if len(comments) == 0 {
		return model.VideoSentiment{}, nil, ErrNoComments
	}

	labels := make([]bool, len(comments))
	perComment := make([]model.CommentSentiment, len(comments))
	for i, c := range comments {
		labels[i] = a.clf.Positive(c.Content)
		perComment[i] = model.CommentSentiment{
			CommentID: c.ID,
			VideoID:   c.VideoID,
			Positive:  labels[i],
		}
	}

	sum, err := Aggregate(labels)
	if err != nil {
		return model.VideoSentiment{}, nil, err
	}

	videoID := comments[0].VideoID
	a.log.Debug().
		Str("video_id", videoID).
		Int("positive", sum.Positive).
		Int("negative", sum.Negative).
		Float64("positive_ratio", sum.PositiveRatio).
		Msg("comments classified")
	a.log.Info().Str("video_id", videoID).Str("verdict", string(sum.Verdict)).Msg("video sentiment")

	return model.VideoSentiment{
		VideoID:  videoID,
		Positive: sum.PositiveRatio,
		Negative: sum.NegativeRatio,
		Verdict:  sum.Verdict,
	}, perComment, nil
}
