package sentiment

import (
	"errors"

	"github.com/syre/datamining-with-python/internal/model"
)

// ErrNoComments is returned when there is nothing to aggregate.
var ErrNoComments = errors.New("sentiment: no comments to aggregate")

// Band thresholds on the positive ratio. Each is the inclusive lower bound
// of the next band up.
const (
	slightNegativeFrom = 0.25
	neutralFrom        = 0.4
	slightPositiveFrom = 0.6
	strongPositiveFrom = 0.75
)

// Summary is the normalized polarity split of a set of comments.
type Summary struct {
	Positive      int
	Negative      int
	PositiveRatio float64
	NegativeRatio float64
	Verdict       model.Verdict
}

// Aggregate counts polarities and maps the positive ratio to a verdict.
func Aggregate(labels []bool) (Summary, error) {
	if len(labels) == 0 {
		return Summary{}, ErrNoComments
	}

	var s Summary
	for _, positive := range labels {
		if positive {
			s.Positive++
		} else {
			s.Negative++
		}
	}
	total := float64(len(labels))
	s.PositiveRatio = float64(s.Positive) / total
	s.NegativeRatio = float64(s.Negative) / total
	s.Verdict = VerdictFor(s.PositiveRatio)
	return s, nil
}

// VerdictFor maps a positive ratio in [0, 1] to its band.
func VerdictFor(positive float64) model.Verdict {
	switch {
	case positive < slightNegativeFrom:
		return model.StrongNegative
	case positive < neutralFrom:
		return model.SlightNegative
	case positive < slightPositiveFrom:
		return model.Neutral
	case positive < strongPositiveFrom:
		return model.SlightPositive
	default:
		return model.StrongPositive
	}
}

// NeedsAnalysis reports whether a video must be (re)classified: either it was
// never stored, or the platform now reports a different comment count.
func NeedsAnalysis(stored *model.Video, fresh model.Video) bool {
	return stored == nil || stored.NumComments != fresh.NumComments
}
