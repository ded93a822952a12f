// Package chart renders the analysis charts as PNG images.
package chart

import (
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/syre/datamining-with-python/internal/model"
)

const (
	width  = 640
	height = 400
)

var (
	positiveColor = drawing.ColorFromHex("2e7d32")
	negativeColor = drawing.ColorFromHex("c62828")
	otherColor    = drawing.ColorFromHex("90a4ae")
)

// CommentHistogram draws the number of positive and negative comments of a video.
func CommentHistogram(w io.Writer, positive, negative int64) error {
	top := float64(max(positive, negative, 1))

	graph := chart.BarChart{
		Title:    "Comment sentiment",
		Width:    width,
		Height:   height,
		BarWidth: 120,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top},
		},
		Bars: []chart.Value{
			{Value: float64(positive), Label: fmt.Sprintf("positive (%d)", positive), Style: chart.Style{FillColor: positiveColor, StrokeColor: positiveColor}},
			{Value: float64(negative), Label: fmt.Sprintf("negative (%d)", negative), Style: chart.Style{FillColor: negativeColor, StrokeColor: negativeColor}},
		},
	}
	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render comment histogram: %w", err)
	}
	return nil
}

// SentimentScatter plots positivity against negativity for every analyzed
// video and highlights current.
func SentimentScatter(w io.Writer, all []model.VideoSentiment, current model.VideoSentiment) error {
	var xs, ys []float64
	for _, vs := range all {
		if vs.VideoID == current.VideoID {
			continue
		}
		xs = append(xs, vs.Positive)
		ys = append(ys, vs.Negative)
	}

	series := []chart.Series{
		chart.ContinuousSeries{
			Name:    current.VideoID,
			XValues: []float64{current.Positive},
			YValues: []float64{current.Negative},
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    8,
				DotColor:    negativeColor,
			},
		},
	}
	if len(xs) > 0 {
		series = append([]chart.Series{chart.ContinuousSeries{
			Name:    "other videos",
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeWidth: chart.Disabled,
				DotWidth:    5,
				DotColor:    otherColor,
			},
		}}, series...)
	}

	graph := chart.Chart{
		Title:  "Video sentiment",
		Width:  width,
		Height: height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20},
		},
		XAxis: chart.XAxis{
			Name:  "positivity",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		YAxis: chart.YAxis{
			Name:  "negativity",
			Range: &chart.ContinuousRange{Min: 0, Max: 1},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render sentiment scatter: %w", err)
	}
	return nil
}
