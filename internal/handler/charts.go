package handler

import (
	"bytes"
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/syre/datamining-with-python/internal/chart"
	"github.com/syre/datamining-with-python/internal/db"
	"github.com/syre/datamining-with-python/internal/middleware"
	"github.com/syre/datamining-with-python/internal/service"
)

// ChartHandler serves the PNG charts embedded in the video page.
type ChartHandler struct {
	svc *service.AnalysisService
	log zerolog.Logger
}

func NewChartHandler(svc *service.AnalysisService, log zerolog.Logger) *ChartHandler {
	return &ChartHandler{svc: svc, log: log.With().Str("component", "charts").Logger()}
}

// CommentPlot handles GET /comment_sentiment_plot.png?video_id=
func (h *ChartHandler) CommentPlot(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Query("video_id"))
	if errMsg != "" {
		return fiber.NewError(fiber.StatusBadRequest, errMsg)
	}

	counts, err := h.svc.CommentDistribution(c.Context(), videoID)
	if err != nil {
		return h.lookupError(videoID, err)
	}

	var buf bytes.Buffer
	if err := chart.CommentHistogram(&buf, counts.Positive, counts.Negative); err != nil {
		return err
	}
	return sendPNG(c, buf.Bytes())
}

// VideoPlot handles GET /video_sentiment_plot.png?video_id=
func (h *ChartHandler) VideoPlot(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Query("video_id"))
	if errMsg != "" {
		return fiber.NewError(fiber.StatusBadRequest, errMsg)
	}

	all, current, err := h.svc.SentimentPoints(c.Context(), videoID)
	if err != nil {
		return h.lookupError(videoID, err)
	}

	var buf bytes.Buffer
	if err := chart.SentimentScatter(&buf, all, *current); err != nil {
		return err
	}
	return sendPNG(c, buf.Bytes())
}

func (h *ChartHandler) lookupError(videoID string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "video "+videoID+" has not been analyzed")
	}
	h.log.Error().Err(err).Str("video_id", videoID).Msg("chart data lookup failed")
	return err
}

func sendPNG(c fiber.Ctx, png []byte) error {
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	return c.Send(png)
}
