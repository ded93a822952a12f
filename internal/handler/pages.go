package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/syre/datamining-with-python/internal/middleware"
	"github.com/syre/datamining-with-python/internal/scraper"
	"github.com/syre/datamining-with-python/internal/sentiment"
	"github.com/syre/datamining-with-python/internal/service"
	"github.com/syre/datamining-with-python/web"
)

const genericFailure = "something went wrong while analyzing the video, please try again later"

// PageHandler serves the HTML pages.
type PageHandler struct {
	svc *service.AnalysisService
	log zerolog.Logger
}

func NewPageHandler(svc *service.AnalysisService, log zerolog.Logger) *PageHandler {
	return &PageHandler{svc: svc, log: log.With().Str("component", "pages").Logger()}
}

// Index handles GET /
func (h *PageHandler) Index(c fiber.Ctx) error {
	return c.Render("index", fiber.Map{"Title": "Analyze a video"}, web.Layout)
}

// About handles GET /about
func (h *PageHandler) About(c fiber.Ctx) error {
	return c.Render("about", fiber.Map{"Title": "About"}, web.Layout)
}

// Video handles GET /video?video_id=, accepting a bare id or a watch URL.
func (h *PageHandler) Video(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Query("video_id"))
	if errMsg != "" {
		return h.renderError(c, fiber.StatusBadRequest, errMsg)
	}

	res, err := h.svc.Analyze(c.Context(), videoID)
	if err != nil {
		status, msg := analysisFailure(videoID, err)
		if status >= fiber.StatusInternalServerError {
			h.log.Error().Err(err).Str("video_id", videoID).Msg("analysis failed")
		}
		return h.renderError(c, status, msg)
	}

	return c.Render("video", fiber.Map{
		"Title":  res.Video.Title,
		"Result": res,
	}, web.Layout)
}

// Previous handles GET /previous
func (h *PageHandler) Previous(c fiber.Ctx) error {
	latest, err := h.svc.Latest(c.Context(), service.LatestLimit)
	if err != nil {
		h.log.Error().Err(err).Msg("loading latest analyses failed")
		return h.renderError(c, fiber.StatusInternalServerError, "could not load previous analyses")
	}
	return c.Render("previous", fiber.Map{
		"Title":  "Previous analyses",
		"Latest": latest,
	}, web.Layout)
}

// RateLimited renders the rejection of the analysis rate limiter.
func (h *PageHandler) RateLimited(c fiber.Ctx, retryAfter int) error {
	return h.renderError(c, fiber.StatusTooManyRequests,
		fmt.Sprintf("too many analyses requested, try again in %d seconds", retryAfter))
}

// Error is the application error handler. API routes get JSON, everything
// else the error page.
func (h *PageHandler) Error(c fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := genericFailure
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		msg = fe.Message
		if status == fiber.StatusNotFound {
			msg = "page not found"
		}
	}
	if status >= fiber.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	}

	if isAPIPath(c.Path()) {
		return middleware.ErrorResponse(c, status, apiErrorCode(status), msg)
	}
	return h.renderError(c, status, msg)
}

func (h *PageHandler) renderError(c fiber.Ctx, status int, msg string) error {
	return c.Status(status).Render("error", fiber.Map{
		"Title": "Error",
		"Error": msg,
	}, web.Layout)
}

// analysisFailure maps an analysis error to a status and a user-facing message.
func analysisFailure(videoID string, err error) (int, string) {
	switch {
	case errors.Is(err, scraper.ErrInvalidVideoID):
		return fiber.StatusBadRequest, "invalid video id"
	case errors.Is(err, scraper.ErrCommentsDisabled):
		return fiber.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, scraper.ErrNoComments), errors.Is(err, sentiment.ErrNoComments):
		return fiber.StatusUnprocessableEntity, "video " + videoID + " has no comments to analyze"
	case errors.Is(err, scraper.ErrTransport):
		return fiber.StatusBadGateway, "the video platform could not be reached, please try again later"
	default:
		return fiber.StatusInternalServerError, genericFailure
	}
}
