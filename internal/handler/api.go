package handler

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/syre/datamining-with-python/internal/db"
	"github.com/syre/datamining-with-python/internal/middleware"
	"github.com/syre/datamining-with-python/internal/service"
)

type APIHandler struct {
	svc *service.AnalysisService
}

func NewAPIHandler(svc *service.AnalysisService) *APIHandler {
	return &APIHandler{svc: svc}
}

// GetVideo handles GET /api/videos/:videoId and returns the stored analysis.
// It never contacts the video platform.
func (h *APIHandler) GetVideo(c fiber.Ctx) error {
	videoID, errMsg := middleware.ValidateVideoID(c.Params("videoId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_VIDEO_ID", errMsg)
	}

	res, err := h.svc.Stored(c.Context(), videoID)
	if errors.Is(err, db.ErrNotFound) {
		return middleware.ErrorResponse(c, fiber.StatusNotFound, "NOT_FOUND", "Video has not been analyzed")
	}
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load analysis")
	}
	return c.JSON(res)
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}

func apiErrorCode(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return "BAD_REQUEST"
	case fiber.StatusNotFound:
		return "NOT_FOUND"
	case fiber.StatusTooManyRequests:
		return "RATE_LIMITED"
	default:
		return "INTERNAL_ERROR"
	}
}
