package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/syre/datamining-with-python/internal/middleware"
	"github.com/syre/datamining-with-python/internal/service"
)

type StatsHandler struct {
	svc *service.AnalysisService
}

func NewStatsHandler(svc *service.AnalysisService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GetStats handles GET /api/stats
func (h *StatsHandler) GetStats(c fiber.Ctx) error {
	stats, err := h.svc.Stats(c.Context())
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to fetch statistics")
	}

	return c.JSON(stats)
}
