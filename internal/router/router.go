package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/syre/datamining-with-python/internal/handler"
	"github.com/syre/datamining-with-python/internal/metrics"
	"github.com/syre/datamining-with-python/internal/middleware"
	"github.com/syre/datamining-with-python/web"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Pages  *handler.PageHandler
	Charts *handler.ChartHandler
	API    *handler.APIHandler
	Stats  *handler.StatsHandler
	Health *handler.HealthHandler
}

// Options tunes the middleware stack.
type Options struct {
	CORSOrigins string
	// AnalysisPerMinute limits GET /video per client IP.
	AnalysisPerMinute int
}

// AppConfig returns the Fiber configuration the routes expect: embedded
// views and an error handler rendering the error page.
func AppConfig(h *Handlers) fiber.Config {
	return fiber.Config{
		AppName:      "sentimentube",
		ServerHeader: "sentimentube",
		Views:        web.Views(),
		ErrorHandler: h.Pages.Error,
	}
}

// Setup configures the middleware stack and all routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, opts Options) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(metrics.Middleware())

	// Health and metrics
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)
	app.Get("/metrics", metrics.Handler())

	// Pages
	app.Get("/", h.Pages.Index)
	app.Get("/about", h.Pages.About)
	app.Get("/previous", h.Pages.Previous)
	analysisLimiter := middleware.NewAnalysisRateLimiter(opts.AnalysisPerMinute, h.Pages.RateLimited)
	app.Get("/video", analysisLimiter.Handler(), h.Pages.Video)

	// Charts
	app.Get("/comment_sentiment_plot.png", h.Charts.CommentPlot)
	app.Get("/video_sentiment_plot.png", h.Charts.VideoPlot)

	// API routes
	api := app.Group("/api", middleware.NewCORS(opts.CORSOrigins), middleware.NewAPIRateLimiter().Handler())
	api.Get("/videos/:videoId", h.API.GetVideo)
	api.Get("/stats", h.Stats.GetStats)
}
