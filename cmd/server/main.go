package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/syre/datamining-with-python/internal/config"
	"github.com/syre/datamining-with-python/internal/db"
	"github.com/syre/datamining-with-python/internal/handler"
	"github.com/syre/datamining-with-python/internal/metrics"
	"github.com/syre/datamining-with-python/internal/middleware"
	"github.com/syre/datamining-with-python/internal/repository"
	"github.com/syre/datamining-with-python/internal/router"
	"github.com/syre/datamining-with-python/internal/scraper"
	"github.com/syre/datamining-with-python/internal/sentiment"
	"github.com/syre/datamining-with-python/internal/service"
)

func main() {
	cfg := config.Load()
	middleware.InitLogger(cfg.LogLevel, "sentimentube")
	log := middleware.Logger

	ctx := context.Background()
	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	clf, err := sentiment.LoadOrTrain(cfg.ClassifierPath, cfg.CorpusPath, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load classifier")
	}

	cache := service.NewCacheService(cfg.RedisURL, log)
	defer cache.Close()

	metrics.Register(conn)

	svc := service.NewAnalysisService(
		repository.NewSentimentRepo(conn),
		scraper.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, log),
		sentiment.NewAnalyzer(clf, log),
		cache,
		cfg.CommentLimit,
		log,
	)

	h := &router.Handlers{
		Pages:  handler.NewPageHandler(svc, log),
		Charts: handler.NewChartHandler(svc, log),
		API:    handler.NewAPIHandler(svc),
		Stats:  handler.NewStatsHandler(svc),
		Health: handler.NewHealthHandler(conn, cache.Client()),
	}

	app := fiber.New(router.AppConfig(h))
	router.Setup(app, h, router.Options{
		CORSOrigins:       cfg.CORSOrigins,
		AnalysisPerMinute: cfg.AnalysisRateLimit,
	})

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		log.Info().Msg("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Str("env", cfg.Environment).
		Str("driver", conn.Driver()).
		Msg("sentimentube starting")
	if err := app.Listen(":"+cfg.Port, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
