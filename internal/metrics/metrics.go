package metrics

import (
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/syre/datamining-with-python/internal/db"
)

// Metrics holds all Prometheus collectors of the service. The collectors
// exist from package init so callers can record before Register runs.
var Metrics = struct {
	AnalysesTotal      *prometheus.CounterVec
	CommentsClassified *prometheus.CounterVec
	RequestDuration    *prometheus.HistogramVec
	RequestsInFlight   prometheus.Gauge
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	AnalysisDuration   prometheus.Histogram
}{
	AnalysesTotal: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentimentube_analyses_total",
			Help: "Video analysis requests, by outcome (fresh, stored, error).",
		},
		[]string{"outcome"},
	),
	CommentsClassified: prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentimentube_comments_classified_total",
			Help: "Comments classified, by polarity.",
		},
		[]string{"polarity"},
	),
	RequestDuration: prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentimentube_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	),
	RequestsInFlight: prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentimentube_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	),
	CacheHits: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentimentube_cache_hits_total",
			Help: "Total Redis cache hits.",
		},
	),
	CacheMisses: prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sentimentube_cache_misses_total",
			Help: "Total Redis cache misses.",
		},
	),
	AnalysisDuration: prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentimentube_analysis_duration_seconds",
			Help:    "Duration of fetching and classifying a video's comments.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
	),
}

// Register registers all collectors with the default registry. Call once at startup.
func Register(conn db.Conn) {
	if conn != nil {
		prometheus.MustRegister(
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "sentimentube_db_connections_in_use",
					Help: "Number of database connections in use.",
				},
				func() float64 { return float64(conn.Stats().InUse) },
			),
			prometheus.NewGaugeFunc(
				prometheus.GaugeOpts{
					Name: "sentimentube_db_connections_idle",
					Help: "Number of idle database connections.",
				},
				func() float64 { return float64(conn.Stats().Idle) },
			),
		)
	}

	prometheus.MustRegister(
		Metrics.AnalysesTotal,
		Metrics.CommentsClassified,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
		Metrics.CacheHits,
		Metrics.CacheMisses,
		Metrics.AnalysisDuration,
	)
}

// Middleware records request duration and in-flight count.
func Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy before c.Next(): Fiber hands out slices backed by the fasthttp
		// buffer, which handlers may reuse.
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint keeps label cardinality bounded.
func sanitizeEndpoint(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/videos/"):
		return "/api/videos/:videoId"
	case strings.HasPrefix(path, "/static/"):
		return "/static"
	default:
		return path
	}
}

// Handler serves the Prometheus exposition format via Fiber.
func Handler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.RequestCtx())
		return nil
	}
}
