package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"

	"github.com/syre/datamining-with-python/internal/db"
	"github.com/syre/datamining-with-python/internal/handler"
	"github.com/syre/datamining-with-python/internal/model"
	"github.com/syre/datamining-with-python/internal/repository"
	"github.com/syre/datamining-with-python/internal/scraper"
	"github.com/syre/datamining-with-python/internal/scraper/scrapertest"
	"github.com/syre/datamining-with-python/internal/sentiment"
	"github.com/syre/datamining-with-python/internal/service"
)

var testCorpus = []sentiment.Sample{
	{Text: "love love wonderful", Positive: true},
	{Text: "sweet lovely", Positive: true},
	{Text: "happy joyful", Positive: true},
	{Text: "hate hate awful", Positive: false},
	{Text: "idiot stupid", Positive: false},
	{Text: "mad angry", Positive: false},
}

var testVideos = []scrapertest.Video{
	{
		ID:         "happyvid001",
		Title:      "A happy video",
		Categories: []string{"Music"},
		Comments:   []string{"love wonderful", "hate awful", "sweet happy", "lovely"},
	},
	{ID: "deniedvid01", Title: "closed", Comments: []string{"love"}, CommentsDenied: true},
	{ID: "silentvid01", Title: "silent"},
}

var pngSignature = "\x89PNG\r\n\x1a\n"

func newTestApp(t *testing.T, analysisPerMinute int) *fiber.App {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(conn.Close)
	if err := db.Migrate(ctx, conn); err != nil {
		t.Fatalf("Migrate: %v", err)
	}

	clf, err := sentiment.Train(testCorpus)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	api := scrapertest.NewServer(testVideos...)
	t.Cleanup(api.Close)

	log := zerolog.Nop()
	cache := service.NewCacheService("", log)
	svc := service.NewAnalysisService(
		repository.NewSentimentRepo(conn),
		scraper.NewClient(api.BaseURL(), 5*time.Second, log),
		sentiment.NewAnalyzer(clf, log),
		cache,
		0,
		log,
	)

	h := &Handlers{
		Pages:  handler.NewPageHandler(svc, log),
		Charts: handler.NewChartHandler(svc, log),
		API:    handler.NewAPIHandler(svc),
		Stats:  handler.NewStatsHandler(svc),
		Health: handler.NewHealthHandler(conn, cache.Client()),
	}
	app := fiber.New(AppConfig(h))
	Setup(app, h, Options{CORSOrigins: "*", AnalysisPerMinute: analysisPerMinute})
	return app
}

func get(t *testing.T, app *fiber.App, target string) (*http.Response, string) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil), fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body of %s: %v", target, err)
	}
	return resp, string(body)
}

func videoURL(input string) string {
	return "/video?video_id=" + url.QueryEscape(input)
}

func TestStaticPages(t *testing.T) {
	app := newTestApp(t, 100)

	tests := []struct {
		path string
		want string
	}{
		{"/", `<form action="/video"`},
		{"/about", "Naive Bayes"},
		{"/previous", "No videos have been analyzed yet."},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := get(t, app, tt.path)
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body does not contain %q", tt.want)
			}
			if !strings.Contains(body, "<nav>") {
				t.Error("page not rendered inside the layout")
			}
		})
	}
}

func TestVideoPage(t *testing.T) {
	app := newTestApp(t, 100)

	resp, body := get(t, app, videoURL("happyvid001"))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200: %s", resp.StatusCode, body)
	}
	for _, want := range []string{"A happy video", "strong positive", "75.0%", "/comment_sentiment_plot.png?video_id=happyvid001"} {
		if !strings.Contains(body, want) {
			t.Errorf("video page does not contain %q", want)
		}
	}

	resp, body = get(t, app, videoURL("https://www.youtube.com/watch?v=happyvid001"))
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("watch URL status = %d, want 200", resp.StatusCode)
	}
	if !strings.Contains(body, "(stored result)") {
		t.Error("second request should show the stored result")
	}

	_, body = get(t, app, "/previous")
	if !strings.Contains(body, "A happy video") {
		t.Error("previous page does not list the analyzed video")
	}
}

func TestVideoPage_Errors(t *testing.T) {
	app := newTestApp(t, 100)

	tests := []struct {
		name   string
		input  string
		status int
		want   string
	}{
		{"malformed id", "bad", fiber.StatusBadRequest, "invalid video id"},
		{"missing id", "", fiber.StatusBadRequest, "video id is required"},
		{"unknown video", "missingvid1", fiber.StatusBadRequest, "invalid video id"},
		{"comments disabled", "deniedvid01", fiber.StatusUnprocessableEntity, "comments disabled for video deniedvid01"},
		{"no comments", "silentvid01", fiber.StatusUnprocessableEntity, "has no comments"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := get(t, app, videoURL(tt.input))
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if !strings.Contains(body, tt.want) {
				t.Errorf("body does not contain %q: %s", tt.want, body)
			}
		})
	}
}

func TestVideoPage_RateLimited(t *testing.T) {
	app := newTestApp(t, 1)

	if resp, _ := get(t, app, videoURL("happyvid001")); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("first status = %d, want 200", resp.StatusCode)
	}
	resp, body := get(t, app, videoURL("happyvid001"))
	if resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("second status = %d, want 429", resp.StatusCode)
	}
	if !strings.Contains(body, "too many analyses") {
		t.Errorf("body = %s, want rate limit page", body)
	}
}

func TestChartEndpoints(t *testing.T) {
	app := newTestApp(t, 100)

	for _, path := range []string{"/comment_sentiment_plot.png?video_id=happyvid001", "/video_sentiment_plot.png?video_id=happyvid001"} {
		resp, _ := get(t, app, path)
		if resp.StatusCode != fiber.StatusNotFound {
			t.Errorf("%s before analysis: status = %d, want 404", path, resp.StatusCode)
		}
	}

	if resp, _ := get(t, app, videoURL("happyvid001")); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("analysis status = %d", resp.StatusCode)
	}

	for _, path := range []string{"/comment_sentiment_plot.png?video_id=happyvid001", "/video_sentiment_plot.png?video_id=happyvid001"} {
		resp, body := get(t, app, path)
		if resp.StatusCode != fiber.StatusOK {
			t.Fatalf("%s: status = %d, want 200", path, resp.StatusCode)
		}
		if ct := resp.Header.Get(fiber.HeaderContentType); ct != "image/png" {
			t.Errorf("%s: content type = %q", path, ct)
		}
		if !strings.HasPrefix(body, pngSignature) {
			t.Errorf("%s: body is not a PNG", path)
		}
	}

	if resp, _ := get(t, app, "/comment_sentiment_plot.png"); resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("missing video_id: status = %d, want 400", resp.StatusCode)
	}
}

func TestAPIVideo(t *testing.T) {
	app := newTestApp(t, 100)

	resp, body := get(t, app, "/api/videos/happyvid001")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("before analysis: status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(body, "NOT_FOUND") {
		t.Errorf("body = %s, want NOT_FOUND error", body)
	}

	if resp, _ := get(t, app, videoURL("happyvid001")); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("analysis status = %d", resp.StatusCode)
	}

	resp, body = get(t, app, "/api/videos/happyvid001")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("after analysis: status = %d, want 200", resp.StatusCode)
	}
	var res model.VideoResult
	if err := json.Unmarshal([]byte(body), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Video.ID != "happyvid001" || res.Sentiment.Verdict != model.StrongPositive || res.NumAnalyzed != 4 {
		t.Errorf("result = %+v", res)
	}
	if !res.FromStore {
		t.Error("API result should come from the store")
	}

	if resp, _ := get(t, app, "/api/videos/bad"); resp.StatusCode != fiber.StatusBadRequest {
		t.Errorf("bad id: status = %d, want 400", resp.StatusCode)
	}
}

func TestAPIStats(t *testing.T) {
	app := newTestApp(t, 100)

	if resp, _ := get(t, app, videoURL("happyvid001")); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("analysis status = %d", resp.StatusCode)
	}

	resp, body := get(t, app, "/api/stats")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var stats model.Stats
	if err := json.Unmarshal([]byte(body), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats.TotalVideos != 1 || stats.PositiveComments != 3 || stats.NegativeComments != 1 {
		t.Errorf("stats = %+v", stats)
	}
	if stats.TopCategories["Music"] != 1 {
		t.Errorf("TopCategories = %v", stats.TopCategories)
	}
}

func TestAPICORS(t *testing.T) {
	app := newTestApp(t, 100)

	req := httptest.NewRequest(fiber.MethodGet, "/api/stats", nil)
	req.Header.Set(fiber.HeaderOrigin, "https://example.com")
	resp, err := app.Test(req, fiber.TestConfig{Timeout: 10 * time.Second})
	if err != nil {
		t.Fatalf("GET /api/stats: %v", err)
	}
	if got := resp.Header.Get(fiber.HeaderAccessControlAllowOrigin); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestNotFound(t *testing.T) {
	app := newTestApp(t, 100)

	resp, body := get(t, app, "/no/such/page")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(body, "page not found") {
		t.Errorf("body = %s, want error page", body)
	}

	resp, body = get(t, app, "/api/nothing")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("api status = %d, want 404", resp.StatusCode)
	}
	if !strings.Contains(body, `"code":"NOT_FOUND"`) {
		t.Errorf("api body = %s, want JSON error", body)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, 100)

	if resp, _ := get(t, app, "/health/live"); resp.StatusCode != fiber.StatusOK {
		t.Errorf("live status = %d, want 200", resp.StatusCode)
	}

	resp, body := get(t, app, "/health/ready")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("ready status = %d, want 200: %s", resp.StatusCode, body)
	}
	var ready struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status string `json:"status"`
			Driver string `json:"driver"`
		} `json:"checks"`
	}
	if err := json.Unmarshal([]byte(body), &ready); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ready.Status != "healthy" {
		t.Errorf("status = %q, want healthy", ready.Status)
	}
	if ready.Checks["database"].Driver != db.DriverSQLite {
		t.Errorf("database driver = %q", ready.Checks["database"].Driver)
	}
	if ready.Checks["redis"].Status != "disabled" {
		t.Errorf("redis status = %q, want disabled", ready.Checks["redis"].Status)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t, 100)

	resp, _ := get(t, app, "/metrics")
	if resp.StatusCode != fiber.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
