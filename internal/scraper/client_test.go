package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/syre/datamining-with-python/internal/scraper/scrapertest"
)

func newTestClient(baseURL string) *Client {
	return NewClient(baseURL, 5*time.Second, zerolog.Nop())
}

func manyComments(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("comment number %d", i)
	}
	return out
}

func TestFetchComments_AllPages(t *testing.T) {
	api := scrapertest.NewServer(scrapertest.Video{ID: "dQw4w9WgXcQ", Comments: manyComments(120)})
	defer api.Close()

	comments, err := newTestClient(api.BaseURL()).FetchComments(context.Background(), "dQw4w9WgXcQ", 0)
	if err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	if len(comments) != 120 {
		t.Fatalf("len = %d, want 120", len(comments))
	}
	if got := api.Requests("comments"); got != 3 {
		t.Errorf("comment pages requested = %d, want 3", got)
	}

	c := comments[51]
	if c.ID != "dQw4w9WgXcQ-c51" || c.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("comment = %+v", c)
	}
	if c.Content != "comment number 51" || c.AuthorName != "user 51" || c.AuthorID != "u51" {
		t.Errorf("comment fields = %+v", c)
	}
	if c.Published.IsZero() {
		t.Error("published not parsed")
	}
}

func TestFetchComments_Capped(t *testing.T) {
	api := scrapertest.NewServer(scrapertest.Video{ID: "dQw4w9WgXcQ", Comments: manyComments(500)})
	defer api.Close()

	comments, err := newTestClient(api.BaseURL()).FetchComments(context.Background(), "dQw4w9WgXcQ", 75)
	if err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	if len(comments) != 75 {
		t.Fatalf("len = %d, want 75", len(comments))
	}
	if comments[74].ID != "dQw4w9WgXcQ-c74" {
		t.Errorf("last comment = %s, want prefix ending at c74", comments[74].ID)
	}
	if got := api.Requests("comments"); got != 2 {
		t.Errorf("comment pages requested = %d, want 2", got)
	}
}

func TestFetchComments_SendsPagingParams(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query = map[string]string{
			"v":           q.Get("v"),
			"alt":         q.Get("alt"),
			"max-results": q.Get("max-results"),
			"orderby":     q.Get("orderby"),
		}
		w.Write([]byte(`{"feed":{"entry":[],"link":[]}}`))
	}))
	defer srv.Close()

	if _, err := newTestClient(srv.URL).FetchComments(context.Background(), "abcdefghijk", 0); err != nil {
		t.Fatalf("FetchComments: %v", err)
	}
	want := map[string]string{"v": "2", "alt": "json", "max-results": "50", "orderby": "published"}
	for k, v := range want {
		if query[k] != v {
			t.Errorf("param %s = %q, want %q", k, query[k], v)
		}
	}
}

func TestFetchComments_InvalidID(t *testing.T) {
	api := scrapertest.NewServer()
	defer api.Close()

	_, err := newTestClient(api.BaseURL()).FetchComments(context.Background(), "wrong url", 0)
	if !errors.Is(err, ErrInvalidVideoID) {
		t.Fatalf("err = %v, want ErrInvalidVideoID", err)
	}
}

func TestFetchComments_NoEntries(t *testing.T) {
	api := scrapertest.NewServer(scrapertest.Video{ID: "dQw4w9WgXcQ"})
	defer api.Close()

	_, err := newTestClient(api.BaseURL()).FetchComments(context.Background(), "dQw4w9WgXcQ", 0)
	if !errors.Is(err, ErrNoComments) {
		t.Fatalf("err = %v, want ErrNoComments", err)
	}
}

func TestFetchComments_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	_, err := newTestClient(base).FetchComments(context.Background(), "dQw4w9WgXcQ", 0)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("err = %v, want ErrTransport", err)
	}
	if errors.Is(err, ErrInvalidVideoID) {
		t.Error("transport failure must not look like an invalid id")
	}
}

func TestFetchVideoInfo(t *testing.T) {
	api := scrapertest.NewServer(scrapertest.Video{
		ID:         "dQw4w9WgXcQ",
		Title:      "Never Gonna Give You Up",
		Categories: []string{"Music", "Entertainment"},
		Comments:   manyComments(3),
		CountHint:  42,
	})
	defer api.Close()

	video, cats, err := newTestClient(api.BaseURL()).FetchVideoInfo(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("FetchVideoInfo: %v", err)
	}
	if video.Title != "Never Gonna Give You Up" {
		t.Errorf("Title = %q", video.Title)
	}
	if video.AuthorID != "uploader-dQw4w9WgXcQ" {
		t.Errorf("AuthorID = %q", video.AuthorID)
	}
	if video.ViewCount != 1234 || video.Duration != 212 {
		t.Errorf("ViewCount = %d, Duration = %d", video.ViewCount, video.Duration)
	}
	if video.NumComments != 42 {
		t.Errorf("NumComments = %d, want 42", video.NumComments)
	}
	if video.Likes == nil || *video.Likes != 18 || video.Dislikes == nil || *video.Dislikes != 2 {
		t.Errorf("likes/dislikes = %v/%v", video.Likes, video.Dislikes)
	}
	if video.Rating == nil || *video.Rating != 4.5 || video.NumRaters == nil || *video.NumRaters != 20 {
		t.Errorf("rating = %v raters = %v", video.Rating, video.NumRaters)
	}
	if video.AnalyzedAt.IsZero() {
		t.Error("AnalyzedAt not set")
	}
	if len(cats) != 2 || cats[0].Category != "Music" || cats[1].VideoID != "dQw4w9WgXcQ" {
		t.Errorf("categories = %+v", cats)
	}
}

func TestFetchVideoInfo_OptionalRatings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"entry":{
			"title":{"$t":"t"},
			"author":[{"name":{"$t":"n"},"yt$userId":{"$t":"uid"}}],
			"published":{"$t":"2014-03-01T12:00:00.000Z"},
			"yt$statistics":{"viewCount":"7"},
			"media$group":{"media$category":[],"media$content":[{"duration":"9"}]},
			"gd$comments":{"gd$feedLink":{"countHint":3}},
			"yt$accessControl":[{"action":"comment","permission":"allowed"}]
		}}`))
	}))
	defer srv.Close()

	video, _, err := newTestClient(srv.URL).FetchVideoInfo(context.Background(), "abcdefghijk")
	if err != nil {
		t.Fatalf("FetchVideoInfo: %v", err)
	}
	if video.Rating != nil || video.NumRaters != nil || video.Likes != nil || video.Dislikes != nil {
		t.Errorf("expected nil ratings, got %+v", video)
	}
	if video.ViewCount != 7 || video.Duration != 9 || video.NumComments != 3 {
		t.Errorf("counts = %d/%d/%d", video.ViewCount, video.Duration, video.NumComments)
	}
}

func TestFetchVideoInfo_CommentsDisabled(t *testing.T) {
	api := scrapertest.NewServer(scrapertest.Video{ID: "dQw4w9WgXcQ", CommentsDenied: true})
	defer api.Close()

	_, _, err := newTestClient(api.BaseURL()).FetchVideoInfo(context.Background(), "dQw4w9WgXcQ")
	if !errors.Is(err, ErrCommentsDisabled) {
		t.Fatalf("err = %v, want ErrCommentsDisabled", err)
	}
}

func TestFetchVideoInfo_InvalidID(t *testing.T) {
	api := scrapertest.NewServer()
	defer api.Close()

	_, _, err := newTestClient(api.BaseURL()).FetchVideoInfo(context.Background(), "wrong url")
	if !errors.Is(err, ErrInvalidVideoID) {
		t.Fatalf("err = %v, want ErrInvalidVideoID", err)
	}
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{`12`, 12},
		{`"12"`, 12},
		{`""`, 0},
		{`null`, 0},
		{`3.0`, 3},
	}
	for _, tt := range tests {
		var n flexInt
		if err := n.UnmarshalJSON([]byte(tt.in)); err != nil {
			t.Errorf("UnmarshalJSON(%s): %v", tt.in, err)
			continue
		}
		if int64(n) != tt.want {
			t.Errorf("UnmarshalJSON(%s) = %d, want %d", tt.in, n, tt.want)
		}
	}
}
