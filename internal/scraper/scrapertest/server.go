// Package scrapertest provides an in-process fake of the paging video API.
package scrapertest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Video describes a video served by the fake API.
type Video struct {
	ID             string
	Title          string
	Categories     []string
	Comments       []string
	CommentsDenied bool
	// CountHint overrides the reported comment count; len(Comments) when zero.
	CountHint int
	// Views is the reported view count; 1234 when zero.
	Views int64
}

// Server is an httptest server answering video and comment feed requests.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	videos   map[string]Video
	requests map[string]int
}

func NewServer(videos ...Video) *Server {
	s := &Server{
		videos:   make(map[string]Video),
		requests: make(map[string]int),
	}
	for _, v := range videos {
		s.videos[v.ID] = v
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// BaseURL is the value to hand to scraper.NewClient.
func (s *Server) BaseURL() string {
	return s.URL + "/feeds/api"
}

// SetVideo adds or replaces a video.
func (s *Server) SetVideo(v Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[v.ID] = v
}

// Requests returns how many requests hit the given path suffix ("info" or "comments").
func (s *Server) Requests(kind string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[kind]
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	rest, ok := strings.CutPrefix(r.URL.Path, "/feeds/api/videos/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	id, tail, _ := strings.Cut(rest, "/")

	s.mu.Lock()
	v, found := s.videos[id]
	if tail == "comments" {
		s.requests["comments"]++
	} else {
		s.requests["info"]++
	}
	s.mu.Unlock()

	if !found {
		http.Error(w, "Invalid id", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch tail {
	case "":
		json.NewEncoder(w).Encode(videoBody(v))
	case "comments":
		json.NewEncoder(w).Encode(commentsBody(r, v))
	default:
		http.NotFound(w, r)
	}
}

func text(s string) map[string]string {
	return map[string]string{"$t": s}
}

var published = time.Date(2014, 3, 1, 12, 0, 0, 0, time.UTC)

func videoBody(v Video) map[string]any {
	permission := "allowed"
	if v.CommentsDenied {
		permission = "denied"
	}
	count := v.CountHint
	if count == 0 {
		count = len(v.Comments)
	}
	views := v.Views
	if views == 0 {
		views = 1234
	}
	cats := make([]map[string]string, 0, len(v.Categories))
	for _, c := range v.Categories {
		cats = append(cats, text(c))
	}
	return map[string]any{
		"entry": map[string]any{
			"title":          text(v.Title),
			"author":         []any{map[string]any{"name": text("uploader"), "yt$userId": text("uploader-" + v.ID)}},
			"published":      text(published.Format(time.RFC3339)),
			"yt$statistics":  map[string]any{"viewCount": strconv.FormatInt(views, 10), "favoriteCount": "0"},
			"media$group":    map[string]any{"media$category": cats, "media$content": []any{map[string]any{"duration": 212}}},
			"gd$rating":      map[string]any{"average": 4.5, "numRaters": 20, "min": 1, "max": 5},
			"yt$rating":      map[string]any{"numLikes": "18", "numDislikes": "2"},
			"gd$comments":    map[string]any{"gd$feedLink": map[string]any{"countHint": count}},
			"yt$accessControl": []any{
				map[string]any{"action": "comment", "permission": permission},
				map[string]any{"action": "embed", "permission": "allowed"},
			},
		},
	}
}

func commentsBody(r *http.Request, v Video) map[string]any {
	if len(v.Comments) == 0 {
		return map[string]any{"feed": map[string]any{"link": []any{}}}
	}

	size, _ := strconv.Atoi(r.URL.Query().Get("max-results"))
	if size <= 0 {
		size = 25
	}
	start, _ := strconv.Atoi(r.URL.Query().Get("start-index"))
	if start < 1 {
		start = 1
	}

	end := min(start-1+size, len(v.Comments))
	entries := make([]any, 0, end-start+1)
	for i := start - 1; i < end; i++ {
		entries = append(entries, map[string]any{
			"id":        text(fmt.Sprintf("%s-c%d", v.ID, i)),
			"author":    []any{map[string]any{"name": text(fmt.Sprintf("user %d", i)), "yt$userId": text(fmt.Sprintf("u%d", i))}},
			"content":   text(v.Comments[i]),
			"published": text(published.Add(time.Duration(i) * time.Minute).Format(time.RFC3339)),
		})
	}

	links := []any{map[string]any{"rel": "self", "href": r.URL.String()}}
	if end < len(v.Comments) {
		next := fmt.Sprintf("http://%s%s?start-index=%d", r.Host, r.URL.Path, end+1)
		links = append(links, map[string]any{"rel": "next", "href": next})
	}
	return map[string]any{"feed": map[string]any{"entry": entries, "link": links}}
}
