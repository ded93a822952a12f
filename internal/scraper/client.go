package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/syre/datamining-with-python/internal/model"
)

var (
	// ErrInvalidVideoID is returned when the platform rejects the video id.
	ErrInvalidVideoID = errors.New("invalid video id")
	// ErrCommentsDisabled is returned for videos whose comments are turned off.
	ErrCommentsDisabled = errors.New("comments disabled for video")
	// ErrNoComments is returned when the comment feed has no entries.
	ErrNoComments = errors.New("no comments for video")
	// ErrTransport wraps network failures talking to the platform.
	ErrTransport = errors.New("video api request failed")
)

// PageSize is the number of comments requested per page.
const PageSize = 50

// Client talks to the platform's paging JSON feed API.
type Client struct {
	baseURL string
	http    *http.Client
	log     zerolog.Logger
}

// NewClient returns a client rooted at baseURL (e.g. https://gdata.youtube.com/feeds/api).
func NewClient(baseURL string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With().Str("component", "scraper").Logger(),
	}
}

// FetchComments returns the comments of a video, following next links.
// limit caps the number of comments; 0 fetches all of them.
func (c *Client) FetchComments(ctx context.Context, videoID string, limit int) ([]model.Comment, error) {
	start := fmt.Sprintf("%s/videos/%s/comments", c.baseURL, url.PathEscape(videoID))
	params := url.Values{
		"v":           {"2"},
		"alt":         {"json"},
		"max-results": {fmt.Sprint(PageSize)},
		"orderby":     {"published"},
	}

	first := true
	fetch := func(ctx context.Context, pageURL string) ([]model.Comment, string, error) {
		var feed commentFeed
		if err := c.getJSON(ctx, pageURL, params, videoID, &feed); err != nil {
			return nil, "", err
		}
		if feed.Feed.Entry == nil {
			if first {
				c.log.Error().Str("video_id", videoID).Msg("comment feed has no entries")
				return nil, "", ErrNoComments
			}
			// a trailing empty page ends the feed
			return nil, "", nil
		}
		first = false
		comments, err := decodeComments(videoID, *feed.Feed.Entry)
		if err != nil {
			return nil, "", err
		}
		return comments, feed.nextLink(), nil
	}

	comments, err := Paginate(ctx, start, fetch, limit)
	if err != nil {
		return nil, err
	}
	c.log.Debug().Str("video_id", videoID).Int("comments", len(comments)).Msg("fetched comments")
	return comments, nil
}

// FetchVideoInfo returns the video's metadata and categories.
func (c *Client) FetchVideoInfo(ctx context.Context, videoID string) (*model.Video, []model.VideoCategory, error) {
	endpoint := fmt.Sprintf("%s/videos/%s", c.baseURL, url.PathEscape(videoID))
	params := url.Values{"v": {"2"}, "alt": {"json"}}

	var feed videoFeed
	if err := c.getJSON(ctx, endpoint, params, videoID, &feed); err != nil {
		return nil, nil, err
	}

	if feed.Entry.commentsDenied() {
		c.log.Error().Str("video_id", videoID).Msg("comments disallowed for video")
		return nil, nil, fmt.Errorf("%w %s", ErrCommentsDisabled, videoID)
	}

	video, err := decodeVideo(videoID, &feed.Entry)
	if err != nil {
		return nil, nil, err
	}

	cats := make([]model.VideoCategory, 0, len(feed.Entry.MediaGroup.Category))
	for _, cat := range feed.Entry.MediaGroup.Category {
		cats = append(cats, model.VideoCategory{VideoID: videoID, Category: cat.T})
	}
	return video, cats, nil
}

// getJSON issues a GET with params merged into rawURL and decodes the body into dst.
func (c *Client) getJSON(ctx context.Context, rawURL string, params url.Values, videoID string, dst any) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	q := u.Query()
	for k, v := range params {
		q[k] = v
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Error().Err(err).Str("url", u.Redacted()).Msg("request failed")
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.log.Error().Str("video_id", videoID).Int("status", resp.StatusCode).Msg("invalid video id")
		return fmt.Errorf("%w: %s (status %d)", ErrInvalidVideoID, videoID, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		c.log.Error().Err(err).Str("video_id", videoID).Msg("decoding response")
		return fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	return nil
}

func decodeComments(videoID string, entries []commentEntry) ([]model.Comment, error) {
	comments := make([]model.Comment, 0, len(entries))
	for _, e := range entries {
		published, err := time.Parse(time.RFC3339, e.Published.T)
		if err != nil {
			return nil, fmt.Errorf("comment %s: parse published: %w", e.ID.T, err)
		}
		var a author
		if len(e.Author) > 0 {
			a = e.Author[0]
		}
		comments = append(comments, model.Comment{
			ID:         e.ID.T,
			VideoID:    videoID,
			AuthorID:   a.UserID.T,
			AuthorName: a.Name.T,
			Content:    e.Content.T,
			Published:  published,
		})
	}
	return comments, nil
}

func decodeVideo(videoID string, e *videoEntry) (*model.Video, error) {
	published, err := time.Parse(time.RFC3339, e.Published.T)
	if err != nil {
		return nil, fmt.Errorf("video %s: parse published: %w", videoID, err)
	}

	v := &model.Video{
		ID:          videoID,
		Title:       e.Title.T,
		ViewCount:   int64(e.Statistics.ViewCount),
		Published:   published,
		AnalyzedAt:  time.Now().UTC(),
		NumComments: int64(e.Comments.FeedLink.CountHint),
	}
	if len(e.Author) > 0 {
		v.AuthorID = e.Author[0].UserID.T
	}
	if len(e.MediaGroup.Content) > 0 {
		v.Duration = int64(e.MediaGroup.Content[0].Duration)
	}
	if e.Rating != nil {
		avg := e.Rating.Average
		raters := int64(e.Rating.NumRaters)
		v.Rating = &avg
		v.NumRaters = &raters
	}
	if e.Likes != nil {
		likes := int64(e.Likes.NumLikes)
		dislikes := int64(e.Likes.NumDislikes)
		v.Likes = &likes
		v.Dislikes = &dislikes
	}
	return v, nil
}
