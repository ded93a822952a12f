package scraper

import (
	"bytes"
	"strconv"
)

// text is the {"$t": "..."} wrapper the feed uses for scalar values.
type text struct {
	T string `json:"$t"`
}

// flexInt decodes integers the feed sends either as JSON numbers or as strings.
type flexInt int64

func (n *flexInt) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(b), 64)
		if ferr != nil {
			return err
		}
		v = int64(f)
	}
	*n = flexInt(v)
	return nil
}

type link struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type author struct {
	Name   text `json:"name"`
	UserID text `json:"yt$userId"`
}

type commentFeed struct {
	Feed struct {
		// Entry is nil when the feed carries no "entry" key at all.
		Entry *[]commentEntry `json:"entry"`
		Link  []link          `json:"link"`
	} `json:"feed"`
}

type commentEntry struct {
	ID        text     `json:"id"`
	Author    []author `json:"author"`
	Content   text     `json:"content"`
	Published text     `json:"published"`
}

func (f *commentFeed) nextLink() string {
	for _, l := range f.Feed.Link {
		if l.Rel == "next" {
			return l.Href
		}
	}
	return ""
}

type videoFeed struct {
	Entry videoEntry `json:"entry"`
}

type videoEntry struct {
	Title      text     `json:"title"`
	Author     []author `json:"author"`
	Published  text     `json:"published"`
	Statistics struct {
		ViewCount flexInt `json:"viewCount"`
	} `json:"yt$statistics"`
	MediaGroup struct {
		Category []text `json:"media$category"`
		Content  []struct {
			Duration flexInt `json:"duration"`
		} `json:"media$content"`
	} `json:"media$group"`
	Rating *struct {
		Average   float64 `json:"average"`
		NumRaters flexInt `json:"numRaters"`
	} `json:"gd$rating"`
	Likes *struct {
		NumLikes    flexInt `json:"numLikes"`
		NumDislikes flexInt `json:"numDislikes"`
	} `json:"yt$rating"`
	Comments struct {
		FeedLink struct {
			CountHint flexInt `json:"countHint"`
		} `json:"gd$feedLink"`
	} `json:"gd$comments"`
	AccessControl []struct {
		Action     string `json:"action"`
		Permission string `json:"permission"`
	} `json:"yt$accessControl"`
}

// commentsDenied reports whether the uploader disabled comments.
func (e *videoEntry) commentsDenied() bool {
	for _, ac := range e.AccessControl {
		if ac.Action == "comment" {
			return ac.Permission == "denied"
		}
	}
	return false
}
