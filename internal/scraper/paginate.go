package scraper

import "context"

// PageFunc fetches the page at url and returns its items together with the
// URL of the next page, or "" when url was the last page.
type PageFunc[T any] func(ctx context.Context, url string) (items []T, next string, err error)

// Paginate follows next links from first, concatenating every page.
// When limit > 0 the result is cut to the first limit items and no further
// pages are requested once that many have been collected.
func Paginate[T any](ctx context.Context, first string, fetch PageFunc[T], limit int) ([]T, error) {
	var items []T
	for next := first; next != ""; {
		page, nextURL, err := fetch(ctx, next)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		if limit > 0 && len(items) >= limit {
			return items[:limit], nil
		}
		next = nextURL
	}
	return items, nil
}
