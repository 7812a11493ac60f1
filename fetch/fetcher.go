// Package fetch turns the external news feeds into normalized item lists. Each
// source implements Fetcher; the shared Client gives every adapter the same
// timeout, retry and error discipline.
package fetch

import "context"

// Source tags, also persisted with each item.
const (
	SourceHackerNews  = "hackernews"
	SourceGeekNews    = "geeknews"
	SourceGitHub      = "github"
	SourceProductHunt = "producthunt"
)

// Item is one fetched unit of content before deduplication.
type Item struct {
	URL     string
	Title   string
	Content string
	Source  string
	Related []RelatedURL
}

// RelatedURL records a sibling occurrence of the same item on another source,
// folded in during deduplication.
type RelatedURL struct {
	URL    string
	Source string
}

// Fetcher is implemented once per external source. Fetch returns at most limit
// items, each tagged with the adapter's source.
type Fetcher interface {
	Fetch(ctx context.Context, limit int) ([]Item, error)
	Source() string
}
