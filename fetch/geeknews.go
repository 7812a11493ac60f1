package fetch

import (
	"context"
	"log/slog"

	"github.com/mmcdole/gofeed"
)

const defaultGeekNewsFeedURL = "https://news.hada.io/rss/news"

// GeekNewsFetcher parses the GeekNews syndication feed. Entries map 1:1 to
// items; a feed that fails to parse fails the whole call.
type GeekNewsFetcher struct {
	feedURL string
	client  *Client
	logger  *slog.Logger
}

func NewGeekNewsFetcher(feedURL string, logger *slog.Logger) *GeekNewsFetcher {
	if feedURL == "" {
		feedURL = defaultGeekNewsFeedURL
	}
	return &GeekNewsFetcher{
		feedURL: feedURL,
		client:  NewClient(SourceGeekNews, logger),
		logger:  logger,
	}
}

func (f *GeekNewsFetcher) Source() string {
	return SourceGeekNews
}

func (f *GeekNewsFetcher) Fetch(ctx context.Context, limit int) ([]Item, error) {
	body, err := f.client.GetText(ctx, f.feedURL)
	if err != nil {
		return nil, err
	}

	feed, err := gofeed.NewParser().ParseString(body)
	if err != nil {
		return nil, &FetchError{Source: f.Source(), Message: "failed to parse feed", Err: err}
	}

	items := make([]Item, 0, limit)
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		if entry.Link == "" || entry.Title == "" {
			continue
		}
		items = append(items, Item{
			URL:     entry.Link,
			Title:   entry.Title,
			Content: entry.Description,
			Source:  f.Source(),
		})
	}

	f.logger.Info("Fetched feed entries", "source", f.Source(), "count", len(items))
	return items, nil
}
