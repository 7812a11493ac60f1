package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

const defaultHackerNewsBaseURL = "https://hacker-news.firebaseio.com"

type hackerNewsItem struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
	Text  string `json:"text"`
}

// HackerNewsFetcher reads the ranked top-story ID list, then resolves item
// details concurrently. Individual item failures are logged and dropped; the
// fetch succeeds with whatever subset resolved.
type HackerNewsFetcher struct {
	baseURL string
	client  *Client
	logger  *slog.Logger
}

func NewHackerNewsFetcher(baseURL string, logger *slog.Logger) *HackerNewsFetcher {
	if baseURL == "" {
		baseURL = defaultHackerNewsBaseURL
	}
	return &HackerNewsFetcher{
		baseURL: baseURL,
		client:  NewClient(SourceHackerNews, logger),
		logger:  logger,
	}
}

func (f *HackerNewsFetcher) Source() string {
	return SourceHackerNews
}

func (f *HackerNewsFetcher) Fetch(ctx context.Context, limit int) ([]Item, error) {
	var ids []int64
	if err := f.client.GetJSON(ctx, f.baseURL+"/v0/topstories.json", &ids); err != nil {
		return nil, err
	}

	if len(ids) > limit {
		ids = ids[:limit]
	}

	type itemResult struct {
		index int
		item  *Item
		err   error
	}

	results := make(chan itemResult, len(ids))
	var wg sync.WaitGroup

	for i, id := range ids {
		wg.Add(1)
		go func(index int, storyID int64) {
			defer wg.Done()
			item, err := f.fetchStory(ctx, storyID)
			results <- itemResult{index: index, item: item, err: err}
		}(i, id)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]*Item, len(ids))
	for result := range results {
		if result.err != nil {
			f.logger.Warn("Failed to fetch story", "source", f.Source(), "error", result.err)
			continue
		}
		ordered[result.index] = result.item
	}

	items := make([]Item, 0, len(ids))
	for _, item := range ordered {
		if item != nil {
			items = append(items, *item)
		}
	}

	return items, nil
}

func (f *HackerNewsFetcher) fetchStory(ctx context.Context, id int64) (*Item, error) {
	var story hackerNewsItem
	url := fmt.Sprintf("%s/v0/item/%d.json", f.baseURL, id)
	if err := f.client.GetJSON(ctx, url, &story); err != nil {
		return nil, err
	}

	if story.ID == 0 || story.Title == "" {
		return nil, fmt.Errorf("story %d has no content", id)
	}

	// Ask/Show posts carry no external URL; the discussion permalink stands in
	// so the item still has a dedup identity.
	storyURL := story.URL
	if storyURL == "" {
		storyURL = fmt.Sprintf("https://news.ycombinator.com/item?id=%d", story.ID)
	}

	return &Item{
		URL:     storyURL,
		Title:   story.Title,
		Content: story.Text,
		Source:  f.Source(),
	}, nil
}
