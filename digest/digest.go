// Package digest orchestrates one batch run: fetch everything, reduce to the
// day's unseen balanced subset, then persist, summarize and deliver each item.
package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"digest-bot/bot"
	"digest-bot/dedup"
	"digest-bot/fetch"
	"digest-bot/lock"
	"digest-bot/storage"
	"digest-bot/summarizer"
)

// Summarizer generates one summary per delivered item.
type Summarizer interface {
	Summarize(ctx context.Context, title, url, content string) (string, error)
}

// Sender delivers formatted messages to the chat transport.
type Sender interface {
	SendText(text string) error
	SendItem(text string, itemID int64) error
}

type Digest struct {
	store          *storage.Storage
	fetchers       []fetch.Fetcher
	summarizer     Summarizer
	sender         Sender
	lock           *lock.FileLock
	limiter        *rate.Limiter
	itemsPerSource int
	logger         *slog.Logger
}

func New(
	store *storage.Storage,
	fetchers []fetch.Fetcher,
	summ Summarizer,
	sender Sender,
	lk *lock.FileLock,
	itemsPerSource int,
	logger *slog.Logger,
) *Digest {
	return &Digest{
		store:          store,
		fetchers:       fetchers,
		summarizer:     summ,
		sender:         sender,
		lock:           lk,
		limiter:        rate.NewLimiter(rate.Every(time.Second), 1),
		itemsPerSource: itemsPerSource,
		logger:         logger,
	}
}

// Run executes one digest batch. Lock contention is not an error: a second
// invocation while a run is in flight logs and returns nil without touching
// storage or the transport.
func (d *Digest) Run(ctx context.Context, batch string) error {
	if err := d.lock.TryAcquire(); err != nil {
		if errors.Is(err, lock.ErrBusy) {
			d.logger.Warn("Digest run skipped, another run is in progress", "batch", batch)
			return nil
		}
		return err
	}
	defer func() {
		if err := d.lock.Release(); err != nil {
			d.logger.Error("Failed to release digest lock", "error", err)
		}
	}()

	d.logger.Info("Starting digest run", "batch", batch)

	raw := d.fetchAll(ctx)
	if len(raw) == 0 {
		d.logger.Warn("No items fetched from any source", "batch", batch)
		return nil
	}

	sentURLs, err := d.store.TodaysSentURLs()
	if err != nil {
		d.logger.Warn("Failed to load today's sent urls", "error", err)
		sentURLs = nil
	}

	selected := dedup.Prepare(raw, dedup.ExcludeSet(sentURLs), dedup.ItemsPerBatch)
	if len(selected) == 0 {
		d.logger.Warn("No items left after deduplication", "batch", batch)
		return nil
	}

	total := len(selected)
	if err := d.sender.SendText(bot.FormatDigestHeader(batch, total)); err != nil {
		return fmt.Errorf("failed to send digest header: %w", err)
	}

	for i, item := range selected {
		if err := d.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("digest run cancelled: %w", err)
		}

		itemID, err := d.store.SaveItem(item.Source, item.URL, item.Title, item.Content)
		if err != nil {
			d.logger.Error("Failed to persist item", "url", item.URL, "error", err)
			continue
		}

		summary, err := d.summarizer.Summarize(ctx, item.Title, item.URL, item.Content)
		if err != nil || summary == "" {
			d.logger.Warn("Summarization failed, using fallback", "url", item.URL, "error", err)
			summary = summarizer.Fallback
		}

		if _, err := d.store.SaveSummary(itemID, summary, batch); err != nil {
			d.logger.Error("Failed to persist summary", "item_id", itemID, "error", err)
		}

		text := bot.FormatDigestItem(item, summary, i+1, total)
		if err := d.sender.SendItem(text, itemID); err != nil {
			d.logger.Error("Failed to deliver item", "item_id", itemID, "error", err)
		}
	}

	d.logger.Info("Digest run complete", "batch", batch, "items", total)
	return nil
}

// fetchAll fans out to every adapter and merges whatever succeeded. A failed
// source contributes zero items and never aborts the batch.
func (d *Digest) fetchAll(ctx context.Context) []fetch.Item {
	type fetchResult struct {
		source string
		items  []fetch.Item
		err    error
	}

	results := make(chan fetchResult, len(d.fetchers))
	var wg sync.WaitGroup

	for _, f := range d.fetchers {
		wg.Add(1)
		go func(f fetch.Fetcher) {
			defer wg.Done()
			items, err := f.Fetch(ctx, d.itemsPerSource)
			results <- fetchResult{source: f.Source(), items: items, err: err}
		}(f)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	bySource := make(map[string][]fetch.Item, len(d.fetchers))
	for result := range results {
		if result.err != nil {
			d.logger.Error("Failed to fetch from source", "source", result.source, "error", result.err)
			continue
		}
		d.logger.Info("Fetched items", "source", result.source, "count", len(result.items))
		bySource[result.source] = result.items
	}

	// Merge in the fetcher's configured order so selection is deterministic
	// regardless of which goroutine finished first.
	var all []fetch.Item
	for _, f := range d.fetchers {
		all = append(all, bySource[f.Source()]...)
	}

	return all
}
