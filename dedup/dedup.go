// Package dedup filters a merged batch of fetched items down to the unique,
// source-balanced subset that a digest actually sends.
package dedup

import (
	"net/url"
	"strings"

	"digest-bot/fetch"
)

// ItemsPerBatch caps how many items a single digest delivers.
const ItemsPerBatch = 10

// NormalizeURL canonicalizes a URL for identity comparison: scheme and host are
// lowercased, the trailing slash is stripped from the path (an empty path becomes
// "/"), and the fragment is dropped. Query parameters are preserved.
func NormalizeURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}

	path := strings.TrimRight(parsed.Path, "/")
	if path == "" {
		path = "/"
	}

	normalized := url.URL{
		Scheme:   strings.ToLower(parsed.Scheme),
		Host:     strings.ToLower(parsed.Host),
		Path:     path,
		RawQuery: parsed.RawQuery,
	}
	return normalized.String()
}

// Deduplicate folds items sharing a normalized URL into the first occurrence and
// drops anything whose normalized URL is in exclude. The first-seen item keeps its
// title and content; later duplicates only contribute an entry to its related
// list. Output preserves first-seen order.
func Deduplicate(items []fetch.Item, exclude map[string]bool) []fetch.Item {
	seen := make(map[string]int)
	result := make([]fetch.Item, 0, len(items))

	for _, item := range items {
		if item.URL == "" {
			continue
		}

		normalized := NormalizeURL(item.URL)
		if exclude[normalized] {
			continue
		}

		if idx, ok := seen[normalized]; ok {
			result[idx].Related = append(result[idx].Related, fetch.RelatedURL{
				URL:    item.URL,
				Source: item.Source,
			})
			continue
		}

		seen[normalized] = len(result)
		result = append(result, item)
	}

	return result
}

// SelectBalanced caps items to limit by round-robin over the sources in their
// first-seen order, so no source contributes a second item before every
// non-exhausted source has contributed its first. When the input already fits
// the limit it is returned unchanged.
func SelectBalanced(items []fetch.Item, limit int) []fetch.Item {
	if len(items) <= limit {
		return items
	}

	var sources []string
	bySource := make(map[string][]fetch.Item)
	for _, item := range items {
		if _, ok := bySource[item.Source]; !ok {
			sources = append(sources, item.Source)
		}
		bySource[item.Source] = append(bySource[item.Source], item)
	}

	result := make([]fetch.Item, 0, limit)
	offsets := make(map[string]int, len(sources))

	for len(result) < limit {
		added := false
		for _, source := range sources {
			if len(result) >= limit {
				break
			}
			group := bySource[source]
			idx := offsets[source]
			if idx < len(group) {
				result = append(result, group[idx])
				offsets[source] = idx + 1
				added = true
			}
		}
		if !added {
			break
		}
	}

	return result
}

// Prepare runs the full selection pipeline for one batch: exclusion of already
// sent URLs, duplicate folding, then source balancing.
func Prepare(items []fetch.Item, exclude map[string]bool, limit int) []fetch.Item {
	return SelectBalanced(Deduplicate(items, exclude), limit)
}

// ExcludeSet normalizes a list of raw URLs (as stored) into the set used to
// filter already sent items.
func ExcludeSet(urls []string) map[string]bool {
	set := make(map[string]bool, len(urls))
	for _, u := range urls {
		set[NormalizeURL(u)] = true
	}
	return set
}
