package dedup

import (
	"testing"

	"digest-bot/fetch"
)

func TestNormalizeURL_Idempotent(t *testing.T) {
	urls := []string{
		"https://Example.COM/Path/",
		"http://example.com",
		"https://example.com/page#fragment",
		"https://example.com/search?q=go&page=2",
	}

	for _, u := range urls {
		once := NormalizeURL(u)
		twice := NormalizeURL(once)
		if once != twice {
			t.Errorf("NormalizeURL not idempotent for %s: %s != %s", u, once, twice)
		}
	}
}

func TestNormalizeURL_CaseAndSlashVariants(t *testing.T) {
	base := NormalizeURL("https://example.com/article")

	variants := []string{
		"HTTPS://EXAMPLE.COM/article",
		"https://Example.com/article/",
		"https://example.com/article#comments",
	}

	for _, v := range variants {
		if NormalizeURL(v) != base {
			t.Errorf("Expected %s to normalize to %s, got %s", v, base, NormalizeURL(v))
		}
	}
}

func TestNormalizeURL_PreservesQuery(t *testing.T) {
	a := NormalizeURL("https://example.com/page?id=1")
	b := NormalizeURL("https://example.com/page?id=2")
	if a == b {
		t.Error("Expected different query strings to stay distinct")
	}
}

func TestNormalizeURL_EmptyPathBecomesSlash(t *testing.T) {
	got := NormalizeURL("https://example.com")
	if got != "https://example.com/" {
		t.Errorf("Expected trailing slash on empty path, got %s", got)
	}
}

func TestDeduplicate_FoldsDuplicates(t *testing.T) {
	items := []fetch.Item{
		{URL: "https://example.com/a", Title: "First", Content: "first content", Source: "hackernews"},
		{URL: "https://EXAMPLE.com/a/", Title: "Second", Content: "second content", Source: "geeknews"},
		{URL: "https://example.com/b", Title: "Other", Source: "github"},
		{URL: "https://example.com/a#frag", Title: "Third", Source: "producthunt"},
	}

	result := Deduplicate(items, nil)

	if len(result) != 2 {
		t.Fatalf("Expected 2 unique items, got %d", len(result))
	}
	if result[0].Title != "First" || result[0].Content != "first content" {
		t.Errorf("Expected first occurrence kept, got %+v", result[0])
	}
	if len(result[0].Related) != 2 {
		t.Fatalf("Expected 2 related entries, got %d", len(result[0].Related))
	}
	if result[0].Related[0].Source != "geeknews" || result[0].Related[1].Source != "producthunt" {
		t.Errorf("Unexpected related entries: %+v", result[0].Related)
	}
	if result[1].URL != "https://example.com/b" {
		t.Errorf("Expected first-seen order preserved, got %s", result[1].URL)
	}
}

func TestDeduplicate_SkipsExcluded(t *testing.T) {
	items := []fetch.Item{
		{URL: "https://example.com/a", Title: "A", Source: "hackernews"},
		{URL: "https://example.com/b", Title: "B", Source: "geeknews"},
		{URL: "https://Example.com/A/"},
	}
	// Excluded regardless of casing or position.
	exclude := map[string]bool{NormalizeURL("https://example.com/a"): true}

	result := Deduplicate(items, exclude)

	if len(result) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result))
	}
	if result[0].Title != "B" {
		t.Errorf("Expected only B to survive, got %s", result[0].Title)
	}
}

func TestDeduplicate_DropsEmptyURLs(t *testing.T) {
	items := []fetch.Item{
		{URL: "", Title: "no url"},
		{URL: "https://example.com/a", Title: "A"},
	}

	result := Deduplicate(items, nil)
	if len(result) != 1 {
		t.Fatalf("Expected 1 item, got %d", len(result))
	}
}

func makeItems(source string, count int) []fetch.Item {
	items := make([]fetch.Item, count)
	for i := range items {
		items[i] = fetch.Item{
			URL:    "https://" + source + ".example.com/" + string(rune('a'+i)),
			Title:  source,
			Source: source,
		}
	}
	return items
}

func TestSelectBalanced_RoundRobin(t *testing.T) {
	var items []fetch.Item
	items = append(items, makeItems("A", 5)...)
	items = append(items, makeItems("B", 2)...)
	items = append(items, makeItems("C", 1)...)

	result := SelectBalanced(items, 4)

	if len(result) != 4 {
		t.Fatalf("Expected 4 items, got %d", len(result))
	}

	expected := []string{"A", "B", "C", "A"}
	for i, source := range expected {
		if result[i].Source != source {
			t.Errorf("Position %d: expected source %s, got %s", i, source, result[i].Source)
		}
	}
}

func TestSelectBalanced_ExhaustedGroups(t *testing.T) {
	var items []fetch.Item
	items = append(items, makeItems("A", 1)...)
	items = append(items, makeItems("B", 1)...)

	result := SelectBalanced(items, 10)
	if len(result) != 2 {
		t.Errorf("Expected all 2 items, got %d", len(result))
	}
}

func TestSelectBalanced_UnderLimitUnchanged(t *testing.T) {
	items := makeItems("A", 3)
	result := SelectBalanced(items, 10)

	if len(result) != 3 {
		t.Fatalf("Expected unchanged input, got %d items", len(result))
	}
	for i := range items {
		if result[i].URL != items[i].URL {
			t.Errorf("Position %d changed: %s != %s", i, result[i].URL, items[i].URL)
		}
	}
}

func TestPrepare_EndToEnd(t *testing.T) {
	items := []fetch.Item{
		{URL: "https://example.com/shared", Title: "Shared", Source: "hackernews"},
		{URL: "https://EXAMPLE.COM/shared", Title: "Shared again", Source: "geeknews"},
		{URL: "https://example.com/unique", Title: "Unique", Source: "github"},
	}

	result := Prepare(items, nil, ItemsPerBatch)

	if len(result) != 2 {
		t.Fatalf("Expected 2 items, got %d", len(result))
	}
	if len(result[0].Related) != 1 {
		t.Errorf("Expected 1 related entry on first item, got %d", len(result[0].Related))
	}
	if result[0].Related[0].Source != "geeknews" {
		t.Errorf("Expected related source geeknews, got %s", result[0].Related[0].Source)
	}
}

func TestExcludeSet_Normalizes(t *testing.T) {
	set := ExcludeSet([]string{"https://Example.com/a/"})
	if !set[NormalizeURL("https://example.com/a")] {
		t.Error("Expected stored URL variants to match after normalization")
	}
}
