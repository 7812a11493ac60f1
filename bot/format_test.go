package bot

import (
	"strings"
	"testing"

	"digest-bot/fetch"
	"digest-bot/storage"
)

func TestSourceEmoji(t *testing.T) {
	tests := []struct {
		source string
		want   string
	}{
		{fetch.SourceHackerNews, "🔶"},
		{fetch.SourceGeekNews, "🇰🇷"},
		{fetch.SourceGitHub, "🐙"},
		{fetch.SourceProductHunt, "🚀"},
		{"unknown", "📰"},
	}

	for _, tt := range tests {
		if got := SourceEmoji(tt.source); got != tt.want {
			t.Errorf("SourceEmoji(%q) = %q, want %q", tt.source, got, tt.want)
		}
	}
}

func TestFormatDigestHeader(t *testing.T) {
	morning := FormatDigestHeader(storage.BatchMorning, 5)
	if !strings.Contains(morning, "🌅 아침") || !strings.Contains(morning, "5개") {
		t.Errorf("Unexpected morning header: %q", morning)
	}

	evening := FormatDigestHeader(storage.BatchEvening, 3)
	if !strings.Contains(evening, "🌙 저녁") {
		t.Errorf("Unexpected evening header: %q", evening)
	}

	manual := FormatDigestHeader(storage.BatchManual, 1)
	if !strings.Contains(manual, "⚡ 수동") {
		t.Errorf("Unexpected manual header: %q", manual)
	}
}

func TestFormatDigestItem(t *testing.T) {
	item := fetch.Item{
		URL:    "https://example.com/post",
		Title:  "Title with <tags> & ampersand",
		Source: fetch.SourceHackerNews,
	}

	text := FormatDigestItem(item, "A short summary", 2, 10)

	if !strings.Contains(text, "[2/10]") {
		t.Errorf("Expected position marker, got %q", text)
	}
	if !strings.Contains(text, "Title with &lt;tags&gt; &amp; ampersand") {
		t.Errorf("Expected escaped title, got %q", text)
	}
	if !strings.Contains(text, "A short summary") {
		t.Errorf("Expected summary, got %q", text)
	}
	if !strings.Contains(text, `<a href="https://example.com/post">원문 보기</a>`) {
		t.Errorf("Expected article link, got %q", text)
	}
	if strings.Contains(text, "Also on") {
		t.Errorf("Unexpected related line without related sources: %q", text)
	}
}

func TestFormatDigestItem_RelatedSources(t *testing.T) {
	item := fetch.Item{
		URL:    "https://example.com/post",
		Title:  "Shared story",
		Source: fetch.SourceHackerNews,
		Related: []fetch.RelatedURL{
			{URL: "https://example.com/post", Source: fetch.SourceGeekNews},
			{URL: "https://example.com/post/", Source: fetch.SourceProductHunt},
		},
	}

	text := FormatDigestItem(item, "summary", 1, 1)
	if !strings.Contains(text, "Also on: geeknews, producthunt") {
		t.Errorf("Expected related sources line, got %q", text)
	}
}

func TestFormatItemDetail(t *testing.T) {
	item := &storage.Item{
		Source: fetch.SourceGitHub,
		URL:    "https://github.com/golang/go",
		Title:  "golang/go",
	}

	text := FormatItemDetail(item, "detail summary")
	if !strings.Contains(text, "🐙") || !strings.Contains(text, "detail summary") {
		t.Errorf("Unexpected detail text: %q", text)
	}
}

func TestFormatSearchResults(t *testing.T) {
	empty := FormatSearchResults("go", nil)
	if !strings.Contains(empty, "검색 결과가 없습니다") {
		t.Errorf("Unexpected empty message: %q", empty)
	}

	var results []storage.SearchResult
	for i := 0; i < 12; i++ {
		results = append(results, storage.SearchResult{
			Title:       "Result",
			Source:      "hackernews",
			URL:         "https://example.com",
			SummaryText: "text",
		})
	}

	text := FormatSearchResults("go", results)
	if !strings.Contains(text, "(12개)") {
		t.Errorf("Expected total count, got %q", text)
	}
	if !strings.Contains(text, "... 외 2개 결과") {
		t.Errorf("Expected overflow marker after 10 entries, got %q", text)
	}
}

func TestFormatBookmarks(t *testing.T) {
	empty := FormatBookmarks(nil)
	if !strings.Contains(empty, "저장된 북마크가 없습니다") {
		t.Errorf("Unexpected empty message: %q", empty)
	}

	bookmarks := []storage.Bookmark{
		{Title: "Saved", Source: "github", URL: "https://example.com", SummaryText: ""},
	}
	text := FormatBookmarks(bookmarks)
	if !strings.Contains(text, "N/A") {
		t.Errorf("Expected N/A for missing summary, got %q", text)
	}
}

func TestFormatRelatedItems(t *testing.T) {
	empty := FormatRelatedItems("github", nil)
	if !strings.Contains(empty, "관련 글이 없습니다") {
		t.Errorf("Unexpected empty message: %q", empty)
	}

	items := []storage.Item{
		{Title: "First", URL: "https://example.com/1"},
		{Title: "Second", URL: "https://example.com/2"},
	}
	text := FormatRelatedItems("github", items)
	if !strings.Contains(text, "1. ") || !strings.Contains(text, "2. ") {
		t.Errorf("Expected numbered list, got %q", text)
	}
}

func TestParseCallback(t *testing.T) {
	action, id, err := ParseCallback("detail:42")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if action != ActionDetail || id != 42 {
		t.Errorf("Unexpected parse result: %s, %d", action, id)
	}

	for _, bad := range []string{"detail", "detail:abc", "", ":"} {
		if _, _, err := ParseCallback(bad); err == nil {
			t.Errorf("Expected error for %q", bad)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 100); got != "short" {
		t.Errorf("Expected unchanged text, got %q", got)
	}

	long := strings.Repeat("한", 120)
	got := truncate(long, 100)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected ellipsis suffix, got %q", got)
	}
	if len([]rune(got)) != 103 {
		t.Errorf("Expected 100 runes plus ellipsis, got %d", len([]rune(got)))
	}
}

func TestItemKeyboard(t *testing.T) {
	kb := ItemKeyboard(7)

	if len(kb.InlineKeyboard) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(kb.InlineKeyboard))
	}
	for _, row := range kb.InlineKeyboard {
		if len(row) != 2 {
			t.Fatalf("Expected 2 buttons per row, got %d", len(row))
		}
	}

	want := map[string]bool{
		"detail:7":    false,
		"translate:7": false,
		"bookmark:7":  false,
		"related:7":   false,
	}
	for _, row := range kb.InlineKeyboard {
		for _, button := range row {
			if button.CallbackData == nil {
				t.Fatal("Button missing callback data")
			}
			want[*button.CallbackData] = true
		}
	}
	for data, seen := range want {
		if !seen {
			t.Errorf("Missing callback data %s", data)
		}
	}
}
