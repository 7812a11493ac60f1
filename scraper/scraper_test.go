package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const articleFixture = `<!DOCTYPE html>
<html>
<head><title>Test Article</title></head>
<body>
<article>
<h1>Test Article</h1>
<p>This is the first paragraph of the article body with enough text to be
considered readable content by the extractor. It keeps going for a while so the
readability heuristics have something to work with.</p>
<p>This is the second paragraph, which also contains a reasonable amount of
prose so the article body is clearly the dominant content block on the page.</p>
</article>
</body>
</html>`

func TestScrape_ExtractsText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "digest-bot/1.0" {
			t.Errorf("Unexpected user agent: %s", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(articleFixture))
	}))
	defer server.Close()

	s := New(5)

	content, err := s.Scrape(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !strings.Contains(content, "first paragraph") {
		t.Errorf("Expected article text, got %q", content)
	}
	if strings.Contains(content, "<p>") {
		t.Errorf("Expected markup stripped, got %q", content)
	}
}

func TestScrape_CapsContent(t *testing.T) {
	long := "<html><body><article><h1>Long</h1><p>" +
		strings.Repeat("word ", 2000) +
		"</p></article></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(long))
	}))
	defer server.Close()

	s := New(5)

	content, err := s.Scrape(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(content) > maxContentLength {
		t.Errorf("Expected content capped at %d, got %d", maxContentLength, len(content))
	}
}

func TestScrape_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	s := New(5)

	if _, err := s.Scrape(context.Background(), server.URL); err == nil {
		t.Fatal("Expected error on HTTP 404")
	}
}

func TestScrape_InvalidURL(t *testing.T) {
	s := New(5)

	if _, err := s.Scrape(context.Background(), "://not-a-url"); err == nil {
		t.Fatal("Expected error for invalid URL")
	}
}
