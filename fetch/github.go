package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	defaultOSSInsightURL     = "https://api.ossinsight.io/v1/trends/repos"
	defaultGitHubTrendingURL = "https://github.com/trending"
)

type ossInsightResponse struct {
	Data struct {
		Rows []struct {
			RepoName        string `json:"repo_name"`
			Description     string `json:"description"`
			PrimaryLanguage string `json:"primary_language"`
			Stars           string `json:"stars"`
		} `json:"rows"`
	} `json:"data"`
}

// GitHubFetcher reads trending repositories from the OSS Insight API and falls
// back to scraping the public trending page when the API fails or returns
// nothing usable. Scraping failures propagate as-is.
type GitHubFetcher struct {
	apiURL      string
	trendingURL string
	client      *Client
	logger      *slog.Logger
}

func NewGitHubFetcher(apiURL, trendingURL string, logger *slog.Logger) *GitHubFetcher {
	if apiURL == "" {
		apiURL = defaultOSSInsightURL
	}
	if trendingURL == "" {
		trendingURL = defaultGitHubTrendingURL
	}
	return &GitHubFetcher{
		apiURL:      apiURL,
		trendingURL: trendingURL,
		client:      NewClient(SourceGitHub, logger),
		logger:      logger,
	}
}

func (f *GitHubFetcher) Source() string {
	return SourceGitHub
}

func (f *GitHubFetcher) Fetch(ctx context.Context, limit int) ([]Item, error) {
	items, err := f.fetchFromAPI(ctx, limit)
	if err != nil {
		f.logger.Warn("API failed, falling back to scraping", "source", f.Source(), "error", err)
		return f.fetchFromScraping(ctx, limit)
	}
	return items, nil
}

func (f *GitHubFetcher) fetchFromAPI(ctx context.Context, limit int) ([]Item, error) {
	url := f.apiURL + "?period=past_week&language=All"

	var resp ossInsightResponse
	if err := f.client.GetJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	if len(resp.Data.Rows) == 0 {
		return nil, &FetchError{Source: f.Source(), Message: "API returned no rows"}
	}

	items := make([]Item, 0, limit)
	for _, repo := range resp.Data.Rows {
		if len(items) >= limit {
			break
		}
		if repo.RepoName == "" {
			continue
		}
		items = append(items, Item{
			URL:     "https://github.com/" + repo.RepoName,
			Title:   repo.RepoName,
			Content: repoContent(repo.Description, repo.PrimaryLanguage, repo.Stars),
			Source:  f.Source(),
		})
	}

	f.logger.Info("Fetched trending repos from API", "source", f.Source(), "count", len(items))
	return items, nil
}

func (f *GitHubFetcher) fetchFromScraping(ctx context.Context, limit int) ([]Item, error) {
	html, err := f.client.GetText(ctx, f.trendingURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, &FetchError{Source: f.Source(), Message: "failed to parse trending page", Err: err}
	}

	items := make([]Item, 0, limit)
	doc.Find("article.Box-row").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if len(items) >= limit {
			return false
		}

		href, _ := row.Find("h2 a").Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return true
		}
		repoName := strings.TrimPrefix(href, "/")

		description := strings.TrimSpace(row.Find("p").Text())
		language := strings.TrimSpace(row.Find("[itemprop='programmingLanguage']").Text())
		stars := strings.TrimSpace(row.Find("a[href$='/stargazers']").Text())

		items = append(items, Item{
			URL:     "https://github.com" + href,
			Title:   repoName,
			Content: repoContent(description, language, stars),
			Source:  f.Source(),
		})
		return true
	})

	f.logger.Info("Fetched trending repos from scraping", "source", f.Source(), "count", len(items))
	return items, nil
}

func repoContent(description, language, stars string) string {
	var parts []string
	if description != "" {
		parts = append(parts, description)
	}
	if language != "" {
		parts = append(parts, fmt.Sprintf("Language: %s", language))
	}
	if stars != "" && stars != "0" {
		parts = append(parts, fmt.Sprintf("Stars: %s", stars))
	}
	return strings.Join(parts, " | ")
}
