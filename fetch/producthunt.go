package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

const defaultProductHuntAPIURL = "https://api.producthunt.com/v2/api/graphql"

const productHuntPostsQuery = `
query GetPosts($first: Int!) {
    posts(first: $first, order: VOTES) {
        edges {
            node {
                name
                tagline
                url
                votesCount
            }
        }
    }
}`

// TokenSource supplies a bearer token for an authenticated source.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type productHuntResponse struct {
	Data struct {
		Posts struct {
			Edges []struct {
				Node struct {
					Name       string `json:"name"`
					Tagline    string `json:"tagline"`
					URL        string `json:"url"`
					VotesCount int    `json:"votesCount"`
				} `json:"node"`
			} `json:"edges"`
		} `json:"posts"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// ProductHuntFetcher queries the Product Hunt GraphQL API for the top posts by
// vote count. It fails fast when no bearer token is obtainable and treats a
// GraphQL-level error array as a fetch failure.
type ProductHuntFetcher struct {
	apiURL string
	tokens TokenSource
	client *Client
	logger *slog.Logger
}

func NewProductHuntFetcher(apiURL string, tokens TokenSource, logger *slog.Logger) *ProductHuntFetcher {
	if apiURL == "" {
		apiURL = defaultProductHuntAPIURL
	}
	return &ProductHuntFetcher{
		apiURL: apiURL,
		tokens: tokens,
		client: NewClient(SourceProductHunt, logger),
		logger: logger,
	}
}

func (f *ProductHuntFetcher) Source() string {
	return SourceProductHunt
}

func (f *ProductHuntFetcher) Fetch(ctx context.Context, limit int) ([]Item, error) {
	token, err := f.tokens.AccessToken(ctx)
	if err != nil {
		return nil, &FetchError{Source: f.Source(), Message: "failed to get access token", Err: err}
	}

	payload := map[string]any{
		"query":     productHuntPostsQuery,
		"variables": map[string]any{"first": limit},
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	var resp productHuntResponse
	if err := f.client.PostJSON(ctx, f.apiURL, payload, &resp, header); err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		return nil, &FetchError{
			Source:  f.Source(),
			Message: "GraphQL error: " + resp.Errors[0].Message,
		}
	}

	items := make([]Item, 0, limit)
	for _, edge := range resp.Data.Posts.Edges {
		if len(items) >= limit {
			break
		}
		node := edge.Node
		if node.Name == "" || node.URL == "" {
			continue
		}

		var parts []string
		if node.Tagline != "" {
			parts = append(parts, node.Tagline)
		}
		if node.VotesCount > 0 {
			parts = append(parts, fmt.Sprintf("Votes: %d", node.VotesCount))
		}

		items = append(items, Item{
			URL:     node.URL,
			Title:   node.Name,
			Content: strings.Join(parts, " | "),
			Source:  f.Source(),
		})
	}

	f.logger.Info("Fetched posts", "source", f.Source(), "count", len(items))
	return items, nil
}
