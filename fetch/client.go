package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 2
	defaultBackoffBase = 2 * time.Second
)

// FetchError is the terminal failure of one source's fetch: retries exhausted,
// credentials missing, or an unusable response body.
type FetchError struct {
	Source  string
	Message string
	Err     error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Source, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Source, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client is the shared request layer for the fetch adapters: a fixed total
// timeout per attempt and a bounded exponential-backoff retry loop. Any status
// >= 400 counts as a failure for retry purposes.
type Client struct {
	source      string
	http        *http.Client
	maxRetries  int
	backoffBase time.Duration
	logger      *slog.Logger
}

func NewClient(source string, logger *slog.Logger) *Client {
	return &Client{
		source: source,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		maxRetries:  defaultMaxRetries,
		backoffBase: defaultBackoffBase,
		logger:      logger,
	}
}

// Request performs one HTTP call with retries. The body, if any, is replayed on
// each attempt. The caller owns the returned response body.
func (c *Client) Request(ctx context.Context, method, url string, body []byte, header http.Header) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffBase << (attempt - 1)
			c.logger.Warn("Retrying request",
				"source", c.source,
				"attempt", attempt,
				"max_retries", c.maxRetries,
				"delay", delay.String(),
			)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, &FetchError{Source: c.source, Message: "request cancelled", Err: ctx.Err()}
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return nil, &FetchError{Source: c.source, Message: "failed to create request", Err: err}
		}
		req.Header.Set("User-Agent", "digest-bot/1.0")
		for key, values := range header {
			for _, value := range values {
				req.Header.Set(key, value)
			}
		}

		resp, err := c.http.Do(req)
		if err != nil {
			lastErr = err
			c.logger.Warn("Request failed",
				"source", c.source,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		if resp.StatusCode >= 400 {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(snippet))
			c.logger.Warn("Request returned error status",
				"source", c.source,
				"attempt", attempt+1,
				"status", resp.StatusCode,
			)
			continue
		}

		return resp, nil
	}

	return nil, &FetchError{
		Source:  c.source,
		Message: fmt.Sprintf("failed after %d attempts", c.maxRetries+1),
		Err:     lastErr,
	}
}

// GetJSON fetches url and decodes the response body into out.
func (c *Client) GetJSON(ctx context.Context, url string, out any) error {
	resp, err := c.Request(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Source: c.source, Message: "failed to decode JSON from " + url, Err: err}
	}
	return nil
}

// GetText fetches url and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	resp, err := c.Request(ctx, http.MethodGet, url, nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{Source: c.source, Message: "failed to read body from " + url, Err: err}
	}
	return string(body), nil
}

// PostJSON sends payload as a JSON body and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, payload any, out any, header http.Header) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return &FetchError{Source: c.source, Message: "failed to marshal request body", Err: err}
	}

	if header == nil {
		header = http.Header{}
	}
	header.Set("Content-Type", "application/json")

	resp, err := c.Request(ctx, http.MethodPost, url, body, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Source: c.source, Message: "failed to decode JSON from " + url, Err: err}
	}
	return nil
}
