// Package auth handles the Product Hunt OAuth2 client-credentials exchange with
// expiry-aware token caching.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

const (
	defaultTokenURL = "https://api.producthunt.com/v2/oauth/token"

	// expiryMargin treats a token as expired this long before its actual
	// expiry, so an in-flight request never carries a stale token.
	expiryMargin = 60 * time.Second

	// defaultLifetime applies when the token endpoint omits expires_in.
	defaultLifetime = 86400 * time.Second

	tokenRequestTimeout = 10 * time.Second
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenCache holds a single cached bearer token and refreshes it lazily. A
// failed refresh leaves the cache without a usable token until the next
// successful attempt.
type TokenCache struct {
	clientID     string
	clientSecret string
	tokenURL     string
	http         *http.Client
	logger       *slog.Logger
	now          func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

func NewTokenCache(clientID, clientSecret, tokenURL string, logger *slog.Logger) *TokenCache {
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	return &TokenCache{
		clientID:     clientID,
		clientSecret: clientSecret,
		tokenURL:     tokenURL,
		http: &http.Client{
			Timeout: tokenRequestTimeout,
		},
		logger: logger,
		now:    time.Now,
	}
}

// AccessToken returns a valid bearer token, refreshing when the cached one is
// missing or within the expiry margin. It fails fast when credentials are
// unset.
func (c *TokenCache) AccessToken(ctx context.Context) (string, error) {
	if c.clientID == "" || c.clientSecret == "" {
		return "", fmt.Errorf("client credentials not configured")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.now().Before(c.expiresAt) {
		return c.token, nil
	}

	return c.refresh(ctx)
}

func (c *TokenCache) refresh(ctx context.Context) (string, error) {
	payload, err := json.Marshal(map[string]string{
		"client_id":     c.clientID,
		"client_secret": c.clientSecret,
		"grant_type":    "client_credentials",
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return "", fmt.Errorf("token endpoint returned HTTP %d: %s", resp.StatusCode, string(snippet))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	if tr.AccessToken == "" {
		return "", fmt.Errorf("no access_token in response")
	}

	lifetime := defaultLifetime
	if tr.ExpiresIn > 0 {
		lifetime = time.Duration(tr.ExpiresIn) * time.Second
	}

	c.token = tr.AccessToken
	c.expiresAt = c.now().Add(lifetime - expiryMargin)

	c.logger.Info("Obtained access token", "expires_in", lifetime.String())
	return c.token, nil
}
