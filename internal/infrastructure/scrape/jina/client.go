// Package jina fetches web pages as clean readable text through the
// Jina Reader proxy.
package jina

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quinn-backend/internal/application/port/output"
)

var _ output.PageScraper = (*Client)(nil)

const defaultBaseURL = "https://r.jina.ai"

// maxPageBytes caps how much of a page is read; downstream prompts
// truncate further anyway.
const maxPageBytes = 1 << 20

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type Config struct {
	// BaseURL overrides the reader host for tests.
	BaseURL string
	// APIKey is optional; the reader works unauthenticated at a lower
	// rate limit.
	APIKey string
}

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     cfg.APIKey,
	}
}

func (c *Client) ReadPage(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build reader request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("reader request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reader returned %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", fmt.Errorf("read reader response: %w", err)
	}
	return string(body), nil
}
