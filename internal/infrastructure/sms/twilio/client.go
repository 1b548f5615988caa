// Package twilio sends SMS through Twilio's Messages REST endpoint.
package twilio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quinn-backend/internal/application/port/output"
)

var _ output.SMSSender = (*Client)(nil)

const defaultBaseURL = "https://api.twilio.com"

type Client struct {
	httpClient *http.Client
	baseURL    string
	accountSID string
	authToken  string
	fromPhone  string
	logger     output.LoggerPort
}

type Config struct {
	// BaseURL overrides the API host for tests.
	BaseURL    string
	AccountSID string
	AuthToken  string
	FromPhone  string
	Logger     output.LoggerPort
}

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromPhone:  cfg.FromPhone,
		logger:     cfg.Logger,
	}
}

// Send posts one message and returns Twilio's message SID.
func (c *Client) Send(ctx context.Context, toPhone, body string) (string, error) {
	form := url.Values{}
	form.Set("To", toPhone)
	form.Set("From", c.fromPhone)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", c.baseURL, c.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build twilio request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.accountSID, c.authToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("twilio returned %d: %s", resp.StatusCode, errorMessage(respBody))
	}

	var parsed struct {
		SID string `json:"sid"`
	}
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode twilio response: %w", err)
	}

	if c.logger != nil {
		c.logger.Info("Twilio message accepted", "to", toPhone, "sid", parsed.SID)
	}
	return parsed.SID, nil
}

func errorMessage(body []byte) string {
	var parsed struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Message != "" {
		return parsed.Message
	}
	return strings.TrimSpace(string(body))
}
