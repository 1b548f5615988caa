// Package mailgun sends transactional email through Mailgun's REST API
// and parses/verifies its inbound-route webhooks.
package mailgun

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

var _ output.Mailer = (*Client)(nil)

const defaultBaseURL = "https://api.mailgun.net"

type Client struct {
	httpClient *http.Client
	baseURL    string
	domain     string
	apiKey     string
	from       string
	logger     output.LoggerPort
}

type Config struct {
	// BaseURL overrides the API host, for tests and EU-region accounts.
	BaseURL string
	Domain  string
	APIKey  string
	From    string
	Logger  output.LoggerPort
}

func New(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		domain:     cfg.Domain,
		apiKey:     cfg.APIKey,
		from:       cfg.From,
		logger:     cfg.Logger,
	}
}

// Send posts one message and returns Mailgun's message id.
func (c *Client) Send(ctx context.Context, email output.OutboundEmail) (string, error) {
	form := url.Values{}
	form.Set("from", c.from)
	form.Set("to", email.To)
	form.Set("subject", email.Subject)
	form.Set("text", email.Text)
	if email.ReplyTo != "" {
		form.Set("h:Reply-To", email.ReplyTo)
	}

	endpoint := fmt.Sprintf("%s/v3/%s/messages", c.baseURL, c.domain)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build mailgun request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth("api", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("mailgun request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("mailgun returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	id := messageID(body)
	if c.logger != nil {
		c.logger.Info("Mailgun message accepted", "to", email.To, "message_id", id)
	}
	return id, nil
}

// messageID pulls "id" out of Mailgun's response without binding to the
// rest of its shape.
func messageID(body []byte) string {
	var parsed struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &parsed)
	return parsed.ID
}
