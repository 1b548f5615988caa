// Package rapidapi searches RapidAPI's local-business-data API for
// contractors near a location.
package rapidapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

var _ output.BusinessFinder = (*Client)(nil)

const (
	defaultBaseURL = "https://local-business-data.p.rapidapi.com"
	apiHost        = "local-business-data.p.rapidapi.com"
)

// serviceSearchTerms maps what homeowners say to what the business
// index understands. Matched by substring, first hit wins.
var serviceSearchTerms = []struct{ keyword, term string }{
	{"plumb", "plumber"},
	{"electric", "electrician"},
	{"hvac", "hvac contractor"},
	{"heating", "hvac contractor"},
	{"cooling", "hvac contractor"},
	{"roof", "roofing contractor"},
	{"paint", "house painter"},
	{"clean", "house cleaning service"},
	{"landscap", "landscaping company"},
	{"lawn", "lawn care service"},
	{"handyman", "handyman services"},
	{"general", "handyman services"},
	{"carpent", "carpenter"},
	{"floor", "flooring contractor"},
	{"pest", "pest control"},
	{"garage", "garage door repair"},
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     output.LoggerPort
}

type Config struct {
	// BaseURL overrides the API host for tests.
	BaseURL string
	APIKey  string
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
		apiKey:     cfg.APIKey,
		logger:     cfg.Logger,
	}
}

type searchResponse struct {
	Data []struct {
		PlaceID     string  `json:"place_id"`
		Name        string  `json:"name"`
		PhoneNumber string  `json:"phone_number"`
		Website     string  `json:"website"`
		FullAddress string  `json:"full_address"`
		Latitude    float64 `json:"latitude"`
		Longitude   float64 `json:"longitude"`
		Rating      float64 `json:"rating"`
		ReviewCount int     `json:"review_count"`
		Type        string  `json:"type"`
	} `json:"data"`
}

func (c *Client) Search(ctx context.Context, serviceType, location string, limit int) ([]entity.DiscoveredBusiness, error) {
	query := SearchQuery(serviceType, location)

	params := url.Values{}
	params.Set("query", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("language", "en")
	params.Set("region", Region(location))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("business search failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("business search returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	businesses := make([]entity.DiscoveredBusiness, 0, len(parsed.Data))
	for _, item := range parsed.Data {
		businesses = append(businesses, entity.DiscoveredBusiness{
			GooglePlaceID: item.PlaceID,
			Name:          item.Name,
			Phone:         item.PhoneNumber,
			Website:       item.Website,
			FullAddress:   item.FullAddress,
			Latitude:      item.Latitude,
			Longitude:     item.Longitude,
			Rating:        item.Rating,
			ReviewCount:   item.ReviewCount,
			Category:      item.Type,
		})
	}

	if c.logger != nil {
		c.logger.Info("Business search completed", "query", query, "found", len(businesses))
	}
	return businesses, nil
}

// SearchQuery builds the "<term> near <location>" query the index
// expects.
func SearchQuery(serviceType, location string) string {
	term := strings.ToLower(strings.TrimSpace(serviceType))
	if term == "" {
		term = "home services"
	} else {
		for _, m := range serviceSearchTerms {
			if strings.Contains(term, m.keyword) {
				term = m.term
				break
			}
		}
	}
	return fmt.Sprintf("%s near %s", term, location)
}

// Region guesses the API region from the location: Canadian postal
// codes start with a letter, US zip codes with a digit.
func Region(location string) string {
	location = strings.TrimSpace(location)
	if location == "" {
		return "us"
	}
	first := location[0]
	if (first >= 'a' && first <= 'z') || (first >= 'A' && first <= 'Z') {
		return "ca"
	}
	return "us"
}
