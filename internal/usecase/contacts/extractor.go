// Package contacts enriches discovered businesses with contact details
// scraped from their websites.
package contacts

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

const extractTemplate = `Extract business contact information from this website content.

Response format (MUST be valid JSON, use "" when not found):
{
  "phone": "primary phone number",
  "email": "primary email address",
  "address": "full physical address"
}

Respond ONLY with the JSON object, no other text.

Website content:
{{.content}}`

// maxContentChars bounds how much scraped text is sent to the model.
const maxContentChars = 8000

// batchSize limits how many pending businesses one run touches.
const batchSize = 10

type contactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

type Extractor struct {
	store   output.Store
	scraper output.PageScraper
	llm     output.LLMPort
	tmpl    prompts.PromptTemplate
	logger  output.LoggerPort
}

func New(store output.Store, scraper output.PageScraper, llm output.LLMPort, logger output.LoggerPort) *Extractor {
	return &Extractor{
		store:   store,
		scraper: scraper,
		llm:     llm,
		tmpl:    prompts.NewPromptTemplate(extractTemplate, []string{"content"}),
		logger:  logger,
	}
}

// ProcessRequest runs extraction for the request's pending businesses.
// A failing business is marked failed and the run moves on; only a
// store read error aborts the batch.
func (e *Extractor) ProcessRequest(ctx context.Context, requestID string) error {
	businesses, err := e.store.PendingExtractionBusinesses(ctx, requestID, batchSize)
	if err != nil {
		return fmt.Errorf("load pending businesses: %w", err)
	}

	for _, b := range businesses {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if b.Website == "" {
			continue
		}

		info, err := e.extract(ctx, b.Website)
		if err != nil {
			e.logger.Warn("Contact extraction failed", "business_id", b.ID, "website", b.Website, "error", err)
			if err := e.store.UpdateBusinessContacts(ctx, b.ID, b.Phone, b.Email, entity.ExtractionFailed); err != nil {
				e.logger.Error("Failed to mark extraction failed", "business_id", b.ID, "error", err)
			}
			continue
		}

		// Extraction only fills gaps; discovery data wins for phone.
		phone := b.Phone
		if phone == "" {
			phone = info.Phone
		}
		email := b.Email
		if info.Email != "" {
			email = info.Email
		}
		if err := e.store.UpdateBusinessContacts(ctx, b.ID, phone, email, entity.ExtractionCompleted); err != nil {
			e.logger.Error("Failed to save extracted contacts", "business_id", b.ID, "error", err)
		}
	}
	return nil
}

func (e *Extractor) extract(ctx context.Context, website string) (*contactInfo, error) {
	content, err := e.scraper.ReadPage(ctx, website)
	if err != nil {
		return nil, fmt.Errorf("scrape %s: %w", website, err)
	}
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}

	prompt, err := e.tmpl.Format(map[string]any{"content": content})
	if err != nil {
		return nil, fmt.Errorf("render extraction prompt: %w", err)
	}

	resp, err := e.llm.Chat(ctx, output.ChatRequest{
		Messages: []entity.Message{
			{Role: entity.RoleSystem, Content: "You are a data extraction assistant. Extract contact information and return valid JSON only."},
			{Role: entity.RoleUser, Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction llm request failed: %w", err)
	}

	return parseContactInfo(resp.Message.Content)
}

func parseContactInfo(response string) (*contactInfo, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var info contactInfo
	if err := json.Unmarshal([]byte(response[start:end+1]), &info); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return &info, nil
}
