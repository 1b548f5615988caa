// Package mailclass classifies contractor email replies and files the
// follow-up record (pending question or quote) for the matched service
// request.
package mailclass

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

const classifyTemplate = `You are sorting contractor email replies for a home-services concierge.
The homeowner asked for: {{.service}}

Classify the reply below into exactly one category:
- "question": the contractor needs an answer from the homeowner before quoting
- "quote": the reply contains a price estimate
- "decline": the contractor turns the job down
- "other": anything else (auto-replies, confirmations, spam)

Response format (MUST be valid JSON):
{
  "category": "question|quote|decline|other",
  "question": "the contractor's question, verbatim, when category is question",
  "price_estimate": "the price in the contractor's own wording, when category is quote",
  "availability": "when the contractor can do the work, if mentioned",
  "summary": "one-sentence summary of the reply"
}

Leave a field empty when it does not apply. Never invent a price.

From: {{.sender}}
Subject: {{.subject}}

{{.body}}`

// maxBodyChars bounds how much of the reply is sent to the model.
const maxBodyChars = 8000

type Classifier struct {
	llm    output.LLMPort
	tmpl   prompts.PromptTemplate
	logger output.LoggerPort
}

func NewClassifier(llm output.LLMPort, logger output.LoggerPort) *Classifier {
	return &Classifier{
		llm:    llm,
		tmpl:   prompts.NewPromptTemplate(classifyTemplate, []string{"service", "sender", "subject", "body"}),
		logger: logger,
	}
}

// Classify never fails: any LLM or parse problem degrades to category
// "other" so the email row is stored either way.
func (c *Classifier) Classify(ctx context.Context, serviceDescription string, email *entity.InboundEmail) *entity.EmailClassification {
	body := email.StrippedText
	if body == "" {
		body = email.BodyPlain
	}
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}
	if serviceDescription == "" {
		serviceDescription = "a home service job"
	}

	prompt, err := c.tmpl.Format(map[string]any{
		"service": serviceDescription,
		"sender":  email.Sender,
		"subject": email.Subject,
		"body":    body,
	})
	if err != nil {
		c.logger.Error("Failed to render classification prompt", "error", err)
		return fallbackClassification(body)
	}

	resp, err := c.llm.Chat(ctx, output.ChatRequest{
		Messages:    []entity.Message{{Role: entity.RoleUser, Content: prompt}},
		Temperature: 0.0,
		MaxTokens:   500,
	})
	if err != nil {
		c.logger.Warn("Classification llm request failed, filing as other", "error", err)
		return fallbackClassification(body)
	}

	cls, err := parseClassification(resp.Message.Content)
	if err != nil {
		c.logger.Warn("Failed to parse classification response, filing as other", "error", err)
		return fallbackClassification(body)
	}
	return cls
}

func parseClassification(response string) (*entity.EmailClassification, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var cls entity.EmailClassification
	if err := json.Unmarshal([]byte(response[start:end+1]), &cls); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	switch entity.EmailCategory(strings.ToLower(strings.TrimSpace(string(cls.Category)))) {
	case entity.EmailCategoryQuestion:
		cls.Category = entity.EmailCategoryQuestion
	case entity.EmailCategoryQuote:
		cls.Category = entity.EmailCategoryQuote
	case entity.EmailCategoryDecline:
		cls.Category = entity.EmailCategoryDecline
	default:
		cls.Category = entity.EmailCategoryOther
	}
	return &cls, nil
}

func fallbackClassification(body string) *entity.EmailClassification {
	summary := strings.TrimSpace(body)
	if len(summary) > 160 {
		summary = summary[:160]
	}
	return &entity.EmailClassification{
		Category: entity.EmailCategoryOther,
		Summary:  summary,
	}
}
