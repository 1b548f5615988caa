package entity

import "time"

// InboundEmail is a stored copy of one contractor reply delivered by the
// inbound-mail webhook. MatchedRequestID/MatchedBusinessID are set when
// the recipient address carried a known tracking token.
type InboundEmail struct {
	ID                string    `json:"id"`
	Sender            string    `json:"sender"`
	Recipient         string    `json:"recipient"`
	Subject           string    `json:"subject"`
	BodyPlain         string    `json:"body_plain,omitempty"`
	BodyHTML          string    `json:"body_html,omitempty"`
	StrippedText      string    `json:"stripped_text,omitempty"`
	AttachmentCount   int       `json:"attachment_count"`
	TrackingToken     string    `json:"tracking_token,omitempty"`
	MatchedRequestID  string    `json:"matched_request_id,omitempty"`
	MatchedBusinessID string    `json:"matched_business_id,omitempty"`
	Category          string    `json:"category,omitempty"`
	ReceivedAt        time.Time `json:"received_at"`
}

// EmailCategory is the LLM classifier's verdict on an inbound reply.
type EmailCategory string

const (
	EmailCategoryQuestion EmailCategory = "question"
	EmailCategoryQuote    EmailCategory = "quote"
	EmailCategoryDecline  EmailCategory = "decline"
	EmailCategoryOther    EmailCategory = "other"
)

// EmailClassification is the JSON-shape contract returned by the
// classifier prompt. Fields other than Category are populated only when
// relevant for the category.
type EmailClassification struct {
	Category      EmailCategory `json:"category"`
	Question      string        `json:"question,omitempty"`
	PriceEstimate string        `json:"price_estimate,omitempty"`
	Availability  string        `json:"availability,omitempty"`
	Summary       string        `json:"summary,omitempty"`
}

// PendingQuestion is created when a contractor reply asks the homeowner
// something before quoting.
type PendingQuestion struct {
	ID               string    `json:"id"`
	ServiceRequestID string    `json:"service_request_id"`
	BusinessID       string    `json:"business_id,omitempty"`
	InboundEmailID   string    `json:"inbound_email_id"`
	Question         string    `json:"question"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// Quote is created when a contractor reply contains a price estimate.
// PriceEstimate keeps the contractor's own wording (e.g. "$150 plus
// parts"), not a parsed number.
type Quote struct {
	ID               string    `json:"id"`
	ServiceRequestID string    `json:"service_request_id"`
	BusinessID       string    `json:"business_id,omitempty"`
	InboundEmailID   string    `json:"inbound_email_id"`
	PriceEstimate    string    `json:"price_estimate"`
	Availability     string    `json:"availability,omitempty"`
	Summary          string    `json:"summary,omitempty"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

const (
	QuoteStatusPending   = "pending"
	QuoteStatusPresented = "presented"

	QuestionStatusPending  = "pending"
	QuestionStatusAnswered = "answered"
)
