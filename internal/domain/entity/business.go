package entity

import "time"

type ExtractionStatus string

const (
	ExtractionPending   ExtractionStatus = "pending"
	ExtractionCompleted ExtractionStatus = "completed"
	ExtractionFailed    ExtractionStatus = "failed"
)

type OutreachStatus string

const (
	OutreachPending OutreachStatus = "pending"
	OutreachSent    OutreachStatus = "sent"
	OutreachReplied OutreachStatus = "replied"
	OutreachFailed  OutreachStatus = "failed"
)

// DiscoveredBusiness is one candidate contractor for a service request,
// found by the local-business search and enriched by contact extraction.
type DiscoveredBusiness struct {
	ID               string           `json:"id"`
	ServiceRequestID string           `json:"service_request_id"`
	GooglePlaceID    string           `json:"google_place_id,omitempty"`
	Name             string           `json:"business_name"`
	Phone            string           `json:"phone,omitempty"`
	Email            string           `json:"email,omitempty"`
	Website          string           `json:"website,omitempty"`
	FullAddress      string           `json:"full_address,omitempty"`
	Latitude         float64          `json:"latitude,omitempty"`
	Longitude        float64          `json:"longitude,omitempty"`
	Rating           float64          `json:"rating,omitempty"`
	ReviewCount      int              `json:"review_count,omitempty"`
	Category         string           `json:"business_category,omitempty"`
	ExtractionStatus ExtractionStatus `json:"contact_extraction_status"`
	OutreachStatus   OutreachStatus   `json:"outreach_status"`
	OutreachNotes    string           `json:"outreach_notes,omitempty"`
	OutreachSentAt   *time.Time       `json:"outreach_sent_at,omitempty"`
	FormFillStatus   string           `json:"form_fill_status,omitempty"`
	FormFillURL      string           `json:"form_fill_url,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
}
