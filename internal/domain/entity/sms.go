package entity

import "time"

// SMSMessage records one outbound SMS attempt, sent or failed.
type SMSMessage struct {
	ID               string    `json:"id"`
	ServiceRequestID string    `json:"service_request_id"`
	ToPhone          string    `json:"to_phone"`
	Body             string    `json:"message_body"`
	ProviderSID      string    `json:"twilio_sid,omitempty"`
	Status           string    `json:"status"`
	ErrorMessage     string    `json:"error_message,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

const (
	SMSStatusSent   = "sent"
	SMSStatusFailed = "failed"
)
