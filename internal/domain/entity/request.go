package entity

import "time"

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusActive    RequestStatus = "active"
	RequestStatusQuoted    RequestStatus = "quoted"
	RequestStatusCompleted RequestStatus = "completed"
	RequestStatusCancelled RequestStatus = "cancelled"
)

type DiscoveryStatus string

const (
	DiscoveryPending    DiscoveryStatus = "pending"
	DiscoveryInProgress DiscoveryStatus = "in_progress"
	DiscoveryCompleted  DiscoveryStatus = "completed"
	DiscoveryFailed     DiscoveryStatus = "failed"
)

// ServiceRequest is one homeowner ask: what they need done, where, and
// how to reach them. The tracking token correlates contractor email
// replies back to this record.
type ServiceRequest struct {
	ID                  string          `json:"id"`
	CallerName          string          `json:"caller_name,omitempty"`
	CallerPhone         string          `json:"-"`
	CallerPhoneAlias    string          `json:"caller_phone_alias,omitempty"`
	CallerEmail         string          `json:"caller_email,omitempty"`
	CallerAddress       string          `json:"caller_address,omitempty"`
	ZipCode             string          `json:"zip_code,omitempty"`
	ServiceType         string          `json:"service_type,omitempty"`
	Description         string          `json:"description,omitempty"`
	Timeline            string          `json:"timeline,omitempty"`
	CallTranscript      string          `json:"call_transcript,omitempty"`
	CallSummary         string          `json:"call_summary,omitempty"`
	CallDurationSeconds int             `json:"call_duration_seconds,omitempty"`
	TrackingToken       string          `json:"tracking_token,omitempty"`
	Status              RequestStatus   `json:"status"`
	DiscoveryStatus     DiscoveryStatus `json:"business_discovery_status"`
	Notes               string          `json:"notes,omitempty"`
	SMSSentAt           *time.Time      `json:"sms_sent_at,omitempty"`
	QuotesPresentedAt   *time.Time      `json:"quotes_presented_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Customer builds the form-filling bundle from the stored request. The
// caller name is split on the first space; sites almost always want two
// name fields.
func (r *ServiceRequest) Customer() Customer {
	first, last := splitName(r.CallerName)
	return Customer{
		FirstName:   first,
		LastName:    last,
		Email:       r.CallerEmail,
		Phone:       r.CallerPhone,
		Address:     r.CallerAddress,
		PostalCode:  r.ZipCode,
		Description: r.Description,
	}
}

func splitName(full string) (first, last string) {
	for i, ch := range full {
		if ch == ' ' {
			return full[:i], full[i+1:]
		}
	}
	return full, ""
}
