package entity

import "time"

type JobType string

const (
	JobSMSConfirmation   JobType = "sms_confirmation"
	JobBusinessDiscovery JobType = "business_discovery"
	JobContactExtraction JobType = "contact_extraction"
)

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Job is one unit of deferred work queued by the intake webhook and
// claimed by the background processor. Retried until MaxAttempts.
type Job struct {
	ID               string            `json:"id"`
	Type             JobType           `json:"job_type"`
	ServiceRequestID string            `json:"service_request_id"`
	Status           JobStatus         `json:"status"`
	Payload          map[string]string `json:"payload"`
	Attempts         int               `json:"attempts"`
	MaxAttempts      int               `json:"max_attempts"`
	ErrorMessage     string            `json:"error_message,omitempty"`
	ScheduledFor     time.Time         `json:"scheduled_for"`
	StartedAt        *time.Time        `json:"started_at,omitempty"`
	CompletedAt      *time.Time        `json:"completed_at,omitempty"`
	CreatedAt        time.Time         `json:"created_at"`
}
