// Package intake turns a completed voice-call report into a stored
// service request and queues the follow-up work.
package intake

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/prompts"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
	"quinn-backend/internal/domain/ident"
)

// CallReport is the platform-agnostic end-of-call payload: whatever the
// voice platform already extracted, plus the raw transcript.
type CallReport struct {
	CallID      string
	CallerPhone string
	Transcript  string
	Summary     string
	StartedAt   time.Time
	EndedAt     time.Time
	Structured  map[string]string
}

// details are the structured fields a request needs. Keys in
// CallReport.Structured use the same names as the JSON contract below.
type details struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	ZipCode     string `json:"zip_code"`
	ServiceType string `json:"service_type"`
	Description string `json:"description"`
	Timeline    string `json:"timeline"`
}

const extractTemplate = `Extract the customer's service request details from this phone call transcript.

Response format (MUST be valid JSON):
{
  "name": "customer's full name",
  "email": "email address if mentioned",
  "address": "street address",
  "zip_code": "postal or zip code",
  "service_type": "e.g. plumbing, electrical, hvac, roofing",
  "description": "what needs to be done, in one or two sentences",
  "timeline": "how soon they need it"
}

Leave a field empty when the transcript does not mention it. Do not guess.

Transcript:
{{.transcript}}`

const maxTranscriptChars = 8000

// defaultMaxAttempts matches the job processor's retry ceiling.
const defaultMaxAttempts = 3

type Service struct {
	store  output.Store
	llm    output.LLMPort
	tmpl   prompts.PromptTemplate
	logger output.LoggerPort
}

func New(store output.Store, llm output.LLMPort, logger output.LoggerPort) *Service {
	return &Service{
		store:  store,
		llm:    llm,
		tmpl:   prompts.NewPromptTemplate(extractTemplate, []string{"transcript"}),
		logger: logger,
	}
}

// Handle stores the request and queues the confirmation SMS and
// business discovery jobs. Platform-extracted fields win; the LLM only
// fills what the report left blank.
func (s *Service) Handle(ctx context.Context, report CallReport) (*entity.ServiceRequest, error) {
	d := detailsFromReport(report)
	if d.incomplete() && report.Transcript != "" {
		s.mergeFromTranscript(ctx, report.Transcript, &d)
	}

	now := time.Now().UTC()
	req := &entity.ServiceRequest{
		ID:                  uuid.NewString(),
		CallerName:          d.Name,
		CallerPhone:         report.CallerPhone,
		CallerPhoneAlias:    ident.PhoneAlias(report.CallerPhone),
		CallerEmail:         d.Email,
		CallerAddress:       d.Address,
		ZipCode:             d.ZipCode,
		ServiceType:         d.ServiceType,
		Description:         d.Description,
		Timeline:            d.Timeline,
		CallTranscript:      report.Transcript,
		CallSummary:         report.Summary,
		CallDurationSeconds: callDuration(report),
		TrackingToken:       ident.NewTrackingToken(),
		Status:              entity.RequestStatusPending,
		DiscoveryStatus:     entity.DiscoveryPending,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	if err := s.store.CreateServiceRequest(ctx, req); err != nil {
		return nil, fmt.Errorf("create service request: %w", err)
	}

	s.queue(ctx, req, entity.JobSMSConfirmation, map[string]string{
		"phone":          req.CallerPhone,
		"tracking_token": req.TrackingToken,
		"service_type":   req.ServiceType,
	})
	s.queue(ctx, req, entity.JobBusinessDiscovery, map[string]string{
		"service_type": req.ServiceType,
		"zip_code":     req.ZipCode,
		"address":      req.CallerAddress,
	})

	s.logger.Info("Service request created from call report",
		"request_id", req.ID,
		"service_type", req.ServiceType,
		"call_id", report.CallID,
	)
	return req, nil
}

func (s *Service) queue(ctx context.Context, req *entity.ServiceRequest, jobType entity.JobType, payload map[string]string) {
	job := &entity.Job{
		ID:               uuid.NewString(),
		Type:             jobType,
		ServiceRequestID: req.ID,
		Status:           entity.JobPending,
		Payload:          payload,
		MaxAttempts:      defaultMaxAttempts,
		ScheduledFor:     time.Now().UTC(),
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.EnqueueJob(ctx, job); err != nil {
		s.logger.Error("Failed to queue job", "job_type", jobType, "request_id", req.ID, "error", err)
	}
}

// mergeFromTranscript asks the model for the missing fields. Any
// failure leaves the report's own data untouched.
func (s *Service) mergeFromTranscript(ctx context.Context, transcript string, d *details) {
	if len(transcript) > maxTranscriptChars {
		transcript = transcript[:maxTranscriptChars]
	}
	prompt, err := s.tmpl.Format(map[string]any{"transcript": transcript})
	if err != nil {
		s.logger.Error("Failed to render extraction prompt", "error", err)
		return
	}

	resp, err := s.llm.Chat(ctx, output.ChatRequest{
		Messages:    []entity.Message{{Role: entity.RoleUser, Content: prompt}},
		Temperature: 0.0,
		MaxTokens:   500,
	})
	if err != nil {
		s.logger.Warn("Transcript extraction failed", "error", err)
		return
	}

	extracted, err := parseDetails(resp.Message.Content)
	if err != nil {
		s.logger.Warn("Failed to parse extraction response", "error", err)
		return
	}
	d.fillFrom(extracted)
}

func parseDetails(response string) (details, error) {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end < start {
		return details{}, fmt.Errorf("no JSON found in response")
	}

	var d details
	if err := json.Unmarshal([]byte(response[start:end+1]), &d); err != nil {
		return details{}, fmt.Errorf("failed to parse JSON: %w", err)
	}
	return d, nil
}

func detailsFromReport(report CallReport) details {
	get := func(key string) string { return strings.TrimSpace(report.Structured[key]) }
	return details{
		Name:        get("name"),
		Email:       get("email"),
		Address:     get("address"),
		ZipCode:     get("zip_code"),
		ServiceType: get("service_type"),
		Description: get("description"),
		Timeline:    get("timeline"),
	}
}

// incomplete reports whether the fields discovery and outreach depend
// on are still missing.
func (d details) incomplete() bool {
	return d.ServiceType == "" || d.Description == "" || (d.ZipCode == "" && d.Address == "")
}

func (d *details) fillFrom(other details) {
	if d.Name == "" {
		d.Name = other.Name
	}
	if d.Email == "" {
		d.Email = other.Email
	}
	if d.Address == "" {
		d.Address = other.Address
	}
	if d.ZipCode == "" {
		d.ZipCode = other.ZipCode
	}
	if d.ServiceType == "" {
		d.ServiceType = other.ServiceType
	}
	if d.Description == "" {
		d.Description = other.Description
	}
	if d.Timeline == "" {
		d.Timeline = other.Timeline
	}
}

func callDuration(report CallReport) int {
	if report.StartedAt.IsZero() || report.EndedAt.IsZero() || report.EndedAt.Before(report.StartedAt) {
		return 0
	}
	return int(report.EndedAt.Sub(report.StartedAt).Seconds())
}
