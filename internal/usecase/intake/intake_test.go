package intake

import (
	"context"
	"strings"
	"testing"
	"time"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Debug(msg string, args ...any)                        {}
func (nopLogger) Info(msg string, args ...any)                         {}
func (nopLogger) Warn(msg string, args ...any)                         {}
func (nopLogger) Error(msg string, args ...any)                        {}
func (l nopLogger) WithField(key string, value any) output.LoggerPort  { return l }
func (l nopLogger) WithFields(fields map[string]any) output.LoggerPort { return l }
func (nopLogger) Close() error                                         { return nil }

type fakeLLM struct {
	response string
	calls    int
}

func (f *fakeLLM) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	f.calls++
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: f.response}}, nil
}

type fakeStore struct {
	output.Store

	created []*entity.ServiceRequest
	jobs    []*entity.Job
}

func (s *fakeStore) CreateServiceRequest(ctx context.Context, req *entity.ServiceRequest) error {
	s.created = append(s.created, req)
	return nil
}

func (s *fakeStore) EnqueueJob(ctx context.Context, job *entity.Job) error {
	s.jobs = append(s.jobs, job)
	return nil
}

func structuredReport() CallReport {
	return CallReport{
		CallID:      "call-1",
		CallerPhone: "+16045551234",
		Transcript:  "Hi, my kitchen faucet is leaking...",
		Summary:     "Homeowner needs a plumber.",
		StartedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		EndedAt:     time.Date(2026, 8, 1, 10, 3, 20, 0, time.UTC),
		Structured: map[string]string{
			"name":         "Dana Reyes",
			"address":      "12 Oak St",
			"zip_code":     "V8T 4G8",
			"service_type": "plumbing",
			"description":  "Leaking kitchen faucet",
			"timeline":     "this week",
		},
	}
}

func TestHandleStoresRequestAndQueuesJobs(t *testing.T) {
	store := &fakeStore{}
	llm := &fakeLLM{}
	s := New(store, llm, nopLogger{})

	req, err := s.Handle(context.Background(), structuredReport())
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if len(store.created) != 1 {
		t.Fatalf("got %d requests, want 1", len(store.created))
	}
	if req.CallerName != "Dana Reyes" || req.ServiceType != "plumbing" {
		t.Errorf("structured fields not carried: %+v", req)
	}
	if req.CallerPhoneAlias != "***-***-1234" {
		t.Errorf("phone alias = %q", req.CallerPhoneAlias)
	}
	if len(req.TrackingToken) != 12 {
		t.Errorf("tracking token = %q, want 12 chars", req.TrackingToken)
	}
	if req.Status != entity.RequestStatusPending || req.DiscoveryStatus != entity.DiscoveryPending {
		t.Errorf("status = %q/%q, want pending/pending", req.Status, req.DiscoveryStatus)
	}
	if req.CallDurationSeconds != 200 {
		t.Errorf("duration = %d, want 200", req.CallDurationSeconds)
	}

	if len(store.jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(store.jobs))
	}
	types := map[entity.JobType]*entity.Job{}
	for _, job := range store.jobs {
		types[job.Type] = job
	}
	sms := types[entity.JobSMSConfirmation]
	if sms == nil {
		t.Fatal("sms_confirmation job not queued")
	}
	if sms.Payload["tracking_token"] != req.TrackingToken || sms.Payload["phone"] != "+16045551234" {
		t.Errorf("sms payload = %v", sms.Payload)
	}
	disc := types[entity.JobBusinessDiscovery]
	if disc == nil {
		t.Fatal("business_discovery job not queued")
	}
	if disc.Payload["zip_code"] != "V8T 4G8" {
		t.Errorf("discovery payload = %v", disc.Payload)
	}
	for _, job := range store.jobs {
		if job.MaxAttempts != 3 || job.Status != entity.JobPending {
			t.Errorf("job %s: max_attempts=%d status=%q", job.Type, job.MaxAttempts, job.Status)
		}
	}

	// Structured data was complete; the llm must not be consulted.
	if llm.calls != 0 {
		t.Errorf("llm called %d times for a complete report", llm.calls)
	}
}

func TestHandleExtractsMissingFieldsFromTranscript(t *testing.T) {
	store := &fakeStore{}
	llm := &fakeLLM{response: "```json\n" + `{
  "name": "Dana Reyes",
  "zip_code": "V8T 4G8",
  "service_type": "plumbing",
  "description": "Leaking kitchen faucet under the sink"
}` + "\n```"}
	s := New(store, llm, nopLogger{})

	report := structuredReport()
	report.Structured = map[string]string{"name": "Dana"}

	req, err := s.Handle(context.Background(), report)
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}

	if llm.calls != 1 {
		t.Fatalf("llm called %d times, want 1", llm.calls)
	}
	// Report data wins over the extraction.
	if req.CallerName != "Dana" {
		t.Errorf("name = %q, want the report's value kept", req.CallerName)
	}
	if req.ServiceType != "plumbing" || req.ZipCode != "V8T 4G8" {
		t.Errorf("extracted fields missing: %+v", req)
	}
	if !strings.Contains(req.Description, "Leaking kitchen faucet") {
		t.Errorf("description = %q", req.Description)
	}
}

func TestHandleSurvivesUnparseableExtraction(t *testing.T) {
	store := &fakeStore{}
	llm := &fakeLLM{response: "I could not find anything."}
	s := New(store, llm, nopLogger{})

	report := structuredReport()
	report.Structured = nil

	req, err := s.Handle(context.Background(), report)
	if err != nil {
		t.Fatalf("Handle returned error: %v", err)
	}
	if req.ServiceType != "" {
		t.Errorf("service_type = %q, want empty", req.ServiceType)
	}
	if len(store.created) != 1 || len(store.jobs) != 2 {
		t.Error("request and jobs must still be stored on extraction failure")
	}
}

func TestCallDurationGuards(t *testing.T) {
	if d := callDuration(CallReport{}); d != 0 {
		t.Errorf("duration without timestamps = %d", d)
	}
	r := CallReport{
		StartedAt: time.Date(2026, 8, 1, 10, 5, 0, 0, time.UTC),
		EndedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
	}
	if d := callDuration(r); d != 0 {
		t.Errorf("duration with reversed timestamps = %d", d)
	}
}
