package notify

import (
	"context"
	"errors"
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

type fakeSMS struct {
	err    error
	sent   []string
	bodies []string
}

func (f *fakeSMS) Send(ctx context.Context, toPhone, body string) (string, error) {
	f.sent = append(f.sent, toPhone)
	f.bodies = append(f.bodies, body)
	if f.err != nil {
		return "", f.err
	}
	return "SM123", nil
}

type fakeStore struct {
	output.Store

	records   []*entity.SMSMessage
	smsSentAt *time.Time
}

func (s *fakeStore) RecordSMS(ctx context.Context, sms *entity.SMSMessage) error {
	s.records = append(s.records, sms)
	return nil
}

func (s *fakeStore) MarkSMSSent(ctx context.Context, id string, at time.Time) error {
	s.smsSentAt = &at
	return nil
}

func testRequest() *entity.ServiceRequest {
	return &entity.ServiceRequest{
		ID:            "req-1",
		CallerName:    "Dana Reyes",
		CallerPhone:   "+16045551234",
		ServiceType:   "plumbing",
		TrackingToken: "abc123xyz789",
	}
}

func TestConfirmationSendsTrackingLink(t *testing.T) {
	sms := &fakeSMS{}
	store := &fakeStore{}
	s := New(sms, store, "https://quinn.example.test/", nopLogger{})

	if err := s.Confirmation(context.Background(), testRequest()); err != nil {
		t.Fatalf("Confirmation returned error: %v", err)
	}

	if len(sms.sent) != 1 || sms.sent[0] != "+16045551234" {
		t.Fatalf("sent to %v, want the caller's phone", sms.sent)
	}
	body := sms.bodies[0]
	if !strings.Contains(body, "https://quinn.example.test/track/abc123xyz789") {
		t.Errorf("body missing tracking link: %q", body)
	}
	if !strings.Contains(body, "Dana") {
		t.Errorf("body missing first name: %q", body)
	}
	if store.smsSentAt == nil {
		t.Error("sms_sent_at not stamped")
	}
	if len(store.records) != 1 || store.records[0].Status != entity.SMSStatusSent {
		t.Errorf("records = %+v, want one sent row", store.records)
	}
	if store.records[0].ProviderSID != "SM123" {
		t.Errorf("provider sid = %q", store.records[0].ProviderSID)
	}
}

func TestSendFailureRecordedAsFailed(t *testing.T) {
	sms := &fakeSMS{err: errors.New("twilio 400")}
	store := &fakeStore{}
	s := New(sms, store, "https://quinn.example.test", nopLogger{})

	err := s.Confirmation(context.Background(), testRequest())
	if err == nil {
		t.Fatal("expected error when the provider fails")
	}

	if len(store.records) != 1 {
		t.Fatalf("got %d records, want 1", len(store.records))
	}
	rec := store.records[0]
	if rec.Status != entity.SMSStatusFailed {
		t.Errorf("status = %q, want %q", rec.Status, entity.SMSStatusFailed)
	}
	if !strings.Contains(rec.ErrorMessage, "twilio 400") {
		t.Errorf("error_message = %q", rec.ErrorMessage)
	}
	if store.smsSentAt != nil {
		t.Error("sms_sent_at must not be stamped on failure")
	}
}

func TestContractorReplyQuoteBody(t *testing.T) {
	sms := &fakeSMS{}
	s := New(sms, &fakeStore{}, "https://quinn.example.test", nopLogger{})

	cls := &entity.EmailClassification{
		Category:      entity.EmailCategoryQuote,
		PriceEstimate: "$150 plus parts",
		Availability:  "Thursday",
	}
	if err := s.ContractorReply(context.Background(), testRequest(), cls); err != nil {
		t.Fatalf("ContractorReply returned error: %v", err)
	}

	body := sms.bodies[0]
	if !strings.Contains(body, "$150 plus parts") {
		t.Errorf("body missing the quote wording: %q", body)
	}
	if !strings.Contains(body, "Thursday") {
		t.Errorf("body missing availability: %q", body)
	}
	if !strings.Contains(body, "/track/abc123xyz789") {
		t.Errorf("body missing tracking link: %q", body)
	}
}

func TestContractorReplyQuestionBody(t *testing.T) {
	sms := &fakeSMS{}
	s := New(sms, &fakeStore{}, "https://quinn.example.test", nopLogger{})

	cls := &entity.EmailClassification{
		Category: entity.EmailCategoryQuestion,
		Question: "Is the shutoff valve accessible?",
	}
	if err := s.ContractorReply(context.Background(), testRequest(), cls); err != nil {
		t.Fatalf("ContractorReply returned error: %v", err)
	}

	if !strings.Contains(sms.bodies[0], "Is the shutoff valve accessible?") {
		t.Errorf("body missing the question: %q", sms.bodies[0])
	}
}
