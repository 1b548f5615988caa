package contacts

import (
	"context"
	"errors"
	"testing"

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
}

func (f *fakeLLM) Chat(ctx context.Context, req output.ChatRequest) (*output.ChatResponse, error) {
	return &output.ChatResponse{Message: entity.Message{Role: entity.RoleAssistant, Content: f.response}}, nil
}

type fakeScraper struct {
	pages map[string]string
	errs  map[string]error
}

func (f *fakeScraper) ReadPage(ctx context.Context, url string) (string, error) {
	if err := f.errs[url]; err != nil {
		return "", err
	}
	return f.pages[url], nil
}

type contactUpdate struct {
	phone, email string
	status       entity.ExtractionStatus
}

type fakeStore struct {
	output.Store

	pending []entity.DiscoveredBusiness
	updates map[string]contactUpdate
}

func (s *fakeStore) PendingExtractionBusinesses(ctx context.Context, requestID string, limit int) ([]entity.DiscoveredBusiness, error) {
	if len(s.pending) > limit {
		return s.pending[:limit], nil
	}
	return s.pending, nil
}

func (s *fakeStore) UpdateBusinessContacts(ctx context.Context, id string, phone, email string, status entity.ExtractionStatus) error {
	if s.updates == nil {
		s.updates = map[string]contactUpdate{}
	}
	s.updates[id] = contactUpdate{phone: phone, email: email, status: status}
	return nil
}

func TestProcessRequestExtractsAndSaves(t *testing.T) {
	store := &fakeStore{pending: []entity.DiscoveredBusiness{
		{ID: "biz-1", Website: "https://plumberco.test", Phone: "+16045550000"},
	}}
	scraper := &fakeScraper{pages: map[string]string{
		"https://plumberco.test": "Call us at (604) 555-0000 or email info@plumberco.test",
	}}
	llm := &fakeLLM{response: "```json\n" + `{"phone": "(604) 555-9999", "email": "info@plumberco.test", "address": ""}` + "\n```"}

	e := New(store, scraper, llm, nopLogger{})
	if err := e.ProcessRequest(context.Background(), "req-1"); err != nil {
		t.Fatalf("ProcessRequest returned error: %v", err)
	}

	u, ok := store.updates["biz-1"]
	if !ok {
		t.Fatal("business not updated")
	}
	if u.status != entity.ExtractionCompleted {
		t.Errorf("status = %q, want %q", u.status, entity.ExtractionCompleted)
	}
	if u.email != "info@plumberco.test" {
		t.Errorf("email = %q", u.email)
	}
	// Discovery already knew a phone; extraction must not overwrite it.
	if u.phone != "+16045550000" {
		t.Errorf("phone = %q, want the discovery value kept", u.phone)
	}
}

func TestProcessRequestFailureContinues(t *testing.T) {
	store := &fakeStore{pending: []entity.DiscoveredBusiness{
		{ID: "biz-1", Website: "https://broken.test"},
		{ID: "biz-2", Website: "https://plumberco.test"},
	}}
	scraper := &fakeScraper{
		pages: map[string]string{"https://plumberco.test": "email info@plumberco.test"},
		errs:  map[string]error{"https://broken.test": errors.New("jina 502")},
	}
	llm := &fakeLLM{response: `{"phone": "", "email": "info@plumberco.test", "address": ""}`}

	e := New(store, scraper, llm, nopLogger{})
	if err := e.ProcessRequest(context.Background(), "req-1"); err != nil {
		t.Fatalf("ProcessRequest returned error: %v", err)
	}

	if store.updates["biz-1"].status != entity.ExtractionFailed {
		t.Errorf("biz-1 status = %q, want failed", store.updates["biz-1"].status)
	}
	if store.updates["biz-2"].status != entity.ExtractionCompleted {
		t.Errorf("biz-2 status = %q, want completed (run continues past failures)", store.updates["biz-2"].status)
	}
}

func TestProcessRequestSkipsBusinessesWithoutWebsite(t *testing.T) {
	store := &fakeStore{pending: []entity.DiscoveredBusiness{{ID: "biz-1"}}}
	e := New(store, &fakeScraper{}, &fakeLLM{}, nopLogger{})

	if err := e.ProcessRequest(context.Background(), "req-1"); err != nil {
		t.Fatalf("ProcessRequest returned error: %v", err)
	}
	if len(store.updates) != 0 {
		t.Error("business without website must be left alone")
	}
}

func TestParseContactInfoInvalid(t *testing.T) {
	if _, err := parseContactInfo("not json"); err == nil {
		t.Error("expected error for invalid JSON")
	}
}
