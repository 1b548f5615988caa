package httpapi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"quinn-backend/internal/application/port/input"
	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
	"quinn-backend/internal/usecase/intake"
)

// IntakeService stores a service request from a completed call report.
type IntakeService interface {
	Handle(ctx context.Context, report intake.CallReport) (*entity.ServiceRequest, error)
}

// InboundProcessor files a contractor reply.
type InboundProcessor interface {
	Process(ctx context.Context, email *entity.InboundEmail) error
}

// SMSNotifier sends a free-form update to the homeowner.
type SMSNotifier interface {
	Custom(ctx context.Context, req *entity.ServiceRequest, body string) error
}

// OutreachSender emails one discovered business.
type OutreachSender interface {
	Send(ctx context.Context, businessID string) error
}

// FillerFactory builds a form filler with a fresh browser session. The
// returned func releases the session.
type FillerFactory func(ctx context.Context) (input.FormFiller, func(), error)

// Capabilities reports which vendor integrations are configured.
type Capabilities struct {
	Browser bool `json:"browser"`
	LLM     bool `json:"llm"`
	Store   bool `json:"store"`
}

type Handlers struct {
	store        output.Store
	intake       IntakeService
	inbound      InboundProcessor
	notifier     SMSNotifier
	outreach     OutreachSender
	newFiller    FillerFactory
	signingKey   string
	replyDomain  string
	capabilities Capabilities
	logger       output.LoggerPort
}

type HandlersConfig struct {
	Store         output.Store
	Intake        IntakeService
	Inbound       InboundProcessor
	Notifier      SMSNotifier
	Outreach      OutreachSender
	FillerFactory FillerFactory
	SigningKey    string
	ReplyDomain   string
	Capabilities  Capabilities
	Logger        output.LoggerPort
}

func NewHandlers(cfg HandlersConfig) *Handlers {
	return &Handlers{
		store:        cfg.Store,
		intake:       cfg.Intake,
		inbound:      cfg.Inbound,
		notifier:     cfg.Notifier,
		outreach:     cfg.Outreach,
		newFiller:    cfg.FillerFactory,
		signingKey:   cfg.SigningKey,
		replyDomain:  cfg.ReplyDomain,
		capabilities: cfg.Capabilities,
		logger:       cfg.Logger,
	}
}

func (h *Handlers) Register(r chi.Router) {
	r.Get("/health", h.handleHealth)

	r.Get("/api/fill-form", h.handleFillFormConfig)
	r.Post("/api/fill-form", h.handleFillForm)

	r.Post("/webhook/mailgun", h.handleMailgunWebhook)
	r.Post("/webhook/intake", h.handleIntakeWebhook)

	r.Post("/api/sms/notify", h.handleSMSNotify)
	r.Post("/api/outreach/{businessID}", h.handleOutreach)

	r.Get("/api/service-requests", h.handleListRequests)
	r.Get("/api/service-requests/{id}", h.handleGetRequest)
	r.Patch("/api/service-requests/{id}", h.handlePatchRequest)
	r.Get("/api/service-requests/{id}/businesses", h.handleListBusinesses)
	r.Patch("/api/service-requests/{id}/businesses/{businessID}", h.handlePatchBusiness)

	r.Get("/api/track/{token}", h.handleTrack)
}

func (h *Handlers) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

const maxJSONBody = 1 << 20

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxJSONBody))
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
