package mailclass

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

// Notifier tells the homeowner a contractor replied. Implemented by the
// SMS notify usecase; nil disables notification.
type Notifier interface {
	ContractorReply(ctx context.Context, req *entity.ServiceRequest, cls *entity.EmailClassification) error
}

// Processor handles one inbound email end to end: match the tracking
// token, classify, store, file the follow-up record, notify.
type Processor struct {
	store      output.Store
	classifier *Classifier
	notifier   Notifier
	logger     output.LoggerPort
}

func NewProcessor(store output.Store, classifier *Classifier, notifier Notifier, logger output.LoggerPort) *Processor {
	return &Processor{
		store:      store,
		classifier: classifier,
		notifier:   notifier,
		logger:     logger,
	}
}

// Process stores the email and, when the token matched a service
// request, files the classified follow-up. Only a failed store write is
// an error; everything downstream of storage is logged and swallowed so
// the webhook can answer 200.
func (p *Processor) Process(ctx context.Context, email *entity.InboundEmail) error {
	if email.ID == "" {
		email.ID = uuid.NewString()
	}
	if email.ReceivedAt.IsZero() {
		email.ReceivedAt = time.Now().UTC()
	}

	req := p.matchRequest(ctx, email)

	var cls *entity.EmailClassification
	if req != nil {
		cls = p.classifier.Classify(ctx, req.Description, email)
		email.Category = string(cls.Category)
	}

	if err := p.store.SaveInboundEmail(ctx, email); err != nil {
		return fmt.Errorf("save inbound email: %w", err)
	}

	if req == nil || cls == nil {
		return nil
	}
	p.file(ctx, req, email, cls)
	return nil
}

func (p *Processor) matchRequest(ctx context.Context, email *entity.InboundEmail) *entity.ServiceRequest {
	if email.TrackingToken == "" {
		return nil
	}

	req, err := p.store.ServiceRequestByToken(ctx, email.TrackingToken)
	if errors.Is(err, output.ErrNotFound) {
		p.logger.Warn("Inbound email carries unknown tracking token", "token", email.TrackingToken)
		return nil
	}
	if err != nil {
		p.logger.Error("Tracking token lookup failed", "token", email.TrackingToken, "error", err)
		return nil
	}
	email.MatchedRequestID = req.ID

	// The token identifies the request; the sender address identifies
	// which of its contractors wrote back.
	if id := p.matchBusiness(ctx, req.ID, email.Sender); id != "" {
		email.MatchedBusinessID = id
	}
	return req
}

func (p *Processor) matchBusiness(ctx context.Context, requestID, sender string) string {
	addr := senderAddress(sender)
	if addr == "" {
		return ""
	}
	businesses, err := p.store.BusinessesForRequest(ctx, requestID)
	if err != nil {
		p.logger.Warn("Business lookup for sender match failed", "request_id", requestID, "error", err)
		return ""
	}
	for _, b := range businesses {
		if b.Email != "" && strings.EqualFold(b.Email, addr) {
			return b.ID
		}
	}
	return ""
}

func senderAddress(sender string) string {
	if a, err := mail.ParseAddress(sender); err == nil {
		return a.Address
	}
	return strings.TrimSpace(sender)
}

func (p *Processor) file(ctx context.Context, req *entity.ServiceRequest, email *entity.InboundEmail, cls *entity.EmailClassification) {
	now := time.Now().UTC()

	switch cls.Category {
	case entity.EmailCategoryQuestion:
		q := &entity.PendingQuestion{
			ID:               uuid.NewString(),
			ServiceRequestID: req.ID,
			BusinessID:       email.MatchedBusinessID,
			InboundEmailID:   email.ID,
			Question:         cls.Question,
			Status:           entity.QuestionStatusPending,
			CreatedAt:        now,
		}
		if err := p.store.CreatePendingQuestion(ctx, q); err != nil {
			p.logger.Error("Failed to file pending question", "request_id", req.ID, "error", err)
			return
		}

	case entity.EmailCategoryQuote:
		quote := &entity.Quote{
			ID:               uuid.NewString(),
			ServiceRequestID: req.ID,
			BusinessID:       email.MatchedBusinessID,
			InboundEmailID:   email.ID,
			PriceEstimate:    cls.PriceEstimate,
			Availability:     cls.Availability,
			Summary:          cls.Summary,
			Status:           entity.QuoteStatusPending,
			CreatedAt:        now,
		}
		if err := p.store.CreateQuote(ctx, quote); err != nil {
			p.logger.Error("Failed to file quote", "request_id", req.ID, "error", err)
			return
		}
		// First quote moves the request to quoted; the stamp is
		// idempotent for later ones.
		if err := p.store.MarkQuotesPresented(ctx, req.ID, now); err != nil {
			p.logger.Warn("Failed to mark quotes presented", "request_id", req.ID, "error", err)
		}

	default:
		// Declines and noise are kept as inbound_emails rows only.
		return
	}

	if p.notifier == nil {
		return
	}
	if err := p.notifier.ContractorReply(ctx, req, cls); err != nil {
		p.logger.Warn("Reply notification failed", "request_id", req.ID, "error", err)
	}
}
