// Package notify composes and sends homeowner SMS updates, recording
// every attempt in sms_messages.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

type Service struct {
	sms     output.SMSSender
	store   output.Store
	baseURL string
	logger  output.LoggerPort
}

func New(sms output.SMSSender, store output.Store, baseURL string, logger output.LoggerPort) *Service {
	return &Service{
		sms:     sms,
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// Confirmation is the first SMS after intake: confirms the request and
// hands out the public tracking link.
func (s *Service) Confirmation(ctx context.Context, req *entity.ServiceRequest) error {
	service := req.ServiceType
	if service == "" {
		service = "home service"
	}
	body := fmt.Sprintf(
		"Hi %s! We received your %s request and are reaching out to local pros now. Track progress: %s/track/%s",
		firstName(req.CallerName), service, s.baseURL, req.TrackingToken,
	)

	if err := s.send(ctx, req, body); err != nil {
		return err
	}
	now := time.Now().UTC()
	if err := s.store.MarkSMSSent(ctx, req.ID, now); err != nil {
		s.logger.Warn("Failed to stamp sms_sent_at", "request_id", req.ID, "error", err)
	}
	return nil
}

// ContractorReply tells the homeowner a contractor wrote back with a
// quote or a question.
func (s *Service) ContractorReply(ctx context.Context, req *entity.ServiceRequest, cls *entity.EmailClassification) error {
	var body string
	switch cls.Category {
	case entity.EmailCategoryQuote:
		body = fmt.Sprintf("Good news! A contractor quoted %s for your %s request.",
			cls.PriceEstimate, serviceLabel(req))
		if cls.Availability != "" {
			body += " Availability: " + cls.Availability
		}
	case entity.EmailCategoryQuestion:
		body = fmt.Sprintf("A contractor has a question about your %s request: %s",
			serviceLabel(req), cls.Question)
	default:
		body = fmt.Sprintf("A contractor replied about your %s request.", serviceLabel(req))
	}
	body += fmt.Sprintf(" Details: %s/track/%s", s.baseURL, req.TrackingToken)

	return s.send(ctx, req, body)
}

// Custom sends a caller-composed update, used by the internal notify
// endpoint.
func (s *Service) Custom(ctx context.Context, req *entity.ServiceRequest, body string) error {
	return s.send(ctx, req, body)
}

// send performs the provider call and records the attempt either way.
func (s *Service) send(ctx context.Context, req *entity.ServiceRequest, body string) error {
	msg := &entity.SMSMessage{
		ID:               uuid.NewString(),
		ServiceRequestID: req.ID,
		ToPhone:          req.CallerPhone,
		Body:             body,
		CreatedAt:        time.Now().UTC(),
	}

	sid, err := s.sms.Send(ctx, req.CallerPhone, body)
	if err != nil {
		msg.Status = entity.SMSStatusFailed
		msg.ErrorMessage = err.Error()
		if recErr := s.store.RecordSMS(ctx, msg); recErr != nil {
			s.logger.Error("Failed to record failed sms", "request_id", req.ID, "error", recErr)
		}
		return fmt.Errorf("send sms: %w", err)
	}

	msg.Status = entity.SMSStatusSent
	msg.ProviderSID = sid
	if err := s.store.RecordSMS(ctx, msg); err != nil {
		s.logger.Error("Failed to record sent sms", "request_id", req.ID, "error", err)
	}
	s.logger.Info("SMS sent", "request_id", req.ID, "sid", sid)
	return nil
}

func serviceLabel(req *entity.ServiceRequest) string {
	if req.ServiceType != "" {
		return req.ServiceType
	}
	return "service"
}

func firstName(full string) string {
	full = strings.TrimSpace(full)
	if full == "" {
		return "there"
	}
	if i := strings.IndexByte(full, ' '); i > 0 {
		return full[:i]
	}
	return full
}
