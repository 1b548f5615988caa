// Package outreach sends the quote-request email to a discovered
// business, with replies routed back through the tracking address.
package outreach

import (
	"context"
	"fmt"
	"time"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

type Service struct {
	store       output.Store
	mailer      output.Mailer
	replyDomain string
	logger      output.LoggerPort
}

// New wires the outreach sender. replyDomain is the inbound mail domain
// ("example.com" yields Reply-To {token}@quotes.example.com).
func New(store output.Store, mailer output.Mailer, replyDomain string, logger output.LoggerPort) *Service {
	return &Service{
		store:       store,
		mailer:      mailer,
		replyDomain: replyDomain,
		logger:      logger,
	}
}

// Send emails one business about its request. The business row records
// the outcome either way.
func (s *Service) Send(ctx context.Context, businessID string) error {
	business, err := s.store.Business(ctx, businessID)
	if err != nil {
		return fmt.Errorf("load business: %w", err)
	}
	if business.Email == "" {
		return fmt.Errorf("business %s has no email address", businessID)
	}

	req, err := s.store.ServiceRequest(ctx, business.ServiceRequestID)
	if err != nil {
		return fmt.Errorf("load service request: %w", err)
	}

	email := output.OutboundEmail{
		To:      business.Email,
		Subject: s.subject(req),
		Text:    s.body(req, business),
		ReplyTo: fmt.Sprintf("%s@quotes.%s", req.TrackingToken, s.replyDomain),
	}

	msgID, err := s.mailer.Send(ctx, email)
	if err != nil {
		if markErr := s.store.UpdateBusinessOutreach(ctx, businessID, entity.OutreachFailed, err.Error(), nil); markErr != nil {
			s.logger.Error("Failed to record outreach failure", "business_id", businessID, "error", markErr)
		}
		return fmt.Errorf("send outreach email: %w", err)
	}

	now := time.Now().UTC()
	notes := "mailgun message " + msgID
	if err := s.store.UpdateBusinessOutreach(ctx, businessID, entity.OutreachSent, notes, &now); err != nil {
		s.logger.Error("Failed to record outreach send", "business_id", businessID, "error", err)
	}

	s.logger.Info("Outreach email sent",
		"business_id", businessID,
		"request_id", req.ID,
		"message_id", msgID,
	)
	return nil
}

func (s *Service) subject(req *entity.ServiceRequest) string {
	service := req.ServiceType
	if service == "" {
		service = "home service"
	}
	return fmt.Sprintf("Quote request: %s job in %s", service, locationLabel(req))
}

// body deliberately uses the phone alias: the homeowner's real number
// is only shared after they accept a quote.
func (s *Service) body(req *entity.ServiceRequest, business *entity.DiscoveredBusiness) string {
	return fmt.Sprintf(`Hi %s,

A homeowner near %s is looking for help with the following:

%s

Timeline: %s
Contact: %s (phone %s)

If you can take this job, reply to this email with your price estimate
and availability. Your reply goes straight to the homeowner.

Thanks,
Quinn Concierge`,
		business.Name,
		locationLabel(req),
		req.Description,
		timelineLabel(req),
		req.CallerName,
		req.CallerPhoneAlias,
	)
}

func locationLabel(req *entity.ServiceRequest) string {
	if req.ZipCode != "" {
		return req.ZipCode
	}
	if req.CallerAddress != "" {
		return req.CallerAddress
	}
	return "your area"
}

func timelineLabel(req *entity.ServiceRequest) string {
	if req.Timeline != "" {
		return req.Timeline
	}
	return "flexible"
}
