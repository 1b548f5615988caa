package postgres

import (
	"context"
	"fmt"

	"quinn-backend/internal/domain/entity"
)

func (s *Store) SaveInboundEmail(ctx context.Context, email *entity.InboundEmail) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO inbound_emails (id, sender, recipient, subject, body_plain, body_html,
			stripped_text, attachment_count, tracking_token, matched_request_id,
			matched_business_id, category, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		email.ID, email.Sender, email.Recipient, email.Subject, email.BodyPlain, email.BodyHTML,
		email.StrippedText, email.AttachmentCount, email.TrackingToken, email.MatchedRequestID,
		email.MatchedBusinessID, email.Category, email.ReceivedAt)
	if err != nil {
		return fmt.Errorf("insert inbound email: %w", err)
	}
	return nil
}

func (s *Store) CreatePendingQuestion(ctx context.Context, q *entity.PendingQuestion) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pending_questions (id, service_request_id, business_id, inbound_email_id, question, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		q.ID, q.ServiceRequestID, q.BusinessID, q.InboundEmailID, q.Question, q.Status, q.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert pending question: %w", err)
	}
	return nil
}

func (s *Store) CreateQuote(ctx context.Context, quote *entity.Quote) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO quotes (id, service_request_id, business_id, inbound_email_id,
			price_estimate, availability, summary, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		quote.ID, quote.ServiceRequestID, quote.BusinessID, quote.InboundEmailID,
		quote.PriceEstimate, quote.Availability, quote.Summary, quote.Status, quote.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quote: %w", err)
	}
	return nil
}

func (s *Store) RecordSMS(ctx context.Context, sms *entity.SMSMessage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sms_messages (id, service_request_id, to_phone, message_body, twilio_sid, status, error_message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sms.ID, sms.ServiceRequestID, sms.ToPhone, sms.Body, sms.ProviderSID, sms.Status, sms.ErrorMessage, sms.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert sms record: %w", err)
	}
	return nil
}
