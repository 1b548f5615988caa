package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

const serviceRequestColumns = `id, caller_name, caller_phone, caller_phone_alias, caller_email,
	caller_address, zip_code, service_type, description, timeline, call_transcript, call_summary,
	call_duration_seconds, tracking_token, status, business_discovery_status, notes,
	sms_sent_at, quotes_presented_at, created_at, updated_at`

func (s *Store) CreateServiceRequest(ctx context.Context, req *entity.ServiceRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO service_requests (`+serviceRequestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		req.ID, req.CallerName, req.CallerPhone, req.CallerPhoneAlias, req.CallerEmail,
		req.CallerAddress, req.ZipCode, req.ServiceType, req.Description, req.Timeline,
		req.CallTranscript, req.CallSummary, req.CallDurationSeconds, req.TrackingToken,
		string(req.Status), string(req.DiscoveryStatus), req.Notes,
		req.SMSSentAt, req.QuotesPresentedAt, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert service request: %w", err)
	}
	return nil
}

func (s *Store) ServiceRequest(ctx context.Context, id string) (*entity.ServiceRequest, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+serviceRequestColumns+` FROM service_requests WHERE id = $1`, id)
	return scanServiceRequest(row)
}

func (s *Store) ServiceRequestByToken(ctx context.Context, token string) (*entity.ServiceRequest, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+serviceRequestColumns+` FROM service_requests WHERE tracking_token = $1`, token)
	return scanServiceRequest(row)
}

func (s *Store) ListServiceRequests(ctx context.Context) ([]entity.ServiceRequest, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+serviceRequestColumns+` FROM service_requests ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query service requests: %w", err)
	}
	defer rows.Close()

	var requests []entity.ServiceRequest
	for rows.Next() {
		req, err := scanServiceRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func (s *Store) UpdateServiceRequestStatus(ctx context.Context, id string, status entity.RequestStatus, notes string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE service_requests
		SET status = $2, notes = CASE WHEN $3 <> '' THEN $3 ELSE notes END, updated_at = now()
		WHERE id = $1`, id, string(status), notes)
	if err != nil {
		return fmt.Errorf("update request status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return output.ErrNotFound
	}
	return nil
}

func (s *Store) SetDiscoveryStatus(ctx context.Context, id string, status entity.DiscoveryStatus) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE service_requests SET business_discovery_status = $2, updated_at = now() WHERE id = $1`,
		id, string(status))
	if err != nil {
		return fmt.Errorf("update discovery status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return output.ErrNotFound
	}
	return nil
}

func (s *Store) MarkSMSSent(ctx context.Context, id string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE service_requests SET sms_sent_at = $2, updated_at = now() WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("mark sms sent: %w", err)
	}
	return nil
}

func (s *Store) MarkQuotesPresented(ctx context.Context, id string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE service_requests SET quotes_presented_at = $2, status = $3, updated_at = now() WHERE id = $1`,
		id, at, string(entity.RequestStatusQuoted))
	if err != nil {
		return fmt.Errorf("mark quotes presented: %w", err)
	}
	return nil
}

func scanServiceRequest(row pgx.Row) (*entity.ServiceRequest, error) {
	var req entity.ServiceRequest
	var status, discovery string
	err := row.Scan(
		&req.ID, &req.CallerName, &req.CallerPhone, &req.CallerPhoneAlias, &req.CallerEmail,
		&req.CallerAddress, &req.ZipCode, &req.ServiceType, &req.Description, &req.Timeline,
		&req.CallTranscript, &req.CallSummary, &req.CallDurationSeconds, &req.TrackingToken,
		&status, &discovery, &req.Notes,
		&req.SMSSentAt, &req.QuotesPresentedAt, &req.CreatedAt, &req.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, output.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan service request: %w", err)
	}
	req.Status = entity.RequestStatus(status)
	req.DiscoveryStatus = entity.DiscoveryStatus(discovery)
	return &req, nil
}
