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

var businessColumns = []string{
	"id", "service_request_id", "google_place_id", "business_name", "phone", "email",
	"website", "full_address", "latitude", "longitude", "rating", "review_count",
	"business_category", "contact_extraction_status", "outreach_status", "outreach_notes",
	"outreach_sent_at", "form_fill_status", "form_fill_url", "created_at",
}

const businessSelect = `SELECT id, service_request_id, google_place_id, business_name, phone, email,
	website, full_address, latitude, longitude, rating, review_count,
	business_category, contact_extraction_status, outreach_status, outreach_notes,
	outreach_sent_at, form_fill_status, form_fill_url, created_at
	FROM discovered_businesses`

// InsertBusinesses bulk-loads one discovery batch with COPY.
func (s *Store) InsertBusinesses(ctx context.Context, businesses []entity.DiscoveredBusiness) error {
	if len(businesses) == 0 {
		return nil
	}

	rows := make([][]any, len(businesses))
	for i, b := range businesses {
		rows[i] = []any{
			b.ID, b.ServiceRequestID, b.GooglePlaceID, b.Name, b.Phone, b.Email,
			b.Website, b.FullAddress, b.Latitude, b.Longitude, b.Rating, b.ReviewCount,
			b.Category, string(b.ExtractionStatus), string(b.OutreachStatus), b.OutreachNotes,
			b.OutreachSentAt, b.FormFillStatus, b.FormFillURL, b.CreatedAt,
		}
	}

	copied, err := s.pool.CopyFrom(ctx, pgx.Identifier{"discovered_businesses"}, businessColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return fmt.Errorf("copy businesses: %w", err)
	}
	if int(copied) != len(businesses) {
		return fmt.Errorf("copied %d of %d businesses", copied, len(businesses))
	}
	return nil
}

func (s *Store) Business(ctx context.Context, id string) (*entity.DiscoveredBusiness, error) {
	row := s.pool.QueryRow(ctx, businessSelect+` WHERE id = $1`, id)
	return scanBusiness(row)
}

func (s *Store) BusinessesForRequest(ctx context.Context, requestID string) ([]entity.DiscoveredBusiness, error) {
	rows, err := s.pool.Query(ctx, businessSelect+` WHERE service_request_id = $1 ORDER BY rating DESC, review_count DESC`, requestID)
	if err != nil {
		return nil, fmt.Errorf("query businesses: %w", err)
	}
	defer rows.Close()
	return collectBusinesses(rows)
}

func (s *Store) PendingExtractionBusinesses(ctx context.Context, requestID string, limit int) ([]entity.DiscoveredBusiness, error) {
	rows, err := s.pool.Query(ctx, businessSelect+`
		WHERE service_request_id = $1 AND contact_extraction_status = $2
		ORDER BY rating DESC, review_count DESC LIMIT $3`,
		requestID, string(entity.ExtractionPending), limit)
	if err != nil {
		return nil, fmt.Errorf("query pending businesses: %w", err)
	}
	defer rows.Close()
	return collectBusinesses(rows)
}

func (s *Store) CountBusinesses(ctx context.Context, requestID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM discovered_businesses WHERE service_request_id = $1`, requestID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count businesses: %w", err)
	}
	return count, nil
}

func (s *Store) UpdateBusinessOutreach(ctx context.Context, id string, status entity.OutreachStatus, notes string, sentAt *time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE discovered_businesses
		SET outreach_status = $2, outreach_notes = $3,
		    outreach_sent_at = COALESCE($4, outreach_sent_at)
		WHERE id = $1`, id, string(status), notes, sentAt)
	if err != nil {
		return fmt.Errorf("update outreach: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return output.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateBusinessContacts(ctx context.Context, id string, phone, email string, status entity.ExtractionStatus) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE discovered_businesses
		SET phone = $2, email = $3, contact_extraction_status = $4
		WHERE id = $1`, id, phone, email, string(status))
	if err != nil {
		return fmt.Errorf("update contacts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return output.ErrNotFound
	}
	return nil
}

func (s *Store) UpdateBusinessFormFill(ctx context.Context, id string, status, formURL string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE discovered_businesses SET form_fill_status = $2, form_fill_url = $3 WHERE id = $1`,
		id, status, formURL)
	if err != nil {
		return fmt.Errorf("update form fill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return output.ErrNotFound
	}
	return nil
}

func scanBusiness(row pgx.Row) (*entity.DiscoveredBusiness, error) {
	var b entity.DiscoveredBusiness
	var extraction, outreach string
	err := row.Scan(
		&b.ID, &b.ServiceRequestID, &b.GooglePlaceID, &b.Name, &b.Phone, &b.Email,
		&b.Website, &b.FullAddress, &b.Latitude, &b.Longitude, &b.Rating, &b.ReviewCount,
		&b.Category, &extraction, &outreach, &b.OutreachNotes,
		&b.OutreachSentAt, &b.FormFillStatus, &b.FormFillURL, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, output.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan business: %w", err)
	}
	b.ExtractionStatus = entity.ExtractionStatus(extraction)
	b.OutreachStatus = entity.OutreachStatus(outreach)
	return &b, nil
}

func collectBusinesses(rows pgx.Rows) ([]entity.DiscoveredBusiness, error) {
	var businesses []entity.DiscoveredBusiness
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, *b)
	}
	return businesses, rows.Err()
}
