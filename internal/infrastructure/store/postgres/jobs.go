package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

func (s *Store) EnqueueJob(ctx context.Context, job *entity.Job) error {
	payload := job.Payload
	if payload == nil {
		payload = map[string]string{}
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal job payload: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO background_jobs (id, job_type, service_request_id, status, payload,
			attempts, max_attempts, error_message, scheduled_for, started_at, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		job.ID, string(job.Type), job.ServiceRequestID, string(job.Status), data,
		job.Attempts, job.MaxAttempts, job.ErrorMessage, job.ScheduledFor,
		job.StartedAt, job.CompletedAt, job.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// NextPendingJob returns the oldest due pending job, or ErrNotFound when
// the queue is idle.
func (s *Store) NextPendingJob(ctx context.Context, now time.Time) (*entity.Job, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, job_type, service_request_id, status, payload, attempts, max_attempts,
			error_message, scheduled_for, started_at, completed_at, created_at
		FROM background_jobs
		WHERE status = $1 AND scheduled_for <= $2
		ORDER BY scheduled_for
		LIMIT 1`, string(entity.JobPending), now)

	var job entity.Job
	var jobType, status string
	var payload []byte
	err := row.Scan(&job.ID, &jobType, &job.ServiceRequestID, &status, &payload,
		&job.Attempts, &job.MaxAttempts, &job.ErrorMessage, &job.ScheduledFor,
		&job.StartedAt, &job.CompletedAt, &job.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, output.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan job: %w", err)
	}

	job.Type = entity.JobType(jobType)
	job.Status = entity.JobStatus(status)
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &job.Payload); err != nil {
			return nil, fmt.Errorf("unmarshal job payload: %w", err)
		}
	}
	return &job, nil
}

func (s *Store) MarkJobProcessing(ctx context.Context, id string, attempts int, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE background_jobs SET status = $2, attempts = $3, started_at = $4
		WHERE id = $1 AND status = $5`,
		id, string(entity.JobProcessing), attempts, at, string(entity.JobPending))
	if err != nil {
		return fmt.Errorf("mark job processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return output.ErrNotFound
	}
	return nil
}

func (s *Store) MarkJobCompleted(ctx context.Context, id string, at time.Time) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE background_jobs SET status = $2, completed_at = $3, error_message = '' WHERE id = $1`,
		id, string(entity.JobCompleted), at)
	if err != nil {
		return fmt.Errorf("mark job completed: %w", err)
	}
	return nil
}

// MarkJobFailed either re-queues the job for another attempt or parks it
// as failed for good.
func (s *Store) MarkJobFailed(ctx context.Context, id string, errMsg string, retry bool) error {
	status := entity.JobFailed
	if retry {
		status = entity.JobPending
	}
	_, err := s.pool.Exec(ctx, `
		UPDATE background_jobs SET status = $2, error_message = $3 WHERE id = $1`,
		id, string(status), errMsg)
	if err != nil {
		return fmt.Errorf("mark job failed: %w", err)
	}
	return nil
}
