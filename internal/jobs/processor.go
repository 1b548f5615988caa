// Package jobs drains the background queue: SMS confirmations, business
// discovery, and contact extraction deferred by the intake webhook.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

const defaultPollInterval = 5 * time.Second

// followupMaxAttempts applies to jobs the processor itself queues.
const followupMaxAttempts = 3

type ConfirmationSender interface {
	Confirmation(ctx context.Context, req *entity.ServiceRequest) error
}

type DiscoveryRunner interface {
	Run(ctx context.Context, requestID, serviceType, location string) (int, error)
}

type ContactExtractor interface {
	ProcessRequest(ctx context.Context, requestID string) error
}

type Processor struct {
	store     output.Store
	notifier  ConfirmationSender
	discovery DiscoveryRunner
	contacts  ContactExtractor
	logger    output.LoggerPort
	interval  time.Duration

	now func() time.Time
}

func New(store output.Store, notifier ConfirmationSender, discovery DiscoveryRunner, contacts ContactExtractor, logger output.LoggerPort) *Processor {
	return &Processor{
		store:     store,
		notifier:  notifier,
		discovery: discovery,
		contacts:  contacts,
		logger:    logger,
		interval:  defaultPollInterval,
		now:       time.Now,
	}
}

// Run polls until the context is cancelled. One job at a time; a slow
// discovery run simply delays the next poll.
func (p *Processor) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Job processor started", "poll_interval", p.interval.String())
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Job processor stopped")
			return ctx.Err()
		case <-ticker.C:
			p.Drain(ctx)
		}
	}
}

// Drain processes every due job, then returns.
func (p *Processor) Drain(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		ok, err := p.processNext(ctx)
		if err != nil {
			p.logger.Error("Job processing error", "error", err.Error())
			return
		}
		if !ok {
			return
		}
	}
}

// processNext claims and runs one job. Returns false when the queue is
// idle.
func (p *Processor) processNext(ctx context.Context) (bool, error) {
	job, err := p.store.NextPendingJob(ctx, p.now())
	if errors.Is(err, output.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("poll queue: %w", err)
	}

	attempts := job.Attempts + 1
	if err := p.store.MarkJobProcessing(ctx, job.ID, attempts, p.now()); err != nil {
		// Claimed by another worker between poll and claim.
		if errors.Is(err, output.ErrNotFound) {
			return true, nil
		}
		return false, fmt.Errorf("claim job %s: %w", job.ID, err)
	}

	log := p.logger.WithFields(map[string]any{
		"job_id":   job.ID,
		"job_type": string(job.Type),
		"attempt":  attempts,
	})
	log.Info("Processing job")

	if err := p.dispatch(ctx, job); err != nil {
		retry := attempts < job.MaxAttempts
		log.Error("Job failed", "error", err.Error(), "retry", retry)
		if markErr := p.store.MarkJobFailed(ctx, job.ID, err.Error(), retry); markErr != nil {
			return false, fmt.Errorf("mark job failed: %w", markErr)
		}
		return true, nil
	}

	if err := p.store.MarkJobCompleted(ctx, job.ID, p.now()); err != nil {
		return false, fmt.Errorf("mark job completed: %w", err)
	}
	log.Info("Job completed")
	return true, nil
}

func (p *Processor) dispatch(ctx context.Context, job *entity.Job) error {
	switch job.Type {
	case entity.JobSMSConfirmation:
		return p.sendConfirmation(ctx, job)
	case entity.JobBusinessDiscovery:
		return p.runDiscovery(ctx, job)
	case entity.JobContactExtraction:
		return p.contacts.ProcessRequest(ctx, job.ServiceRequestID)
	default:
		return fmt.Errorf("unknown job type %q", job.Type)
	}
}

func (p *Processor) sendConfirmation(ctx context.Context, job *entity.Job) error {
	req, err := p.store.ServiceRequest(ctx, job.ServiceRequestID)
	if err != nil {
		return fmt.Errorf("load request %s: %w", job.ServiceRequestID, err)
	}
	return p.notifier.Confirmation(ctx, req)
}

// runDiscovery searches for contractors and, when any are found, queues
// the contact-extraction follow-up.
func (p *Processor) runDiscovery(ctx context.Context, job *entity.Job) error {
	location := job.Payload["zip_code"]
	if location == "" {
		location = job.Payload["address"]
	}

	count, err := p.discovery.Run(ctx, job.ServiceRequestID, job.Payload["service_type"], location)
	if err != nil {
		return err
	}
	if count == 0 {
		return nil
	}

	followup := &entity.Job{
		ID:               uuid.NewString(),
		Type:             entity.JobContactExtraction,
		ServiceRequestID: job.ServiceRequestID,
		Status:           entity.JobPending,
		Payload:          map[string]string{},
		MaxAttempts:      followupMaxAttempts,
		ScheduledFor:     p.now(),
		CreatedAt:        p.now(),
	}
	if err := p.store.EnqueueJob(ctx, followup); err != nil {
		return fmt.Errorf("queue contact extraction: %w", err)
	}
	return nil
}
