// Package discovery finds candidate contractors for a service request
// and records them, tracking the request's discovery status.
package discovery

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

// searchLimit caps how many businesses one discovery run stores.
const searchLimit = 30

type Runner struct {
	store  output.Store
	finder output.BusinessFinder
	logger output.LoggerPort
}

func New(store output.Store, finder output.BusinessFinder, logger output.LoggerPort) *Runner {
	return &Runner{store: store, finder: finder, logger: logger}
}

// Run searches and stores businesses for one request. The discovery
// status ends as completed or failed; the returned count tells the
// caller whether contact extraction is worth queueing.
func (r *Runner) Run(ctx context.Context, requestID, serviceType, location string) (int, error) {
	if location == "" {
		return 0, fmt.Errorf("discovery for %s: no location", requestID)
	}

	if err := r.store.SetDiscoveryStatus(ctx, requestID, entity.DiscoveryInProgress); err != nil {
		return 0, fmt.Errorf("mark discovery in progress: %w", err)
	}

	businesses, err := r.finder.Search(ctx, serviceType, location, searchLimit)
	if err != nil {
		if markErr := r.store.SetDiscoveryStatus(ctx, requestID, entity.DiscoveryFailed); markErr != nil {
			r.logger.Error("Failed to mark discovery failed", "request_id", requestID, "error", markErr)
		}
		return 0, fmt.Errorf("business search: %w", err)
	}

	for i := range businesses {
		if businesses[i].ID == "" {
			businesses[i].ID = uuid.NewString()
		}
		businesses[i].ServiceRequestID = requestID
		businesses[i].ExtractionStatus = entity.ExtractionPending
		businesses[i].OutreachStatus = entity.OutreachPending
	}

	if len(businesses) > 0 {
		if err := r.store.InsertBusinesses(ctx, businesses); err != nil {
			if markErr := r.store.SetDiscoveryStatus(ctx, requestID, entity.DiscoveryFailed); markErr != nil {
				r.logger.Error("Failed to mark discovery failed", "request_id", requestID, "error", markErr)
			}
			return 0, fmt.Errorf("store businesses: %w", err)
		}
	}

	if err := r.store.SetDiscoveryStatus(ctx, requestID, entity.DiscoveryCompleted); err != nil {
		r.logger.Error("Failed to mark discovery completed", "request_id", requestID, "error", err)
	}

	r.logger.Info("Business discovery completed",
		"request_id", requestID,
		"service_type", serviceType,
		"found", len(businesses),
	)
	return len(businesses), nil
}
