package input

import (
	"context"

	"quinn-backend/internal/domain/entity"
)

// FillRequest is one form-filling task: drive the target site toward a
// filled-in (never submitted) contact/booking form.
type FillRequest struct {
	WebsiteURL string
	BusinessID string
	Customer   entity.Customer
}

// FillResult carries the evidence of a run. Success means the loop ran
// to a normal termination; a half-filled form is a useful outcome, not
// a failure.
type FillResult struct {
	Success    bool
	Message    string
	FormURL    string
	Trace      entity.FormTrace
	Screenshot *entity.Screenshot
}

// FormFiller runs the observe-decide-act loop against one website.
type FormFiller interface {
	Fill(ctx context.Context, req FillRequest) (*FillResult, error)
}
