package output

import (
	"context"
	"errors"
	"time"

	"quinn-backend/internal/domain/entity"
)

// ErrNotFound is returned by point lookups that match no row.
var ErrNotFound = errors.New("not found")

// Store is the persistence boundary. Every method is a single-row (or
// single-request-scoped) operation; consistency is whatever the hosted
// datastore provides for those.
type Store interface {
	CreateServiceRequest(ctx context.Context, req *entity.ServiceRequest) error
	ServiceRequest(ctx context.Context, id string) (*entity.ServiceRequest, error)
	ServiceRequestByToken(ctx context.Context, token string) (*entity.ServiceRequest, error)
	ListServiceRequests(ctx context.Context) ([]entity.ServiceRequest, error)
	UpdateServiceRequestStatus(ctx context.Context, id string, status entity.RequestStatus, notes string) error
	SetDiscoveryStatus(ctx context.Context, id string, status entity.DiscoveryStatus) error
	MarkSMSSent(ctx context.Context, id string, at time.Time) error
	MarkQuotesPresented(ctx context.Context, id string, at time.Time) error

	InsertBusinesses(ctx context.Context, businesses []entity.DiscoveredBusiness) error
	Business(ctx context.Context, id string) (*entity.DiscoveredBusiness, error)
	BusinessesForRequest(ctx context.Context, requestID string) ([]entity.DiscoveredBusiness, error)
	PendingExtractionBusinesses(ctx context.Context, requestID string, limit int) ([]entity.DiscoveredBusiness, error)
	CountBusinesses(ctx context.Context, requestID string) (int, error)
	UpdateBusinessOutreach(ctx context.Context, id string, status entity.OutreachStatus, notes string, sentAt *time.Time) error
	UpdateBusinessContacts(ctx context.Context, id string, phone, email string, status entity.ExtractionStatus) error
	UpdateBusinessFormFill(ctx context.Context, id string, status, formURL string) error

	SaveInboundEmail(ctx context.Context, email *entity.InboundEmail) error
	CreatePendingQuestion(ctx context.Context, q *entity.PendingQuestion) error
	CreateQuote(ctx context.Context, quote *entity.Quote) error
	RecordSMS(ctx context.Context, sms *entity.SMSMessage) error

	EnqueueJob(ctx context.Context, job *entity.Job) error
	NextPendingJob(ctx context.Context, now time.Time) (*entity.Job, error)
	MarkJobProcessing(ctx context.Context, id string, attempts int, at time.Time) error
	MarkJobCompleted(ctx context.Context, id string, at time.Time) error
	MarkJobFailed(ctx context.Context, id string, errMsg string, retry bool) error

	Close()
}
