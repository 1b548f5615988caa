package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

type execCall struct {
	sql  string
	args []any
}

// fakePool records statements and plays back canned rows.
type fakePool struct {
	execs    []execCall
	execTag  pgconn.CommandTag
	execErr  error
	queryRow func(sql string, args []any) pgx.Row
	copied   int64
}

func (f *fakePool) Ping(ctx context.Context) error { return nil }

func (f *fakePool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, execCall{sql: sql, args: args})
	return f.execTag, f.execErr
}

func (f *fakePool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("Query not faked")
}

func (f *fakePool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return f.queryRow(sql, args)
}

func (f *fakePool) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return f.copied, nil
}

func (f *fakePool) Close() {}

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

func newStore(t *testing.T, pool *fakePool) *Store {
	t.Helper()
	s, err := New(context.Background(), pool, nil)
	require.NoError(t, err)
	return s
}

func TestEnqueueJobMarshalsPayload(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("INSERT 0 1")}
	s := newStore(t, pool)

	job := &entity.Job{
		ID:          "job-1",
		Type:        entity.JobBusinessDiscovery,
		Status:      entity.JobPending,
		Payload:     map[string]string{"service_type": "plumbing"},
		MaxAttempts: 3,
	}
	require.NoError(t, s.EnqueueJob(context.Background(), job))

	require.Len(t, pool.execs, 1)
	assert.Contains(t, pool.execs[0].sql, "INSERT INTO background_jobs")
	payload, ok := pool.execs[0].args[4].([]byte)
	require.True(t, ok)
	assert.JSONEq(t, `{"service_type":"plumbing"}`, string(payload))
}

func TestNextPendingJobIdleQueue(t *testing.T) {
	pool := &fakePool{
		queryRow: func(sql string, args []any) pgx.Row {
			return fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	s := newStore(t, pool)

	_, err := s.NextPendingJob(context.Background(), time.Now())
	assert.ErrorIs(t, err, output.ErrNotFound)
}

func TestNextPendingJobDecodesPayload(t *testing.T) {
	now := time.Now()
	pool := &fakePool{
		queryRow: func(sql string, args []any) pgx.Row {
			return fakeRow{scan: func(dest ...any) error {
				*dest[0].(*string) = "job-1"
				*dest[1].(*string) = "sms_confirmation"
				*dest[2].(*string) = "req-1"
				*dest[3].(*string) = "pending"
				*dest[4].(*[]byte) = []byte(`{"phone":"+16045551234"}`)
				*dest[5].(*int) = 0
				*dest[6].(*int) = 3
				*dest[7].(*string) = ""
				*dest[8].(*time.Time) = now
				*dest[11].(*time.Time) = now
				return nil
			}}
		},
	}
	s := newStore(t, pool)

	job, err := s.NextPendingJob(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, entity.JobSMSConfirmation, job.Type)
	assert.Equal(t, "req-1", job.ServiceRequestID)
	assert.Equal(t, "+16045551234", job.Payload["phone"])
	assert.Equal(t, 3, job.MaxAttempts)
}

func TestMarkJobFailedRetryRequeues(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("UPDATE 1")}
	s := newStore(t, pool)

	require.NoError(t, s.MarkJobFailed(context.Background(), "job-1", "search failed", true))
	assert.Equal(t, "pending", pool.execs[0].args[1])

	require.NoError(t, s.MarkJobFailed(context.Background(), "job-1", "search failed", false))
	assert.Equal(t, "failed", pool.execs[1].args[1])
}

func TestUpdateBusinessOutreachNotFound(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("UPDATE 0")}
	s := newStore(t, pool)

	err := s.UpdateBusinessOutreach(context.Background(), "missing", entity.OutreachSent, "", nil)
	assert.ErrorIs(t, err, output.ErrNotFound)
}

func TestServiceRequestNotFound(t *testing.T) {
	pool := &fakePool{
		queryRow: func(sql string, args []any) pgx.Row {
			return fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
		},
	}
	s := newStore(t, pool)

	_, err := s.ServiceRequest(context.Background(), "missing")
	assert.ErrorIs(t, err, output.ErrNotFound)
}

func TestInsertBusinessesCountMismatch(t *testing.T) {
	pool := &fakePool{copied: 1}
	s := newStore(t, pool)

	businesses := []entity.DiscoveredBusiness{{ID: "b1"}, {ID: "b2"}}
	err := s.InsertBusinesses(context.Background(), businesses)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "copied 1 of 2")

	require.NoError(t, s.InsertBusinesses(context.Background(), nil))
}

func TestMarkJobProcessingClaimsPendingOnly(t *testing.T) {
	pool := &fakePool{execTag: pgconn.NewCommandTag("UPDATE 0")}
	s := newStore(t, pool)

	err := s.MarkJobProcessing(context.Background(), "job-1", 1, time.Now())
	assert.True(t, errors.Is(err, output.ErrNotFound))
}
