package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"quinn-backend/internal/application/port/output"
)

var _ output.Store = (*Store)(nil)

//go:embed schema.sql
var schemaSQL string

type Store struct {
	pool   DBPool
	logger output.LoggerPort
}

func New(ctx context.Context, pool DBPool, logger output.LoggerPort) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// EnsureSchema applies the idempotent DDL. Safe to run at every boot.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	if s.logger != nil {
		s.logger.Debug("Schema ensured")
	}
	return nil
}

func (s *Store) Close() {
	s.pool.Close()
}
