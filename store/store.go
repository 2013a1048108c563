// Package store implements the ingestion store (C7): idempotent single
// and bulk insertion of events against Postgres, plus reference-data
// repositories for correlation links and process definitions.
//
// Grounded on the corpus's dual-ORM split: db/postgres_pgx.go (a bare
// pgxpool wrapper) for the hot-path event table, and db/postgres.go's
// GORM usage for lower-volume reference/audit tables. The same line is
// drawn here: Store wraps pgxpool directly for Event rows; LinkStore
// wraps gorm.DB for CorrelationLink and ProcessDefinition.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool with the event-table operations.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore opens a connection pool against connString and verifies
// connectivity with a ping, mirroring db.NewPostgresDB's constructor
// shape.
func NewStore(ctx context.Context, connString string) (*Store, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("store: failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: failed to ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the underlying pool.
func (s *Store) Close() { s.pool.Close() }

// Pool exposes the underlying pool for transaction management by callers
// that need to span multiple store operations.
func (s *Store) Pool() *pgxpool.Pool { return s.pool }
