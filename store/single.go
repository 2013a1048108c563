package store

import (
	"context"
	"strconv"
	"strings"

	"eventlog.dev/service/eventlog"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertOne inserts a single event. If the event carries an
// idempotency_key that already exists, the existing execution_id is
// returned with conflict=true and the caller treats this as success
// per §7's store_conflict kind.
func (s *Store) InsertOne(ctx context.Context, e eventlog.Event) (executionID string, conflict bool, err error) {
	if e.IdempotencyKey != nil && *e.IdempotencyKey != "" {
		existing, found, lookupErr := s.lookupByIdempotencyKey(ctx, s.pool, *e.IdempotencyKey)
		if lookupErr != nil {
			return "", false, lookupErr
		}
		if found {
			return existing, true, nil
		}
	}

	executionID = uuid.NewString()
	args, err := eventInsertArgs(e, executionID)
	if err != nil {
		return "", false, err
	}

	query := buildInsertQuery(1, true)
	var returned string
	scanErr := s.pool.QueryRow(ctx, query, args...).Scan(&returned)
	if scanErr == pgx.ErrNoRows {
		// a concurrent insert won the idempotency-key race between our
		// lookup and our insert; fall back to the now-existing row.
		if e.IdempotencyKey != nil && *e.IdempotencyKey != "" {
			existing, found, lookupErr := s.lookupByIdempotencyKey(ctx, s.pool, *e.IdempotencyKey)
			if lookupErr != nil {
				return "", false, lookupErr
			}
			if found {
				return existing, true, nil
			}
		}
		return "", false, pgx.ErrNoRows
	}
	if scanErr != nil {
		return "", false, scanErr
	}
	return returned, false, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, letting the
// idempotency-key lookup run either outside or inside a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

func (s *Store) lookupByIdempotencyKey(ctx context.Context, q querier, key string) (executionID string, found bool, err error) {
	err = q.QueryRow(ctx,
		`SELECT execution_id FROM events WHERE idempotency_key = $1 AND is_deleted = false LIMIT 1`,
		key,
	).Scan(&executionID)
	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return executionID, true, nil
}

// buildInsertQuery builds a multi-row INSERT over eventColumns for n
// rows, with RETURNING execution_id (the returned row order is not
// guaranteed to match input order). withConflictGuard adds
// the partial-unique-index ON CONFLICT DO NOTHING clause used by the
// single-insert path; bulk inserts skip it because duplicates have
// already been filtered out by the pre-query partition step.
func buildInsertQuery(n int, withConflictGuard bool) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO events (")
	sb.WriteString(strings.Join(eventColumns, ", "))
	sb.WriteString(") VALUES ")

	argN := 1
	for row := 0; row < n; row++ {
		if row > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for col := range eventColumns {
			if col > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(placeholder(argN))
			argN++
		}
		sb.WriteString(")")
	}

	if withConflictGuard {
		sb.WriteString(" ON CONFLICT (idempotency_key) WHERE idempotency_key IS NOT NULL DO NOTHING")
	}
	sb.WriteString(" RETURNING execution_id")
	return sb.String()
}

func placeholder(n int) string {
	return "$" + strconv.Itoa(n)
}
