//go:build integration

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"eventlog.dev/service/eventlog"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const eventsSchema = `
CREATE TABLE events (
	event_log_id BIGSERIAL PRIMARY KEY,
	execution_id TEXT UNIQUE NOT NULL,
	correlation_id TEXT NOT NULL,
	account_id TEXT,
	trace_id TEXT NOT NULL,
	span_id TEXT NOT NULL,
	parent_span_id TEXT,
	span_links TEXT[],
	batch_id TEXT,
	application_id TEXT NOT NULL,
	target_system TEXT NOT NULL,
	originating_system TEXT NOT NULL,
	process_name TEXT NOT NULL,
	step_sequence INT,
	step_name TEXT,
	event_type TEXT NOT NULL,
	event_status TEXT NOT NULL,
	identifiers JSONB NOT NULL,
	summary TEXT NOT NULL,
	result TEXT NOT NULL,
	metadata JSONB,
	event_timestamp TIMESTAMPTZ NOT NULL,
	execution_time_ms BIGINT,
	endpoint TEXT,
	http_method TEXT,
	http_status_code INT,
	error_code TEXT,
	error_message TEXT,
	request_payload TEXT,
	response_payload TEXT,
	idempotency_key TEXT,
	is_deleted BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX events_idempotency_key_uq ON events (idempotency_key) WHERE idempotency_key IS NOT NULL;
`

func setupPostgresContainer(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "eventlog",
			"POSTGRES_PASSWORD": "eventlog",
			"POSTGRES_DB":       "eventlog",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://eventlog:eventlog@%s:%s/eventlog?sslmode=disable", host, port.Port())

	cleanup := func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}
	return dsn, cleanup
}

func newTestStore(t *testing.T) *Store {
	dsn, cleanup := setupPostgresContainer(t)
	t.Cleanup(cleanup)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, eventsSchema)
	require.NoError(t, err)

	return &Store{pool: pool}
}

func integrationEvent(corr, idempotencyKey string) eventlog.Event {
	e := eventlog.Event{
		CorrelationID:     corr,
		TraceID:           "trace-" + corr,
		SpanID:            "span-" + corr,
		ApplicationID:     "checkout",
		TargetSystem:      "ledger",
		OriginatingSystem: "api",
		ProcessName:       "refund",
		EventType:         eventlog.EventTypeStep,
		EventStatus:       eventlog.EventStatusSuccess,
		Identifiers:       map[string]string{"order_id": "o-1"},
		Summary:           "test",
		Result:            "ok",
		EventTimestamp:    time.Now().UTC(),
	}
	if idempotencyKey != "" {
		e.IdempotencyKey = &idempotencyKey
	}
	return e
}

func TestInsertOne_NewEvent(t *testing.T) {
	s := newTestStore(t)
	execID, conflict, err := s.InsertOne(context.Background(), integrationEvent("c1", "idem-1"))
	require.NoError(t, err)
	assert.False(t, conflict)
	assert.NotEmpty(t, execID)
}

func TestInsertOne_IdempotencyConflictReturnsExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, conflict, err := s.InsertOne(ctx, integrationEvent("c1", "idem-dup"))
	require.NoError(t, err)
	require.False(t, conflict)

	second, conflict, err := s.InsertOne(ctx, integrationEvent("c1", "idem-dup"))
	require.NoError(t, err)
	assert.True(t, conflict)
	assert.Equal(t, first, second)
}

func TestInsertBulk_PartitionsSkipAndInsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, _, err := s.InsertOne(ctx, integrationEvent("c1", "idem-shared"))
	require.NoError(t, err)

	events := []eventlog.Event{
		integrationEvent("c1", "idem-shared"),
		integrationEvent("c2", "idem-new-1"),
		integrationEvent("c3", "idem-new-2"),
	}

	result, err := s.InsertBulk(ctx, events)
	require.NoError(t, err)
	assert.Equal(t, 3, result.TotalReceived)
	assert.Equal(t, 2, result.TotalInserted)
	assert.Empty(t, result.Errors)
	for _, id := range result.ExecutionIDs {
		assert.NotEmpty(t, id)
	}
}

func TestInsertBatchUpload_StampsBatchID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	result, err := s.InsertBatchUpload(ctx, "batch-xyz", []eventlog.Event{
		integrationEvent("c1", ""),
		integrationEvent("c2", ""),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalInserted)

	var batchID string
	err = s.pool.QueryRow(ctx, `SELECT batch_id FROM events WHERE execution_id = $1`, result.ExecutionIDs[0]).Scan(&batchID)
	require.NoError(t, err)
	assert.Equal(t, "batch-xyz", batchID)
}

func TestSoftDelete_MarksRowDeleted(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	execID, _, err := s.InsertOne(ctx, integrationEvent("c1", ""))
	require.NoError(t, err)

	require.NoError(t, s.SoftDelete(ctx, execID))

	var isDeleted bool
	err = s.pool.QueryRow(ctx, `SELECT is_deleted FROM events WHERE execution_id = $1`, execID).Scan(&isDeleted)
	require.NoError(t, err)
	assert.True(t, isDeleted)
}
