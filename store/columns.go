package store

import (
	"encoding/json"
	"time"

	"eventlog.dev/service/eventlog"
)

// eventColumns lists the event table's insertable columns in the exact
// order eventInsertArgs produces values, so every INSERT built in this
// package (single or multi-row) stays aligned with its argument slice.
var eventColumns = []string{
	"correlation_id", "account_id", "trace_id", "span_id", "parent_span_id",
	"span_links", "batch_id", "application_id", "target_system",
	"originating_system", "process_name", "step_sequence", "step_name",
	"event_type", "event_status", "identifiers", "summary", "result",
	"metadata", "event_timestamp", "execution_time_ms", "endpoint",
	"http_method", "http_status_code", "error_code", "error_message",
	"request_payload", "response_payload", "idempotency_key", "is_deleted",
	"execution_id", "created_at",
}

// eventRef pairs an input event with its position in the caller's
// slice, so bulk results can be reported back in the caller's order
// even after partitioning and chunking reorder the work internally.
type eventRef struct {
	idx   int
	event eventlog.Event
}

// eventInsertArgs marshals e into eventColumns order. identifiers and
// metadata are JSON-encoded for the jsonb columns since pgx has no
// reflection-free map binding the way an ORM would.
func eventInsertArgs(e eventlog.Event, executionID string) ([]interface{}, error) {
	identifiers, err := json.Marshal(e.Identifiers)
	if err != nil {
		return nil, err
	}
	var metadata []byte
	if e.Metadata != nil {
		metadata, err = json.Marshal(e.Metadata)
		if err != nil {
			return nil, err
		}
	}

	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	return []interface{}{
		e.CorrelationID, e.AccountID, e.TraceID, e.SpanID, e.ParentSpanID,
		e.SpanLinks, e.BatchID, e.ApplicationID, e.TargetSystem,
		e.OriginatingSystem, e.ProcessName, e.StepSequence, e.StepName,
		string(e.EventType), string(e.EventStatus), identifiers, e.Summary, e.Result,
		metadata, e.EventTimestamp, e.ExecutionTimeMs, e.Endpoint,
		e.HTTPMethod, e.HTTPStatusCode, e.ErrorCode, e.ErrorMessage,
		e.RequestPayload, e.ResponsePayload, e.IdempotencyKey, e.IsDeleted,
		executionID, createdAt,
	}, nil
}
