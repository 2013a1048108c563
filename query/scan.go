package query

import (
	"encoding/json"
	"strings"

	"eventlog.dev/service/eventlog"
	"github.com/jackc/pgx/v5"
)

// eventSelectColumns lists every column scanRow expects, in order.
var eventSelectColumns = []string{
	"event_log_id", "execution_id", "correlation_id", "account_id",
	"trace_id", "span_id", "parent_span_id", "span_links", "batch_id",
	"application_id", "target_system", "originating_system",
	"process_name", "step_sequence", "step_name", "event_type",
	"event_status", "identifiers", "summary", "result", "metadata",
	"event_timestamp", "execution_time_ms", "endpoint", "http_method",
	"http_status_code", "error_code", "error_message", "request_payload",
	"response_payload", "idempotency_key", "is_deleted", "created_at",
}

// eventSelectList renders eventSelectColumns as a SELECT clause.
func eventSelectList() string { return strings.Join(eventSelectColumns, ", ") }

// scanEvent scans one row shaped like eventSelectColumns.
func scanEvent(row pgx.Row) (eventlog.Event, error) {
	var (
		e                   eventlog.Event
		eventType           string
		eventStatus         string
		identifiersRaw      []byte
		metadataRaw         []byte
	)
	err := row.Scan(
		&e.EventLogID, &e.ExecutionID, &e.CorrelationID, &e.AccountID,
		&e.TraceID, &e.SpanID, &e.ParentSpanID, &e.SpanLinks, &e.BatchID,
		&e.ApplicationID, &e.TargetSystem, &e.OriginatingSystem,
		&e.ProcessName, &e.StepSequence, &e.StepName, &eventType,
		&eventStatus, &identifiersRaw, &e.Summary, &e.Result, &metadataRaw,
		&e.EventTimestamp, &e.ExecutionTimeMs, &e.Endpoint, &e.HTTPMethod,
		&e.HTTPStatusCode, &e.ErrorCode, &e.ErrorMessage, &e.RequestPayload,
		&e.ResponsePayload, &e.IdempotencyKey, &e.IsDeleted, &e.CreatedAt,
	)
	if err != nil {
		return eventlog.Event{}, err
	}
	e.EventType = eventlog.EventType(eventType)
	e.EventStatus = eventlog.EventStatus(eventStatus)
	if len(identifiersRaw) > 0 {
		if err := json.Unmarshal(identifiersRaw, &e.Identifiers); err != nil {
			return eventlog.Event{}, err
		}
	}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &e.Metadata); err != nil {
			return eventlog.Event{}, err
		}
	}
	return e, nil
}

// scanEventWithCount scans one row shaped like eventSelectColumns plus a
// trailing COUNT(*) OVER() AS total_count column.
func scanEventWithCount(row pgx.Rows) (eventlog.Event, int64, error) {
	var (
		e              eventlog.Event
		eventType      string
		eventStatus    string
		identifiersRaw []byte
		metadataRaw    []byte
		total          int64
	)
	err := row.Scan(
		&e.EventLogID, &e.ExecutionID, &e.CorrelationID, &e.AccountID,
		&e.TraceID, &e.SpanID, &e.ParentSpanID, &e.SpanLinks, &e.BatchID,
		&e.ApplicationID, &e.TargetSystem, &e.OriginatingSystem,
		&e.ProcessName, &e.StepSequence, &e.StepName, &eventType,
		&eventStatus, &identifiersRaw, &e.Summary, &e.Result, &metadataRaw,
		&e.EventTimestamp, &e.ExecutionTimeMs, &e.Endpoint, &e.HTTPMethod,
		&e.HTTPStatusCode, &e.ErrorCode, &e.ErrorMessage, &e.RequestPayload,
		&e.ResponsePayload, &e.IdempotencyKey, &e.IsDeleted, &e.CreatedAt,
		&total,
	)
	if err != nil {
		return eventlog.Event{}, 0, err
	}
	e.EventType = eventlog.EventType(eventType)
	e.EventStatus = eventlog.EventStatus(eventStatus)
	if len(identifiersRaw) > 0 {
		if err := json.Unmarshal(identifiersRaw, &e.Identifiers); err != nil {
			return eventlog.Event{}, 0, err
		}
	}
	if len(metadataRaw) > 0 {
		if err := json.Unmarshal(metadataRaw, &e.Metadata); err != nil {
			return eventlog.Event{}, 0, err
		}
	}
	return e, total, nil
}

// scanEvents drains rows into a slice using scanEvent's column layout.
func scanEvents(rows pgx.Rows) ([]eventlog.Event, error) {
	defer rows.Close()
	var out []eventlog.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
