// Package eventlog defines the canonical event record, identifier
// generators, and the validating builder used by producers before an
// event ever reaches the ingestion queue.
package eventlog

import "time"

// EventType enumerates the kind of event being recorded.
type EventType string

const (
	EventTypeProcessStart EventType = "PROCESS_START"
	EventTypeStep         EventType = "STEP"
	EventTypeProcessEnd   EventType = "PROCESS_END"
	EventTypeError        EventType = "ERROR"
)

// EventStatus enumerates the outcome carried by an event.
type EventStatus string

const (
	EventStatusSuccess    EventStatus = "SUCCESS"
	EventStatusFailure    EventStatus = "FAILURE"
	EventStatusInProgress EventStatus = "IN_PROGRESS"
	EventStatusSkipped    EventStatus = "SKIPPED"
	EventStatusWarning    EventStatus = "WARNING"
)

// Event is the fundamental ingestion record. Field order mirrors the
// wire contract (snake_case JSON); nullable fields use pointers or
// zero-value-means-absent semantics as documented per field.
type Event struct {
	EventLogID   int64  `json:"event_log_id,omitempty" db:"event_log_id"`
	ExecutionID  string `json:"execution_id,omitempty" db:"execution_id"`
	CorrelationID string `json:"correlation_id" db:"correlation_id"`
	AccountID    *string `json:"account_id,omitempty" db:"account_id"`

	TraceID      string   `json:"trace_id" db:"trace_id"`
	SpanID       string   `json:"span_id" db:"span_id"`
	ParentSpanID *string  `json:"parent_span_id,omitempty" db:"parent_span_id"`
	SpanLinks    []string `json:"span_links,omitempty" db:"span_links"`

	BatchID *string `json:"batch_id,omitempty" db:"batch_id"`

	ApplicationID     string `json:"application_id" db:"application_id"`
	TargetSystem      string `json:"target_system" db:"target_system"`
	OriginatingSystem string `json:"originating_system" db:"originating_system"`

	ProcessName  string  `json:"process_name" db:"process_name"`
	StepSequence *int    `json:"step_sequence,omitempty" db:"step_sequence"`
	StepName     *string `json:"step_name,omitempty" db:"step_name"`

	EventType   EventType   `json:"event_type" db:"event_type"`
	EventStatus EventStatus `json:"event_status" db:"event_status"`

	Identifiers map[string]string         `json:"identifiers" db:"identifiers"`
	Summary     string                    `json:"summary" db:"summary"`
	Result      string                    `json:"result" db:"result"`
	Metadata    map[string]interface{}    `json:"metadata,omitempty" db:"metadata"`

	EventTimestamp   time.Time `json:"event_timestamp" db:"event_timestamp"`
	ExecutionTimeMs  *int64    `json:"execution_time_ms,omitempty" db:"execution_time_ms"`

	Endpoint       *string `json:"endpoint,omitempty" db:"endpoint"`
	HTTPMethod     *string `json:"http_method,omitempty" db:"http_method"`
	HTTPStatusCode *int    `json:"http_status_code,omitempty" db:"http_status_code"`

	ErrorCode    *string `json:"error_code,omitempty" db:"error_code"`
	ErrorMessage *string `json:"error_message,omitempty" db:"error_message"`

	RequestPayload  *string `json:"request_payload,omitempty" db:"request_payload"`
	ResponsePayload *string `json:"response_payload,omitempty" db:"response_payload"`

	IdempotencyKey *string `json:"idempotency_key,omitempty" db:"idempotency_key"`

	IsDeleted bool      `json:"is_deleted" db:"is_deleted"`
	CreatedAt time.Time `json:"created_at,omitempty" db:"created_at"`
}

// Clone returns a deep-enough copy of the event so that builder reuse
// never lets a caller mutate a previously built event through shared
// map/slice backing arrays.
func (e Event) Clone() Event {
	clone := e
	if e.Identifiers != nil {
		clone.Identifiers = make(map[string]string, len(e.Identifiers))
		for k, v := range e.Identifiers {
			clone.Identifiers[k] = v
		}
	}
	if e.Metadata != nil {
		clone.Metadata = make(map[string]interface{}, len(e.Metadata))
		for k, v := range e.Metadata {
			clone.Metadata[k] = v
		}
	}
	if e.SpanLinks != nil {
		clone.SpanLinks = append([]string(nil), e.SpanLinks...)
	}
	return clone
}

// CorrelationLink maps a correlation_id to the account_id it belongs
// to, allowing events emitted before the account existed to later
// surface in account-scoped queries.
type CorrelationLink struct {
	CorrelationID   string     `json:"correlation_id" db:"correlation_id" gorm:"primaryKey"`
	AccountID       string     `json:"account_id" db:"account_id"`
	ApplicationID   *string    `json:"application_id,omitempty" db:"application_id"`
	CustomerID      *string    `json:"customer_id,omitempty" db:"customer_id"`
	CardLast4       *string    `json:"card_last4,omitempty" db:"card_last4"`
	LinkedAt        time.Time  `json:"linked_at,omitempty" db:"linked_at"`
}

// ProcessDefinition is a reference-data catalog entry describing a
// business process known to the system.
type ProcessDefinition struct {
	ProcessName   string `json:"process_name" db:"process_name" gorm:"primaryKey"`
	DisplayName   string `json:"display_name" db:"display_name"`
	OwningTeam    string `json:"owning_team" db:"owning_team"`
	ExpectedSteps int    `json:"expected_steps" db:"expected_steps"`
	SLAMs         int64  `json:"sla_ms" db:"sla_ms"`
	Active        bool   `json:"active" db:"active"`
}

// AccountTimelineSummary is a denormalized per-account roll-up. The
// core does not specify how it is maintained; it is read-through only.
type AccountTimelineSummary struct {
	AccountID       string    `json:"account_id"`
	TotalEvents     int64     `json:"total_events"`
	FirstEventAt    time.Time `json:"first_event_at"`
	LastEventAt     time.Time `json:"last_event_at"`
	SystemsTouched  []string  `json:"systems_touched"`
	CorrelationIDs  []string  `json:"correlation_ids"`
}
