package eventlog

import "fmt"

// FieldError describes one failed required-field check.
type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every failed field so the HTTP layer can
// return all violations in a single 400 response rather than one at a
// time.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msg := "validation failed: "
	for i, f := range e.Fields {
		if i > 0 {
			msg += ", "
		}
		msg += f.Error()
	}
	return msg
}

// Validate rejects ill-formed events before they enter the queue. It
// checks only presence; neither Validate nor Builder checks value
// shape (hex length, enum membership).
func Validate(e *Event) error {
	var fields []FieldError

	require := func(name, value string) {
		if value == "" {
			fields = append(fields, FieldError{Field: name, Message: "is required"})
		}
	}

	require("correlation_id", e.CorrelationID)
	require("trace_id", e.TraceID)
	require("application_id", e.ApplicationID)
	require("target_system", e.TargetSystem)
	require("originating_system", e.OriginatingSystem)
	require("process_name", e.ProcessName)
	require("event_type", string(e.EventType))
	require("event_status", string(e.EventStatus))
	require("summary", e.Summary)
	require("result", e.Result)

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}
