package processlog

import (
	"context"

	"eventlog.dev/service/eventlog"
)

// ProcessLogger is request-scoped, mutable state for one process
// invocation: it stacks identifiers and metadata forward across every
// event it emits, and chains span IDs so build_span_tree can recover
// parent/child structure later. Never share a ProcessLogger across
// concurrent goroutines or requests — construct one per invocation via
// Template.ForProcess.
type ProcessLogger struct {
	ctx      context.Context
	template *Template

	processName   string
	correlationID string
	traceID       string
	accountID     *string
	batchID       *string

	applicationID     string
	targetSystem      string
	originatingSystem string

	// lastSpanID is the span ID of the most recently emitted event; it
	// becomes the parent_span_id of the next one, chaining the
	// sequence so trace reconstruction can walk it back to the root.
	lastSpanID string

	identifiers map[string]string
	metadata    map[string]interface{}

	nextStep int
}

// AddIdentifier merges a business key into the identifiers every
// subsequent event carries. Persistent: unlike Options, it survives
// across emit calls.
func (pl *ProcessLogger) AddIdentifier(key, value string) *ProcessLogger {
	pl.identifiers[key] = value
	return pl
}

// AddMetadata merges a free-form value into the metadata every
// subsequent event carries.
func (pl *ProcessLogger) AddMetadata(key string, value interface{}) *ProcessLogger {
	pl.metadata[key] = value
	return pl
}

// SetApplicationID overrides the Template's application_id for the
// remainder of this process.
func (pl *ProcessLogger) SetApplicationID(v string) *ProcessLogger { pl.applicationID = v; return pl }

// SetTargetSystem overrides the Template's target_system for the
// remainder of this process.
func (pl *ProcessLogger) SetTargetSystem(v string) *ProcessLogger { pl.targetSystem = v; return pl }

// SetOriginatingSystem overrides the Template's originating_system
// for the remainder of this process.
func (pl *ProcessLogger) SetOriginatingSystem(v string) *ProcessLogger {
	pl.originatingSystem = v
	return pl
}

// CorrelationID returns the correlation_id this logger resolved or
// generated at construction.
func (pl *ProcessLogger) CorrelationID() string { return pl.correlationID }

// TraceID returns the trace_id this logger resolved or generated at
// construction.
func (pl *ProcessLogger) TraceID() string { return pl.traceID }

// NextStep returns the step_sequence LogStep should use next: 1 after
// LogStart, or one past the highest sequence logged so far.
func (pl *ProcessLogger) NextStep() int { return pl.nextStep }

// Options carries one-shot fields for a single emit call: they never
// persist to the ProcessLogger's accumulated state.
type Options struct {
	SpanID          string
	ParentSpanID    string
	Endpoint        string
	HTTPMethod      string
	HTTPStatusCode  int
	RequestPayload  string
	ResponsePayload string
	Result          string
	IdempotencyKey  string
}

func (pl *ProcessLogger) baseBuilder(eventType eventlog.EventType, status eventlog.EventStatus, summary string, opts Options) *eventlog.Builder {
	spanID := opts.SpanID
	if spanID == "" {
		spanID = eventlog.NewSpanID()
	}
	parentSpanID := opts.ParentSpanID
	if parentSpanID == "" {
		parentSpanID = pl.lastSpanID
	}

	b := eventlog.NewBuilder(pl.processName).
		CorrelationID(pl.correlationID).
		TraceID(pl.traceID).
		SpanID(spanID).
		ApplicationID(pl.applicationID).
		TargetSystem(pl.targetSystem).
		OriginatingSystem(pl.originatingSystem).
		EventType(eventType).
		EventStatus(status).
		Summary(summary).
		Result(opts.Result)

	if parentSpanID != "" {
		b = b.ParentSpanID(parentSpanID)
	}
	if pl.accountID != nil {
		b = b.AccountID(*pl.accountID)
	}
	if pl.batchID != nil {
		b = b.BatchID(*pl.batchID)
	}
	if opts.Endpoint != "" {
		b = b.Endpoint(opts.Endpoint)
	}
	if opts.HTTPMethod != "" {
		b = b.HTTPMethod(opts.HTTPMethod)
	}
	if opts.HTTPStatusCode != 0 {
		b = b.HTTPStatusCode(opts.HTTPStatusCode)
	}
	if opts.RequestPayload != "" {
		b = b.RequestPayload(opts.RequestPayload)
	}
	if opts.ResponsePayload != "" {
		b = b.ResponsePayload(opts.ResponsePayload)
	}
	if opts.IdempotencyKey != "" {
		b = b.IdempotencyKey(opts.IdempotencyKey)
	}
	for k, v := range pl.identifiers {
		b = b.AddIdentifier(k, v)
	}
	for k, v := range pl.metadata {
		b = b.AddMetadata(k, v)
	}

	pl.lastSpanID = spanID
	return b
}

// emit validates the built event and hands it to the Template's sink,
// logging the outcome either way. It returns whatever the sink
// returned (false if the event was accepted for offer but the caller
// should know enqueue was rejected — see ingest.Engine.Log), or false
// if validation failed, in which case the event is never enqueued.
func (pl *ProcessLogger) emit(ev eventlog.Event) bool {
	log := pl.template.Logger.WithContext(pl.ctx).WithFields(map[string]interface{}{
		"correlation_id": ev.CorrelationID,
		"trace_id":       ev.TraceID,
		"span_id":        ev.SpanID,
		"event_type":     string(ev.EventType),
		"event_status":   string(ev.EventStatus),
	})

	if err := eventlog.Validate(&ev); err != nil {
		log.WithError(err).Warn("process event failed validation, dropping")
		return false
	}

	if pl.template.Sink == nil {
		log.Warn("process logger has no sink configured, dropping event")
		return false
	}

	accepted := pl.template.Sink(ev)
	if !accepted {
		log.Warn("process event rejected by sink")
		return false
	}
	log.Debug("process event emitted")
	return true
}

// LogStart emits PROCESS_START: step_sequence 0, event_status
// IN_PROGRESS.
func (pl *ProcessLogger) LogStart(summary string, opts ...Options) bool {
	o := firstOptions(opts)
	if o.Result == "" {
		o.Result = "STARTED"
	}
	ev := pl.baseBuilder(eventlog.EventTypeProcessStart, eventlog.EventStatusInProgress, summary, o).
		StepSequence(0).
		Build()
	pl.nextStep = 1
	return pl.emit(ev)
}

// LogStep emits STEP at the given sequence and name with the given
// status.
func (pl *ProcessLogger) LogStep(seq int, stepName string, status eventlog.EventStatus, summary string, opts ...Options) bool {
	o := firstOptions(opts)
	if o.Result == "" {
		o.Result = string(status)
	}
	ev := pl.baseBuilder(eventlog.EventTypeStep, status, summary, o).
		StepSequence(seq).
		StepName(stepName).
		Build()
	if seq >= pl.nextStep {
		pl.nextStep = seq + 1
	}
	return pl.emit(ev)
}

// LogEnd emits PROCESS_END at the given sequence and status, carrying
// the process's total execution time.
func (pl *ProcessLogger) LogEnd(seq int, status eventlog.EventStatus, summary string, executionTimeMs int64, opts ...Options) bool {
	o := firstOptions(opts)
	if o.Result == "" {
		o.Result = string(status)
	}
	ev := pl.baseBuilder(eventlog.EventTypeProcessEnd, status, summary, o).
		StepSequence(seq).
		ExecutionTimeMs(executionTimeMs).
		Build()
	return pl.emit(ev)
}

// LogError emits ERROR with event_status FAILURE.
func (pl *ProcessLogger) LogError(summary, errCode, errMsg string, opts ...Options) bool {
	o := firstOptions(opts)
	if o.Result == "" {
		o.Result = "FAILURE"
	}
	ev := pl.baseBuilder(eventlog.EventTypeError, eventlog.EventStatusFailure, summary, o).
		ErrorCode(errCode).
		ErrorMessage(errMsg).
		Build()
	return pl.emit(ev)
}

func firstOptions(opts []Options) Options {
	if len(opts) == 0 {
		return Options{}
	}
	return opts[0]
}
