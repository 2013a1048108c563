// Package processlog implements the per-process stateful logger: a
// Template holds the defaults shared across a service (application
// identity, target/originating system, the sink events are handed to
// once built) and constructs one ProcessLogger per process
// invocation. The ProcessLogger stacks identifiers and metadata
// forward across every event it emits, resolves the correlation,
// trace, parent span and batch IDs from the ambient context
// established at request entry, and generates fresh correlation and
// trace IDs when the ambient context carries none.
//
// Grounded on the corpus's common.ServiceLogger/ContextLogger shape
// (shared defaults plus per-call field accumulation via chained
// With* calls in common/logger.go), generalized here from log lines
// to validated eventlog.Event records queued onto the ingestion
// engine, with ID resolution delegated to package ambient.
package processlog

import (
	"context"

	"eventlog.dev/service/ambient"
	"eventlog.dev/service/eventlog"
	"eventlog.dev/service/logging"
)

// Sink accepts a validated event for enqueueing. Its signature
// matches ingest.Engine.Log so a Template wires directly to an Engine
// without an adapter.
type Sink func(eventlog.Event) bool

// Template holds the defaults every ProcessLogger it constructs
// starts from.
type Template struct {
	ApplicationID     string
	TargetSystem      string
	OriginatingSystem string
	Logger            *logging.ContextLogger
	Sink              Sink
}

// NewTemplate builds a Template. logger may be nil, in which case a
// bare logrus.StandardLogger-backed ContextLogger is used.
func NewTemplate(applicationID, targetSystem, originatingSystem string, logger *logging.ContextLogger, sink Sink) *Template {
	if logger == nil {
		logger = logging.NewContextLogger(nil, nil)
	}
	return &Template{
		ApplicationID:     applicationID,
		TargetSystem:      targetSystem,
		OriginatingSystem: originatingSystem,
		Logger:            logger,
		Sink:              sink,
	}
}

// StartOption seeds ProcessLogger state at construction time, before
// any event is emitted — distinct from the per-call Options passed to
// emit methods, which never persist.
type StartOption func(*ProcessLogger)

// WithAccountID seeds the account_id carried on every emitted event.
func WithAccountID(accountID string) StartOption {
	return func(pl *ProcessLogger) { pl.accountID = &accountID }
}

// WithBatchID seeds the batch_id carried on every emitted event,
// overriding anything read from the ambient context.
func WithBatchID(batchID string) StartOption {
	return func(pl *ProcessLogger) { pl.batchID = &batchID }
}

// ForProcess starts a ProcessLogger for one process invocation.
// correlation_id, trace_id, the first event's parent span ID, and
// batch_id are read from ctx's ambient values when present.
// correlation_id and trace_id are generated fresh when absent; no
// batch_id or parent span ID is generated, and the ambient SpanID is
// not read. The returned ProcessLogger is mutable and scoped
// to this one process invocation — never share it across concurrent
// requests.
func (t *Template) ForProcess(ctx context.Context, processName string, opts ...StartOption) *ProcessLogger {
	av, _ := ambient.FromContext(ctx)

	pl := &ProcessLogger{
		ctx:               ctx,
		template:          t,
		processName:       processName,
		correlationID:     av.CorrelationID,
		traceID:           av.TraceID,
		applicationID:     t.ApplicationID,
		targetSystem:      t.TargetSystem,
		originatingSystem: t.OriginatingSystem,
		identifiers:       map[string]string{},
		metadata:          map[string]interface{}{},
	}
	if pl.correlationID == "" {
		pl.correlationID = eventlog.NewCorrelationID(processName)
	}
	if pl.traceID == "" {
		pl.traceID = eventlog.NewTraceID()
	}
	if av.ParentSpanID != "" {
		parent := av.ParentSpanID
		pl.lastSpanID = parent
	}
	if av.BatchID != "" {
		batchID := av.BatchID
		pl.batchID = &batchID
	}

	for _, opt := range opts {
		opt(pl)
	}
	return pl
}
