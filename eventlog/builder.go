package eventlog

import "time"

// Builder fluently constructs an Event. It is accumulative:
// AddIdentifier/AddMetadata merge into the stored maps across calls,
// but Build never lets the caller mutate a previously built event —
// every Build returns an independent clone.
type Builder struct {
	event Event
}

// NewBuilder starts a builder with the given process name.
func NewBuilder(processName string) *Builder {
	return &Builder{event: Event{
		ProcessName: processName,
		Identifiers: map[string]string{},
		Metadata:    map[string]interface{}{},
	}}
}

func (b *Builder) CorrelationID(v string) *Builder     { b.event.CorrelationID = v; return b }
func (b *Builder) AccountID(v string) *Builder         { b.event.AccountID = &v; return b }
func (b *Builder) TraceID(v string) *Builder           { b.event.TraceID = v; return b }
func (b *Builder) SpanID(v string) *Builder            { b.event.SpanID = v; return b }
func (b *Builder) ParentSpanID(v string) *Builder      { b.event.ParentSpanID = &v; return b }
func (b *Builder) BatchID(v string) *Builder           { b.event.BatchID = &v; return b }
func (b *Builder) ApplicationID(v string) *Builder     { b.event.ApplicationID = v; return b }
func (b *Builder) TargetSystem(v string) *Builder      { b.event.TargetSystem = v; return b }
func (b *Builder) OriginatingSystem(v string) *Builder { b.event.OriginatingSystem = v; return b }
func (b *Builder) StepSequence(v int) *Builder         { b.event.StepSequence = &v; return b }
func (b *Builder) StepName(v string) *Builder          { b.event.StepName = &v; return b }
func (b *Builder) EventType(v EventType) *Builder      { b.event.EventType = v; return b }
func (b *Builder) EventStatus(v EventStatus) *Builder  { b.event.EventStatus = v; return b }
func (b *Builder) Summary(v string) *Builder           { b.event.Summary = v; return b }
func (b *Builder) Result(v string) *Builder            { b.event.Result = v; return b }
func (b *Builder) EventTimestamp(v time.Time) *Builder { b.event.EventTimestamp = v; return b }
func (b *Builder) IdempotencyKey(v string) *Builder    { b.event.IdempotencyKey = &v; return b }
func (b *Builder) ExecutionTimeMs(v int64) *Builder    { b.event.ExecutionTimeMs = &v; return b }
func (b *Builder) Endpoint(v string) *Builder          { b.event.Endpoint = &v; return b }
func (b *Builder) HTTPMethod(v string) *Builder        { b.event.HTTPMethod = &v; return b }
func (b *Builder) HTTPStatusCode(v int) *Builder       { b.event.HTTPStatusCode = &v; return b }
func (b *Builder) ErrorCode(v string) *Builder         { b.event.ErrorCode = &v; return b }
func (b *Builder) ErrorMessage(v string) *Builder      { b.event.ErrorMessage = &v; return b }
func (b *Builder) RequestPayload(v string) *Builder    { b.event.RequestPayload = &v; return b }
func (b *Builder) ResponsePayload(v string) *Builder   { b.event.ResponsePayload = &v; return b }

// AddIdentifier merges a business key into the accumulated identifier
// map. Once added via a Template-backed ProcessLogger, identifiers
// persist across subsequent events for that logger.
func (b *Builder) AddIdentifier(k, v string) *Builder {
	if b.event.Identifiers == nil {
		b.event.Identifiers = map[string]string{}
	}
	b.event.Identifiers[k] = v
	return b
}

// AddMetadata merges a free-form value into the accumulated metadata map.
func (b *Builder) AddMetadata(k string, v interface{}) *Builder {
	if b.event.Metadata == nil {
		b.event.Metadata = map[string]interface{}{}
	}
	b.event.Metadata[k] = v
	return b
}

// Build finalizes the event: if event_timestamp is unset the current
// instant is assigned; if span_id is empty a fresh one is generated.
// The returned Event is an independent clone; further Builder calls
// never mutate it.
func (b *Builder) Build() Event {
	if b.event.EventTimestamp.IsZero() {
		b.event.EventTimestamp = time.Now().UTC()
	}
	if b.event.SpanID == "" {
		b.event.SpanID = NewSpanID()
	}
	return b.event.Clone()
}
