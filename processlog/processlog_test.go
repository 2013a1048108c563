package processlog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eventlog.dev/service/ambient"
	"eventlog.dev/service/eventlog"
)

func newSink() (Sink, *[]eventlog.Event) {
	var captured []eventlog.Event
	return func(ev eventlog.Event) bool {
		captured = append(captured, ev)
		return true
	}, &captured
}

func TestForProcessGeneratesIDsWhenAmbientContextEmpty(t *testing.T) {
	sink, _ := newSink()
	tpl := NewTemplate("app-1", "billing", "checkout", nil, sink)

	proc := tpl.ForProcess(context.Background(), "order.create")

	assert.NotEmpty(t, proc.CorrelationID())
	assert.NotEmpty(t, proc.TraceID())
}

func TestForProcessReadsAmbientIdentifiers(t *testing.T) {
	sink, _ := newSink()
	tpl := NewTemplate("app-1", "billing", "checkout", nil, sink)

	ctx := ambient.WithValues(context.Background(), ambient.Values{
		CorrelationID: "corr-ambient",
		TraceID:       "trace-ambient",
		ParentSpanID:  "parent-ambient",
		BatchID:       "batch-ambient",
	})
	proc := tpl.ForProcess(ctx, "order.create")

	assert.Equal(t, "corr-ambient", proc.CorrelationID())
	assert.Equal(t, "trace-ambient", proc.TraceID())
	require.NotNil(t, proc.batchID)
	assert.Equal(t, "batch-ambient", *proc.batchID)
}

func TestLogStartEmitsProcessStartAtStepZero(t *testing.T) {
	sink, captured := newSink()
	tpl := NewTemplate("app-1", "billing", "checkout", nil, sink)
	proc := tpl.ForProcess(context.Background(), "order.create")

	ok := proc.LogStart("order created")
	require.True(t, ok)
	require.Len(t, *captured, 1)

	ev := (*captured)[0]
	assert.Equal(t, eventlog.EventTypeProcessStart, ev.EventType)
	assert.Equal(t, eventlog.EventStatusInProgress, ev.EventStatus)
	require.NotNil(t, ev.StepSequence)
	assert.Equal(t, 0, *ev.StepSequence)
	assert.Equal(t, proc.CorrelationID(), ev.CorrelationID)
	assert.Equal(t, proc.TraceID(), ev.TraceID)
}

func TestStepChainsParentSpanToPreviousEvent(t *testing.T) {
	sink, captured := newSink()
	tpl := NewTemplate("app-1", "billing", "checkout", nil, sink)
	proc := tpl.ForProcess(context.Background(), "order.create")

	proc.LogStart("started")
	proc.LogStep(proc.NextStep(), "validate", eventlog.EventStatusSuccess, "validated")

	require.Len(t, *captured, 2)
	start := (*captured)[0]
	step := (*captured)[1]

	require.NotNil(t, step.ParentSpanID)
	assert.Equal(t, start.SpanID, *step.ParentSpanID)
	assert.NotEqual(t, start.SpanID, step.SpanID)
}

func TestLogErrorSetsFailureStatusAndErrorFields(t *testing.T) {
	sink, captured := newSink()
	tpl := NewTemplate("app-1", "billing", "checkout", nil, sink)
	proc := tpl.ForProcess(context.Background(), "order.create")

	proc.LogError("payment declined", "CARD_DECLINED", "insufficient funds")

	require.Len(t, *captured, 1)
	ev := (*captured)[0]
	assert.Equal(t, eventlog.EventTypeError, ev.EventType)
	assert.Equal(t, eventlog.EventStatusFailure, ev.EventStatus)
	require.NotNil(t, ev.ErrorCode)
	assert.Equal(t, "CARD_DECLINED", *ev.ErrorCode)
	require.NotNil(t, ev.ErrorMessage)
	assert.Equal(t, "insufficient funds", *ev.ErrorMessage)
}

func TestIdentifiersAndMetadataAccumulateForward(t *testing.T) {
	sink, captured := newSink()
	tpl := NewTemplate("app-1", "billing", "checkout", nil, sink)
	proc := tpl.ForProcess(context.Background(), "order.create")

	proc.AddIdentifier("order_id", "ord-1")
	proc.LogStart("started")
	proc.AddIdentifier("customer_id", "cust-1")
	proc.AddMetadata("channel", "web")
	proc.LogStep(proc.NextStep(), "validate", eventlog.EventStatusSuccess, "validated")

	require.Len(t, *captured, 2)
	start := (*captured)[0]
	step := (*captured)[1]

	assert.Equal(t, map[string]string{"order_id": "ord-1"}, start.Identifiers)
	assert.Equal(t, map[string]string{"order_id": "ord-1", "customer_id": "cust-1"}, step.Identifiers)
	assert.Equal(t, "web", step.Metadata["channel"])
}

func TestOptionsAreOneShotAndDoNotPersist(t *testing.T) {
	sink, captured := newSink()
	tpl := NewTemplate("app-1", "billing", "checkout", nil, sink)
	proc := tpl.ForProcess(context.Background(), "order.create")

	proc.LogStep(0, "charge", eventlog.EventStatusSuccess, "charged", Options{Endpoint: "/v1/charges"})
	proc.LogStep(1, "notify", eventlog.EventStatusSuccess, "notified")

	require.Len(t, *captured, 2)
	first := (*captured)[0]
	second := (*captured)[1]

	require.NotNil(t, first.Endpoint)
	assert.Equal(t, "/v1/charges", *first.Endpoint)
	assert.Nil(t, second.Endpoint)
}

func TestInvalidEventIsNotEnqueued(t *testing.T) {
	sink, captured := newSink()
	tpl := NewTemplate("", "", "", nil, sink)
	proc := tpl.ForProcess(context.Background(), "order.create")

	ok := proc.LogStart("started")

	assert.False(t, ok)
	assert.Empty(t, *captured)
}

func TestRejectedBySinkReturnsFalse(t *testing.T) {
	tpl := NewTemplate("app-1", "billing", "checkout", nil, func(eventlog.Event) bool { return false })
	proc := tpl.ForProcess(context.Background(), "order.create")

	ok := proc.LogStart("started")

	assert.False(t, ok)
}

func TestNextStepAdvancesAfterEachStage(t *testing.T) {
	sink, _ := newSink()
	tpl := NewTemplate("app-1", "billing", "checkout", nil, sink)
	proc := tpl.ForProcess(context.Background(), "order.create")

	proc.LogStart("started")
	assert.Equal(t, 1, proc.NextStep())
	proc.LogStep(proc.NextStep(), "validate", eventlog.EventStatusSuccess, "validated")
	assert.Equal(t, 2, proc.NextStep())
}

func TestWithAccountIDAndBatchIDSeedEveryEvent(t *testing.T) {
	sink, captured := newSink()
	tpl := NewTemplate("app-1", "billing", "checkout", nil, sink)
	proc := tpl.ForProcess(context.Background(), "order.create", WithAccountID("acct-1"), WithBatchID("batch-9"))

	proc.LogStart("started")

	require.Len(t, *captured, 1)
	ev := (*captured)[0]
	require.NotNil(t, ev.AccountID)
	assert.Equal(t, "acct-1", *ev.AccountID)
	require.NotNil(t, ev.BatchID)
	assert.Equal(t, "batch-9", *ev.BatchID)
}
