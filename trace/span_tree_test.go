package trace

import (
	"testing"

	"eventlog.dev/service/eventlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(n int) *int { return &n }

// TestBuildSpanTreeParallelTrace implements scenario S4: A is sequential,
// B and C (same parent/step, distinct span_id) form a parallel group,
// D is sequential.
func TestBuildSpanTreeParallelTrace(t *testing.T) {
	a := eventlog.Event{SpanID: "A", StepSequence: step(0), EventType: eventlog.EventTypeProcessStart, EventTimestamp: ts(1)}
	b := eventlog.Event{SpanID: "B", ParentSpanID: ptr("A"), StepSequence: step(1), TargetSystem: "X", EventTimestamp: ts(2)}
	c := eventlog.Event{SpanID: "C", ParentSpanID: ptr("A"), StepSequence: step(1), TargetSystem: "Y", EventTimestamp: ts(3)}
	d := eventlog.Event{SpanID: "D", ParentSpanID: ptr("A"), StepSequence: step(2), EventType: eventlog.EventTypeProcessEnd, EventTimestamp: ts(4)}

	entries := BuildSpanTree([]eventlog.Event{a, b, c, d})

	require.Len(t, entries, 3)
	assert.False(t, entries[0].Parallel)
	assert.Equal(t, "A", entries[0].Events[0].SpanID)

	assert.True(t, entries[1].Parallel)
	require.Len(t, entries[1].Events, 2)
	assert.Equal(t, "B", entries[1].Events[0].SpanID)
	assert.Equal(t, "C", entries[1].Events[1].SpanID)

	assert.False(t, entries[2].Parallel)
	assert.Equal(t, "D", entries[2].Events[0].SpanID)
}

func TestBuildSpanTreeSameKeyButSingleSpanIDIsSequential(t *testing.T) {
	a := eventlog.Event{SpanID: "A", ParentSpanID: ptr("root"), StepSequence: step(1), EventTimestamp: ts(1)}
	a2 := eventlog.Event{SpanID: "A", ParentSpanID: ptr("root"), StepSequence: step(1), EventTimestamp: ts(2)}

	entries := BuildSpanTree([]eventlog.Event{a, a2})
	require.Len(t, entries, 2)
	assert.False(t, entries[0].Parallel)
	assert.False(t, entries[1].Parallel)
}

func TestBuildSpanTreeEventsWithoutParentAreAlwaysSequential(t *testing.T) {
	a := eventlog.Event{SpanID: "A", EventTimestamp: ts(1)}
	entries := BuildSpanTree([]eventlog.Event{a})
	require.Len(t, entries, 1)
	assert.False(t, entries[0].Parallel)
}
