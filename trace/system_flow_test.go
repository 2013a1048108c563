package trace

import (
	"testing"

	"eventlog.dev/service/eventlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBuildSystemFlowParallelTrace continues scenario S4: sequential A
// contributes its target system, the parallel group contributes
// both X and Y, and D (no target_system) contributes nothing new.
func TestBuildSystemFlowParallelTrace(t *testing.T) {
	a := eventlog.Event{SpanID: "A", OriginatingSystem: "core", TargetSystem: "core"}
	b := eventlog.Event{SpanID: "B", TargetSystem: "X"}
	c := eventlog.Event{SpanID: "C", TargetSystem: "Y"}
	d := eventlog.Event{SpanID: "D"}

	timeline := []TimelineEntry{
		{Parallel: false, Events: []eventlog.Event{a}},
		{Parallel: true, Events: []eventlog.Event{b, c}},
		{Parallel: false, Events: []eventlog.Event{d}},
	}

	flow := BuildSystemFlow(timeline)

	require.Len(t, flow, 2)
	assert.Equal(t, FlowStep{Systems: []string{"core"}, IsParallel: false}, flow[0])
	assert.Equal(t, FlowStep{Systems: []string{"X", "Y"}, IsParallel: true}, flow[1])
}

func TestBuildSystemFlowDedupesAlreadySeenSystems(t *testing.T) {
	a := eventlog.Event{TargetSystem: "core"}
	b := eventlog.Event{TargetSystem: "core"}

	timeline := []TimelineEntry{
		{Parallel: false, Events: []eventlog.Event{a}},
		{Parallel: false, Events: []eventlog.Event{b}},
	}

	flow := BuildSystemFlow(timeline)
	require.Len(t, flow, 1)
}

func TestBuildSystemFlowParallelGroupFullySeenEmitsNothing(t *testing.T) {
	a := eventlog.Event{TargetSystem: "X"}
	b := eventlog.Event{TargetSystem: "X"}
	c := eventlog.Event{TargetSystem: "X"}

	timeline := []TimelineEntry{
		{Parallel: false, Events: []eventlog.Event{a}},
		{Parallel: true, Events: []eventlog.Event{b, c}},
	}

	flow := BuildSystemFlow(timeline)
	require.Len(t, flow, 1)
	assert.False(t, flow[0].IsParallel)
}
