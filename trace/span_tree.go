package trace

import "eventlog.dev/service/eventlog"

// TimelineEntry is one node of a trace's span tree: either a single
// sequential event or a group of events that ran in parallel.
type TimelineEntry struct {
	Parallel bool
	Events   []eventlog.Event
}

type spanKey struct {
	parentSpanID string
	stepSequence int
}

func keyFor(e eventlog.Event) (spanKey, bool) {
	if e.ParentSpanID == nil || e.StepSequence == nil {
		return spanKey{}, false
	}
	return spanKey{parentSpanID: *e.ParentSpanID, stepSequence: *e.StepSequence}, true
}

// BuildSpanTree groups events sharing a (parent_span_id, step_sequence)
// key into a single parallel entry when the group has more than one
// distinct non-empty span_id; every other event becomes its own
// sequential entry. Input order is preserved, and a parallel group is
// emitted once, at the position of its first member.
func BuildSpanTree(events []eventlog.Event) []TimelineEntry {
	groups := map[spanKey][]eventlog.Event{}
	for _, e := range events {
		if k, ok := keyFor(e); ok {
			groups[k] = append(groups[k], e)
		}
	}

	isParallelKey := func(k spanKey) bool {
		members := groups[k]
		if len(members) <= 1 {
			return false
		}
		spans := map[string]bool{}
		for _, m := range members {
			if m.SpanID != "" {
				spans[m.SpanID] = true
			}
		}
		return len(spans) > 1
	}

	var entries []TimelineEntry
	emitted := map[spanKey]bool{}

	for _, e := range events {
		k, ok := keyFor(e)
		if !ok || !isParallelKey(k) {
			entries = append(entries, TimelineEntry{Parallel: false, Events: []eventlog.Event{e}})
			continue
		}
		if emitted[k] {
			continue
		}
		emitted[k] = true
		entries = append(entries, TimelineEntry{Parallel: true, Events: groups[k]})
	}

	return entries
}
