package trace

// FlowStep is one emitted step of a trace's system fan-out.
type FlowStep struct {
	Systems    []string
	IsParallel bool
}

// BuildSystemFlow walks a span-tree timeline and emits one FlowStep per
// entry whose systems have not already been seen, deduping as it goes.
func BuildSystemFlow(timeline []TimelineEntry) []FlowStep {
	seen := map[string]bool{}
	var flow []FlowStep

	for _, entry := range timeline {
		if !entry.Parallel {
			sys := entry.Events[0].TargetSystem
			if sys == "" || seen[sys] {
				continue
			}
			seen[sys] = true
			flow = append(flow, FlowStep{Systems: []string{sys}, IsParallel: false})
			continue
		}

		var distinct []string
		dedupedWithinGroup := map[string]bool{}
		for _, e := range entry.Events {
			if e.TargetSystem == "" || dedupedWithinGroup[e.TargetSystem] {
				continue
			}
			dedupedWithinGroup[e.TargetSystem] = true
			distinct = append(distinct, e.TargetSystem)
		}

		var fresh []string
		for _, sys := range distinct {
			if !seen[sys] {
				fresh = append(fresh, sys)
			}
		}
		for _, sys := range distinct {
			seen[sys] = true
		}
		if len(fresh) > 0 {
			flow = append(flow, FlowStep{Systems: fresh, IsParallel: true})
		}
	}

	return flow
}
