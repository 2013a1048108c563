package ingest

import "sync/atomic"

// Metrics holds the monotonically non-decreasing counters and gauges
// exposed by the engine.
type Metrics struct {
	Queued      atomic.Int64
	Sent        atomic.Int64
	Failed      atomic.Int64
	Spilled     atomic.Int64
	Replayed    atomic.Int64
	QueueDepth  atomic.Int64
	CircuitOpen atomic.Int32
}

// Snapshot is a point-in-time read of Metrics for observability endpoints.
type Snapshot struct {
	Queued      int64 `json:"queued"`
	Sent        int64 `json:"sent"`
	Failed      int64 `json:"failed"`
	Spilled     int64 `json:"spilled"`
	Replayed    int64 `json:"replayed"`
	QueueDepth  int64 `json:"queue_depth"`
	CircuitOpen bool  `json:"circuit_open"`
}

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Queued:      m.Queued.Load(),
		Sent:        m.Sent.Load(),
		Failed:      m.Failed.Load(),
		Spilled:     m.Spilled.Load(),
		Replayed:    m.Replayed.Load(),
		QueueDepth:  m.QueueDepth.Load(),
		CircuitOpen: m.CircuitOpen.Load() == 1,
	}
}
