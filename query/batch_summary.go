package query

import "context"

// BatchSummary is the batch-summary contract's response.
type BatchSummary struct {
	TotalProcesses int64
	Completed      int64
	Failed         int64
	InProgress     int64
}

// BatchSummaryFor computes the batch-summary aggregate in one pass.
func (e *Engine) BatchSummaryFor(ctx context.Context, batchID string) (BatchSummary, error) {
	var s BatchSummary
	err := e.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT correlation_id),
		        COUNT(DISTINCT correlation_id) FILTER (WHERE event_type = 'PROCESS_END' AND event_status = 'SUCCESS'),
		        COUNT(DISTINCT correlation_id) FILTER (WHERE event_status = 'FAILURE')
		 FROM events WHERE batch_id = $1 AND is_deleted = false`,
		batchID,
	).Scan(&s.TotalProcesses, &s.Completed, &s.Failed)
	if err != nil {
		return BatchSummary{}, err
	}

	s.InProgress = s.TotalProcesses - s.Completed - s.Failed
	if s.InProgress < 0 {
		s.InProgress = 0
	}
	return s, nil
}
