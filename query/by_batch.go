package query

import (
	"context"

	"eventlog.dev/service/eventlog"
)

// BatchAggregate reports distinct-correlation SUCCESS/FAILURE counts
// for a batch, computed over every event in the batch regardless of
// any eventStatus filter applied to the paginated rows.
type BatchAggregate struct {
	SuccessCorrelations int64
	FailureCorrelations int64
}

// BatchResult bundles the paginated page with the batch's aggregate.
type BatchResult struct {
	Result[eventlog.Event]
	Aggregate BatchAggregate
}

// ByBatch returns a batch's events newest-first, filterable by status,
// plus the unfiltered success/failure correlation-count aggregate.
func (e *Engine) ByBatch(ctx context.Context, batchID string, eventStatus *string, page Page) (BatchResult, error) {
	var w whereBuilder
	w.add("batch_id = " + w.bind(batchID))
	w.add("is_deleted = false")
	if eventStatus != nil {
		w.add("event_status = " + w.bind(*eventStatus))
	}

	events, err := e.paginatedEvents(ctx, "events", &w, "event_timestamp DESC", page)
	if err != nil {
		return BatchResult{}, err
	}

	var agg BatchAggregate
	err = e.pool.QueryRow(ctx,
		`SELECT COUNT(DISTINCT correlation_id) FILTER (WHERE event_status = 'SUCCESS'),
		        COUNT(DISTINCT correlation_id) FILTER (WHERE event_status = 'FAILURE')
		 FROM events WHERE batch_id = $1 AND is_deleted = false`,
		batchID,
	).Scan(&agg.SuccessCorrelations, &agg.FailureCorrelations)
	if err != nil {
		return BatchResult{}, err
	}

	return BatchResult{Result: events, Aggregate: agg}, nil
}
