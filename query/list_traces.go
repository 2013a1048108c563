package query

import (
	"context"
	"fmt"
)

// TraceListFilter narrows the list-traces contract.
type TraceListFilter struct {
	AccountID   *string
	ProcessName *string
	Range       TimeRange
}

// TraceListEntry is one row of the list-traces contract: a per-trace
// rollup rather than a raw event.
type TraceListEntry struct {
	TraceID       string
	EventCount    int64
	DurationMs    int64
	LatestStatus  string
	HasError      bool
	LatestEventAt int64
}

// ListTraces groups events by trace_id and returns a per-trace rollup,
// ordered by each trace's most recent event timestamp.
func (e *Engine) ListTraces(ctx context.Context, f TraceListFilter, page Page) (Result[TraceListEntry], error) {
	var w whereBuilder
	w.add("is_deleted = false")
	if f.AccountID != nil {
		w.add("account_id = " + w.bind(*f.AccountID))
	}
	if f.ProcessName != nil {
		w.add("process_name = " + w.bind(*f.ProcessName))
	}
	f.Range.apply(&w, "event_timestamp")

	countArgs := append([]interface{}{}, w.Args()...)
	whereSQL := w.SQL()

	limitArg := w.bind(page.Size)
	offsetArg := w.bind(page.Offset())

	query := fmt.Sprintf(`
		SELECT trace_id,
		       COUNT(*) AS event_count,
		       COALESCE(EXTRACT(EPOCH FROM (MAX(event_timestamp) - MIN(event_timestamp))) * 1000, 0) AS duration_ms,
		       (ARRAY_AGG(event_status ORDER BY event_timestamp DESC))[1] AS latest_status,
		       BOOL_OR(event_status = 'FAILURE') AS has_error,
		       COALESCE(EXTRACT(EPOCH FROM MAX(event_timestamp)) * 1000, 0) AS latest_event_at,
		       COUNT(*) OVER() AS total_count
		FROM events
		%s
		GROUP BY trace_id
		ORDER BY MAX(event_timestamp) DESC
		LIMIT %s OFFSET %s`,
		whereSQL, limitArg, offsetArg,
	)

	rows, err := e.pool.Query(ctx, query, w.Args()...)
	if err != nil {
		return Result[TraceListEntry]{}, err
	}

	var entries []TraceListEntry
	var total int64
	for rows.Next() {
		var entry TraceListEntry
		if err := rows.Scan(
			&entry.TraceID, &entry.EventCount, &entry.DurationMs,
			&entry.LatestStatus, &entry.HasError, &entry.LatestEventAt, &total,
		); err != nil {
			rows.Close()
			return Result[TraceListEntry]{}, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return Result[TraceListEntry]{}, err
	}
	rows.Close()

	if len(entries) == 0 && page.Offset() > 0 {
		countQuery := fmt.Sprintf(
			"SELECT COUNT(*) FROM (SELECT trace_id FROM events %s GROUP BY trace_id) t",
			whereSQL,
		)
		if err := e.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return Result[TraceListEntry]{}, err
		}
	}

	return NewResult(entries, total, page), nil
}
