package query

import (
	"context"

	"eventlog.dev/service/eventlog"
)

// TraceSummary is the aggregate half of the by-trace contract.
type TraceSummary struct {
	SystemsInvolved []string
	TotalDurationMs int64
	StatusCounts    map[eventlog.EventStatus]int64
	ProcessName     *string
	AccountID       *string
}

// TraceResult bundles the paginated event page with its trace-level aggregate.
type TraceResult struct {
	Result[eventlog.Event]
	Summary TraceSummary
}

// ByTrace returns a trace's events oldest-first plus the aggregate
// summary described in the query contract table.
func (e *Engine) ByTrace(ctx context.Context, traceID string, page Page) (TraceResult, error) {
	var w whereBuilder
	w.add("trace_id = " + w.bind(traceID))
	w.add("is_deleted = false")

	events, err := e.paginatedEvents(ctx, "events", &w, "event_timestamp ASC", page)
	if err != nil {
		return TraceResult{}, err
	}

	summary, err := e.traceSummary(ctx, traceID)
	if err != nil {
		return TraceResult{}, err
	}

	return TraceResult{Result: events, Summary: summary}, nil
}

func (e *Engine) traceSummary(ctx context.Context, traceID string) (TraceSummary, error) {
	var summary TraceSummary
	summary.StatusCounts = map[eventlog.EventStatus]int64{}

	rows, err := e.pool.Query(ctx,
		`SELECT DISTINCT target_system FROM events
		 WHERE trace_id = $1 AND is_deleted = false AND target_system <> ''`,
		traceID,
	)
	if err != nil {
		return TraceSummary{}, err
	}
	for rows.Next() {
		var sys string
		if err := rows.Scan(&sys); err != nil {
			rows.Close()
			return TraceSummary{}, err
		}
		summary.SystemsInvolved = append(summary.SystemsInvolved, sys)
	}
	if err := rows.Err(); err != nil {
		return TraceSummary{}, err
	}
	rows.Close()

	var minTs, maxTs int64
	err = e.pool.QueryRow(ctx,
		`SELECT COALESCE(EXTRACT(EPOCH FROM MIN(event_timestamp)) * 1000, 0),
		        COALESCE(EXTRACT(EPOCH FROM MAX(event_timestamp)) * 1000, 0)
		 FROM events WHERE trace_id = $1 AND is_deleted = false`,
		traceID,
	).Scan(&minTs, &maxTs)
	if err != nil {
		return TraceSummary{}, err
	}
	summary.TotalDurationMs = maxTs - minTs

	statusRows, err := e.pool.Query(ctx,
		`SELECT event_status, COUNT(*) FROM events
		 WHERE trace_id = $1 AND is_deleted = false GROUP BY event_status`,
		traceID,
	)
	if err != nil {
		return TraceSummary{}, err
	}
	for statusRows.Next() {
		var status string
		var count int64
		if err := statusRows.Scan(&status, &count); err != nil {
			statusRows.Close()
			return TraceSummary{}, err
		}
		summary.StatusCounts[eventlog.EventStatus(status)] = count
	}
	if err := statusRows.Err(); err != nil {
		return TraceSummary{}, err
	}
	statusRows.Close()

	err = e.pool.QueryRow(ctx,
		`SELECT process_name FROM events
		 WHERE trace_id = $1 AND is_deleted = false AND event_type = 'PROCESS_START'
		 ORDER BY event_timestamp ASC LIMIT 1`,
		traceID,
	).Scan(&summary.ProcessName)
	if err != nil && !isNoRows(err) {
		return TraceSummary{}, err
	}

	err = e.pool.QueryRow(ctx,
		`SELECT account_id FROM events
		 WHERE trace_id = $1 AND is_deleted = false AND account_id IS NOT NULL
		 ORDER BY event_timestamp ASC LIMIT 1`,
		traceID,
	).Scan(&summary.AccountID)
	if err != nil && !isNoRows(err) {
		return TraceSummary{}, err
	}

	return summary, nil
}
