package query

import (
	"context"
	"fmt"

	"eventlog.dev/service/eventlog"
)

// AccountFilter narrows the "events by account" query contract.
type AccountFilter struct {
	AccountID     string
	Range         TimeRange
	ProcessName   *string
	EventStatus   *string
	IncludeLinked bool
}

// ByAccount returns the account's events newest-first, optionally
// unioning events whose correlation_id is linked to the account via
// CorrelationLinks.
func (e *Engine) ByAccount(ctx context.Context, f AccountFilter, page Page) (Result[eventlog.Event], error) {
	var w whereBuilder
	accountPlaceholder := w.bind(f.AccountID)

	accountClause := "account_id = " + accountPlaceholder
	if f.IncludeLinked {
		accountClause = fmt.Sprintf(
			"(account_id = %s OR correlation_id IN (SELECT correlation_id FROM correlation_links WHERE account_id = %s))",
			accountPlaceholder, accountPlaceholder,
		)
	}
	w.add(accountClause)
	w.add("is_deleted = false")
	f.Range.apply(&w, "event_timestamp")
	if f.ProcessName != nil {
		w.add("process_name = " + w.bind(*f.ProcessName))
	}
	if f.EventStatus != nil {
		w.add("event_status = " + w.bind(*f.EventStatus))
	}

	return e.paginatedEvents(ctx, "events", &w, "event_timestamp DESC", page)
}

// paginatedEvents runs the common "SELECT events ... LIMIT/OFFSET with a
// window-function total" shape shared by the by-account, by-correlation
// and lookup query contracts. w must not have LIMIT/OFFSET args bound
// onto it yet; paginatedEvents binds those itself so a fallback COUNT(*)
// can reuse w's args unchanged.
func (e *Engine) paginatedEvents(ctx context.Context, from string, w *whereBuilder, orderBy string, page Page) (Result[eventlog.Event], error) {
	countArgs := append([]interface{}{}, w.Args()...)
	whereSQL := w.SQL()

	limitArg := w.bind(page.Size)
	offsetArg := w.bind(page.Offset())

	query := fmt.Sprintf(
		"SELECT %s, COUNT(*) OVER() AS total_count FROM %s %s ORDER BY %s LIMIT %s OFFSET %s",
		eventSelectList(), from, whereSQL, orderBy, limitArg, offsetArg,
	)

	rows, err := e.pool.Query(ctx, query, w.Args()...)
	if err != nil {
		return Result[eventlog.Event]{}, err
	}

	var events []eventlog.Event
	var total int64
	for rows.Next() {
		ev, rowTotal, err := scanEventWithCount(rows)
		if err != nil {
			rows.Close()
			return Result[eventlog.Event]{}, err
		}
		events = append(events, ev)
		total = rowTotal
	}
	if err := rows.Err(); err != nil {
		return Result[eventlog.Event]{}, err
	}
	rows.Close()

	if len(events) == 0 && page.Offset() > 0 {
		countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s %s", from, whereSQL)
		if err := e.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return Result[eventlog.Event]{}, err
		}
	}

	return NewResult(events, total, page), nil
}
