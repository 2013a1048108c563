package query

import (
	"context"
	"errors"

	"eventlog.dev/service/eventlog"
)

// ErrNoLookupFilter is returned when a Lookup call carries no filter at
// all, since an unfiltered lookup would scan the whole events table.
var ErrNoLookupFilter = errors.New("query: lookup requires at least one filter")

// LookupFilter is the generic multi-filter lookup contract.
type LookupFilter struct {
	AccountID   *string
	ProcessName *string
	EventStatus *string
	Range       TimeRange
}

func (f LookupFilter) empty() bool {
	return f.AccountID == nil && f.ProcessName == nil && f.EventStatus == nil &&
		f.Range.Start == nil && f.Range.End == nil
}

// Lookup runs the generic filtered lookup, requiring at least one filter.
func (e *Engine) Lookup(ctx context.Context, f LookupFilter, page Page) (Result[eventlog.Event], error) {
	if f.empty() {
		return Result[eventlog.Event]{}, ErrNoLookupFilter
	}

	var w whereBuilder
	w.add("is_deleted = false")
	if f.AccountID != nil {
		w.add("account_id = " + w.bind(*f.AccountID))
	}
	if f.ProcessName != nil {
		w.add("process_name = " + w.bind(*f.ProcessName))
	}
	if f.EventStatus != nil {
		w.add("event_status = " + w.bind(*f.EventStatus))
	}
	f.Range.apply(&w, "event_timestamp")

	return e.paginatedEvents(ctx, "events", &w, "event_timestamp DESC", page)
}
