package query

import (
	"context"
	"errors"
	"fmt"

	"eventlog.dev/service/eventlog"
	"github.com/jackc/pgx/v5"
)

// CorrelationResult is the by-correlation contract's response shape: the
// paginated events plus the link status resolved from CorrelationLinks.
type CorrelationResult struct {
	Result[eventlog.Event]
	AccountID *string
	IsLinked  bool
}

// ByCorrelation returns every event sharing correlation_id, ordered by
// step then timestamp, along with whatever CorrelationLinks says about
// the correlation's account linkage.
func (e *Engine) ByCorrelation(ctx context.Context, correlationID string, page Page) (CorrelationResult, error) {
	var w whereBuilder
	w.add("correlation_id = " + w.bind(correlationID))
	w.add("is_deleted = false")

	events, err := e.paginatedEvents(ctx, "events", &w, "step_sequence ASC, event_timestamp ASC", page)
	if err != nil {
		return CorrelationResult{}, err
	}

	var accountID *string
	row := e.pool.QueryRow(ctx,
		"SELECT account_id FROM correlation_links WHERE correlation_id = $1",
		correlationID,
	)
	if err := row.Scan(&accountID); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return CorrelationResult{}, fmt.Errorf("looking up correlation link: %w", err)
	}

	return CorrelationResult{Result: events, AccountID: accountID, IsLinked: accountID != nil}, nil
}
