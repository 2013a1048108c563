package query

import (
	"context"
	"strings"

	"eventlog.dev/service/eventlog"
)

// textSearchStrip holds the characters the full-text predicate formatter
// strips before tokenizing, per the query contract's escaping rule.
const textSearchStrip = `"[]{}()*?\!`

// TextSearchFilter is the free-text search contract.
type TextSearchFilter struct {
	Query       string
	AccountID   *string
	ProcessName *string
	Range       TimeRange
}

// formatFullTextQuery strips injection-sensitive characters, splits on
// whitespace, and renders a prefix-match tsquery-style expression:
// a single word becomes "w*"; multiple words are ANDed together.
func formatFullTextQuery(q string) string {
	cleaned := strings.Map(func(r rune) rune {
		if strings.ContainsRune(textSearchStrip, r) {
			return -1
		}
		return r
	}, q)

	words := strings.Fields(cleaned)
	if len(words) == 0 {
		return ""
	}
	for i, w := range words {
		words[i] = `"` + w + `*"`
	}
	return strings.Join(words, " AND ")
}

// TextSearch runs the free-text search contract. When e.fullTextEnabled
// is set, it uses the backend's full-text predicate; otherwise it falls
// back to a plain substring match, still built through whereBuilder's
// bind so the driver parameterizes the value (no string concatenation
// of user input into SQL).
func (e *Engine) TextSearch(ctx context.Context, f TextSearchFilter, page Page) (Result[eventlog.Event], error) {
	var w whereBuilder
	w.add("is_deleted = false")

	if e.fullTextEnabled {
		formatted := formatFullTextQuery(f.Query)
		if formatted != "" {
			w.add("search_vector @@ to_tsquery('simple', " + w.bind(formatted) + ")")
		}
	} else {
		like := "%" + f.Query + "%"
		w.add("(summary ILIKE " + w.bind(like) + " OR error_message ILIKE " + w.bind(like) + ")")
	}

	if f.AccountID != nil {
		w.add("account_id = " + w.bind(*f.AccountID))
	}
	if f.ProcessName != nil {
		w.add("process_name = " + w.bind(*f.ProcessName))
	}
	f.Range.apply(&w, "event_timestamp")

	return e.paginatedEvents(ctx, "events", &w, "event_timestamp DESC", page)
}
