// Package query implements the read engine (C8): paginated event
// queries, text search, trace listing, and dashboard aggregates,
// backed directly by pgx rather than an ORM since these are hand-tuned
// aggregate queries, the same split the corpus itself draws between
// db/postgres_pgx.go and db/repository/postgres.go's raw aggregate SQL.
package query

const (
	defaultPage         = 1
	defaultPageSize     = 20
	detailPageSize      = 200
	dashboardPageSize   = 500
	maxPageSize         = 1000
)

// Page normalizes page/pageSize inputs against the endpoint's default,
// clamping to sane bounds.
type Page struct {
	Number int
	Size   int
}

// NormalizePage applies defaults and bounds. A zero or negative page
// number becomes 1; a zero or negative size becomes defaultSize; sizes
// above maxPageSize are clamped.
func NormalizePage(page, size, defaultSize int) Page {
	if page < 1 {
		page = defaultPage
	}
	if size < 1 {
		size = defaultSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return Page{Number: page, Size: size}
}

func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Result is the common paginated response shape (§4.8).
type Result[T any] struct {
	Rows       []T   `json:"rows"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	HasMore    bool  `json:"has_more"`
}

// NewResult assembles a Result, computing HasMore from the page window.
func NewResult[T any](rows []T, total int64, p Page) Result[T] {
	return Result[T]{
		Rows:       rows,
		TotalCount: total,
		Page:       p.Number,
		PageSize:   p.Size,
		HasMore:    int64(p.Offset()+len(rows)) < total,
	}
}
