package query

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
)

// Engine runs every read-side query contract against the event store.
type Engine struct {
	pool            *pgxpool.Pool
	cache           *DashboardCache
	log             *logrus.Logger
	fullTextEnabled bool
}

// New constructs an Engine. cache may be nil to disable the dashboard
// read-through cache. fullTextEnabled switches the text-search contract
// between the backend full-text predicate and a plain substring match.
func New(pool *pgxpool.Pool, cache *DashboardCache, fullTextEnabled bool, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{pool: pool, cache: cache, fullTextEnabled: fullTextEnabled, log: logger}
}

// TimeRange is an optional inclusive [Start, End] filter shared by most query contracts.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

func (r TimeRange) apply(where *whereBuilder, column string) {
	if r.Start != nil {
		where.add(column+" >= "+where.bind(*r.Start))
	}
	if r.End != nil {
		where.add(column+" <= "+where.bind(*r.End))
	}
}
