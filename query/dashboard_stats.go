package query

import (
	"context"
	"fmt"
	"math"
	"time"
)

// DashboardStats is the dashboard-stats contract's response.
type DashboardStats struct {
	TotalTraces        int64    `json:"total_traces"`
	TotalAccounts      int64    `json:"total_accounts"`
	TotalEvents        int64    `json:"total_events"`
	TracesWithFailures int64    `json:"traces_with_failures"`
	SystemNames        []string `json:"system_names"`
	SuccessRate        float64  `json:"success_rate"`
}

// DashboardStatsFor computes the dashboard aggregate, consulting the
// read-through cache first when one is configured.
func (e *Engine) DashboardStatsFor(ctx context.Context, r TimeRange) (DashboardStats, error) {
	cacheKey := dashboardCacheKey(r)
	if e.cache != nil {
		if stats, ok := e.cache.Get(ctx, cacheKey); ok {
			return stats, nil
		}
	}

	var w whereBuilder
	w.add("is_deleted = false")
	r.apply(&w, "event_timestamp")
	whereSQL := w.SQL()

	var stats DashboardStats
	err := e.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT COUNT(DISTINCT trace_id),
		        COUNT(DISTINCT account_id),
		        COUNT(*),
		        COUNT(DISTINCT trace_id) FILTER (WHERE event_status = 'FAILURE')
		 FROM events %s`, whereSQL,
	), w.Args()...).Scan(
		&stats.TotalTraces, &stats.TotalAccounts, &stats.TotalEvents, &stats.TracesWithFailures,
	)
	if err != nil {
		return DashboardStats{}, err
	}

	rows, err := e.pool.Query(ctx, fmt.Sprintf(
		`SELECT DISTINCT target_system FROM events %s AND target_system <> ''`,
		whereSQL,
	), w.Args()...)
	if err != nil {
		return DashboardStats{}, err
	}
	for rows.Next() {
		var sys string
		if err := rows.Scan(&sys); err != nil {
			rows.Close()
			return DashboardStats{}, err
		}
		stats.SystemNames = append(stats.SystemNames, sys)
	}
	if err := rows.Err(); err != nil {
		return DashboardStats{}, err
	}
	rows.Close()

	if stats.TotalTraces == 0 {
		stats.SuccessRate = 100
	} else {
		ratio := float64(stats.TotalTraces-stats.TracesWithFailures) / float64(stats.TotalTraces)
		stats.SuccessRate = math.Round(ratio*10000) / 100
	}

	if e.cache != nil {
		_ = e.cache.Set(ctx, cacheKey, stats)
	}

	return stats, nil
}

func dashboardCacheKey(r TimeRange) string {
	start, end := "-", "-"
	if r.Start != nil {
		start = r.Start.UTC().Format(time.RFC3339)
	}
	if r.End != nil {
		end = r.End.UTC().Format(time.RFC3339)
	}
	return start + "_" + end
}
