package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"eventlog.dev/service/query"
)

const (
	defaultPageSize = 20
	detailPageSize  = 200
)

func registerQueryRoutes(g *echo.Group, h *Handlers) {
	g.GET("/events/account/:accountId", accountEventsHandler(h))
	g.GET("/events/account/:accountId/summary", accountSummaryHandler(h))
	g.GET("/events/correlation/:correlationId", correlationEventsHandler(h))
	g.GET("/events/trace/:traceId", traceEventsHandler(h))
	g.GET("/events/batch/:batchId", batchEventsHandler(h))
	g.GET("/events/batch/:batchId/summary", batchSummaryHandler(h))
	g.POST("/events/lookup", lookupHandler(h))
	g.POST("/events/search/text", textSearchHandler(h))
	g.GET("/dashboard/stats", dashboardStatsHandler(h))
}

func accountEventsHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter := query.AccountFilter{
			AccountID:     c.Param("accountId"),
			Range:         timeRangeFrom(c),
			ProcessName:   optionalQueryParam(c, "processName"),
			EventStatus:   optionalQueryParam(c, "eventStatus"),
			IncludeLinked: c.QueryParam("includeLinked") == "true",
		}
		result, err := h.Query.ByAccount(c.Request().Context(), filter, pageFrom(c, defaultPageSize))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, result)
	}
}

func accountSummaryHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		accountID := c.Param("accountId")
		recent, err := h.Query.ByAccount(c.Request().Context(), query.AccountFilter{AccountID: accountID}, query.Page{Number: 1, Size: detailPageSize})
		if err != nil {
			return err
		}

		errorStatus := eventStatusFailure
		recentErrors, err := h.Query.ByAccount(c.Request().Context(), query.AccountFilter{
			AccountID:   accountID,
			EventStatus: &errorStatus,
		}, query.Page{Number: 1, Size: defaultPageSize})
		if err != nil {
			return err
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"account_id":    accountID,
			"total_events":  recent.TotalCount,
			"recent_events": recent.Rows,
			"recent_errors": recentErrors.Rows,
		})
	}
}

func correlationEventsHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := h.Query.ByCorrelation(c.Request().Context(), c.Param("correlationId"), pageFrom(c, detailPageSize))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"correlation_id": c.Param("correlationId"),
			"account_id":     result.AccountID,
			"is_linked":      result.IsLinked,
			"events":         result.Rows,
			"total_count":    result.TotalCount,
			"page":           result.Page,
			"page_size":      result.PageSize,
			"has_more":       result.HasMore,
		})
	}
}

func traceEventsHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := h.Query.ByTrace(c.Request().Context(), c.Param("traceId"), pageFrom(c, detailPageSize))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"trace_id":          c.Param("traceId"),
			"events":            result.Rows,
			"total_count":       result.TotalCount,
			"page":              result.Page,
			"page_size":         result.PageSize,
			"has_more":          result.HasMore,
			"systems_involved":  result.Summary.SystemsInvolved,
			"total_duration_ms": result.Summary.TotalDurationMs,
			"status_counts":     result.Summary.StatusCounts,
			"process_name":      result.Summary.ProcessName,
			"account_id":        result.Summary.AccountID,
		})
	}
}

func batchEventsHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		result, err := h.Query.ByBatch(c.Request().Context(), c.Param("batchId"), optionalQueryParam(c, "eventStatus"), pageFrom(c, defaultPageSize))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"batch_id":        c.Param("batchId"),
			"events":          result.Rows,
			"total_count":     result.TotalCount,
			"page":            result.Page,
			"page_size":       result.PageSize,
			"has_more":        result.HasMore,
			"success_count":   result.Aggregate.SuccessCorrelations,
			"failure_count":   result.Aggregate.FailureCorrelations,
		})
	}
}

func batchSummaryHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		summary, err := h.Query.BatchSummaryFor(c.Request().Context(), c.Param("batchId"))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, summary)
	}
}

type lookupRequest struct {
	AccountID   *string `json:"account_id"`
	ProcessName *string `json:"process_name"`
	EventStatus *string `json:"event_status"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Page        int     `json:"page"`
	PageSize    int     `json:"page_size"`
}

func lookupHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req lookupRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
		}

		filter := query.LookupFilter{
			AccountID:   req.AccountID,
			ProcessName: req.ProcessName,
			EventStatus: req.EventStatus,
			Range:       parseTimeRange(req.StartDate, req.EndDate),
		}

		result, err := h.Query.Lookup(c.Request().Context(), filter, query.NormalizePage(req.Page, req.PageSize, defaultPageSize))
		if err != nil {
			if err == query.ErrNoLookupFilter {
				return echo.NewHTTPError(http.StatusBadRequest, err.Error())
			}
			return err
		}
		return c.JSON(http.StatusOK, result)
	}
}

type textSearchRequest struct {
	Query       string  `json:"query"`
	AccountID   *string `json:"account_id"`
	ProcessName *string `json:"process_name"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
	Page        int     `json:"page"`
	PageSize    int     `json:"page_size"`
}

func textSearchHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req textSearchRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
		}
		if req.Query == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "query is required")
		}

		filter := query.TextSearchFilter{
			Query:       req.Query,
			AccountID:   req.AccountID,
			ProcessName: req.ProcessName,
			Range:       parseTimeRange(req.StartDate, req.EndDate),
		}

		result, err := h.Query.TextSearch(c.Request().Context(), filter, query.NormalizePage(req.Page, req.PageSize, defaultPageSize))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]interface{}{
			"query":       req.Query,
			"events":      result.Rows,
			"total_count": result.TotalCount,
			"page":        result.Page,
			"page_size":   result.PageSize,
		})
	}
}

func dashboardStatsHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		stats, err := h.Query.DashboardStatsFor(c.Request().Context(), timeRangeFrom(c))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, stats)
	}
}

const eventStatusFailure = "FAILURE"

// parseTimeRange parses the optional RFC3339 start/end strings a JSON
// body may carry (query-string ranges go through timeRangeFrom instead).
func parseTimeRange(start, end *string) query.TimeRange {
	var r query.TimeRange
	if start != nil {
		if t, err := time.Parse(time.RFC3339, *start); err == nil {
			r.Start = &t
		}
	}
	if end != nil {
		if t, err := time.Parse(time.RFC3339, *end); err == nil {
			r.End = &t
		}
	}
	return r
}
