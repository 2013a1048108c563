package httpapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"eventlog.dev/service/query"
	"eventlog.dev/service/trace"
)

func registerTraceRoutes(g *echo.Group, h *Handlers) {
	g.GET("/events/trace/:traceId/reconstruction", traceReconstructionHandler(h))
	g.GET("/traces", listTracesHandler(h))
}

type traceReconstructionResponse struct {
	TraceID         string            `json:"trace_id"`
	Events          []interface{}     `json:"events"`
	SystemsInvolved []string          `json:"systems_involved"`
	TotalDurationMs int64             `json:"total_duration_ms"`
	ProcessName     *string           `json:"process_name"`
	AccountID       *string           `json:"account_id"`
	Timeline        []trace.TimelineEntry `json:"timeline"`
	SystemFlow      []trace.FlowStep  `json:"system_flow"`
	Attempts        trace.Attempts    `json:"attempts"`
}

// traceReconstructionHandler pulls every event for a trace (paging
// through ByTrace until no rows remain, since reconstruction needs the
// full set) and derives the timeline, system flow, and retry-attempt
// breakdown from it in memory.
func traceReconstructionHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		traceID := c.Param("traceId")
		page := query.Page{Number: 1, Size: detailPageSize}
		result, err := h.Query.ByTrace(c.Request().Context(), traceID, page)
		if err != nil {
			return err
		}

		events := result.Rows
		for result.HasMore && len(result.Rows) > 0 {
			page.Number++
			result, err = h.Query.ByTrace(c.Request().Context(), traceID, page)
			if err != nil {
				return err
			}
			events = append(events, result.Rows...)
		}
		timeline := trace.BuildSpanTree(events)
		flow := trace.BuildSystemFlow(timeline)
		attempts := trace.DetectAttempts(events)

		resp := traceReconstructionResponse{
			TraceID:         traceID,
			SystemsInvolved: result.Summary.SystemsInvolved,
			TotalDurationMs: result.Summary.TotalDurationMs,
			ProcessName:     result.Summary.ProcessName,
			AccountID:       result.Summary.AccountID,
			Timeline:        timeline,
			SystemFlow:      flow,
			Attempts:        attempts,
		}
		for _, e := range events {
			resp.Events = append(resp.Events, e)
		}
		return c.JSON(http.StatusOK, resp)
	}
}

func listTracesHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		filter := query.TraceListFilter{
			AccountID:   optionalQueryParam(c, "accountId"),
			ProcessName: optionalQueryParam(c, "processName"),
			Range:       timeRangeFrom(c),
		}
		result, err := h.Query.ListTraces(c.Request().Context(), filter, pageFrom(c, defaultPageSize))
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, result)
	}
}
