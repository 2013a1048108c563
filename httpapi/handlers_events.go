package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"eventlog.dev/service/ambient"
	"eventlog.dev/service/eventlog"
	"eventlog.dev/service/store"
)

func registerEventRoutes(g *echo.Group, h *Handlers, maxPayloadBytes int) {
	g.POST("/events", createEventHandler(h, maxPayloadBytes))
	g.POST("/events/batch", createEventsBatchHandler(h, maxPayloadBytes))
	g.POST("/events/batch/upload", createEventsBatchUploadHandler(h, maxPayloadBytes))
	g.DELETE("/events", deleteEventHandler(h))
}

// createEventResponse is the POST /events success body.
type createEventResponse struct {
	Success       bool     `json:"success"`
	ExecutionIDs  []string `json:"execution_ids"`
	CorrelationID string   `json:"correlation_id"`
}

func createEventHandler(h *Handlers, maxPayloadBytes int) echo.HandlerFunc {
	return func(c echo.Context) error {
		var ev eventlog.Event
		if err := c.Bind(&ev); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
		}
		applyAmbientDefaults(c, &ev)
		truncatePayloads(&ev, maxPayloadBytes)

		if err := eventlog.Validate(&ev); err != nil {
			return err
		}

		executionID, _, err := h.Store.InsertOne(c.Request().Context(), ev)
		if err != nil {
			return err
		}

		return c.JSON(http.StatusCreated, createEventResponse{
			Success:       true,
			ExecutionIDs:  []string{executionID},
			CorrelationID: ev.CorrelationID,
		})
	}
}

// batchRequest is the POST /events/batch body.
type batchRequest struct {
	Events  []eventlog.Event `json:"events"`
	BatchID string           `json:"batch_id"`
}

type indexedError struct {
	Index   int    `json:"index"`
	Message string `json:"error_message"`
}

// batchResponse is the POST /events/batch and /events/batch/upload
// success body (batch_id is omitted by the plain batch endpoint).
type batchResponse struct {
	Success         bool           `json:"success"`
	BatchID         string         `json:"batch_id,omitempty"`
	TotalReceived   int            `json:"total_received"`
	TotalInserted   int            `json:"total_inserted"`
	ExecutionIDs    []string       `json:"execution_ids,omitempty"`
	CorrelationIDs  []string       `json:"correlation_ids"`
	Errors          []indexedError `json:"errors,omitempty"`
}

func createEventsBatchHandler(h *Handlers, maxPayloadBytes int) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req batchRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
		}
		if len(req.Events) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "events must not be empty")
		}

		events, validationErrors := prepareBatch(c, req.Events, req.BatchID, maxPayloadBytes)

		result, err := h.Store.InsertBulk(c.Request().Context(), events)
		if err != nil {
			return err
		}

		resp := batchResponse{
			Success:        true,
			TotalReceived:  len(req.Events),
			TotalInserted:  result.TotalInserted,
			ExecutionIDs:   nonEmpty(result.ExecutionIDs),
			CorrelationIDs: correlationIDsOf(events),
			Errors:         append(validationErrors, toIndexedErrors(result.Errors)...),
		}
		return c.JSON(http.StatusCreated, resp)
	}
}

// uploadBatchRequest is the POST /events/batch/upload body: batch_id is
// mandatory rather than caller-optional.
type uploadBatchRequest struct {
	BatchID string           `json:"batch_id"`
	Events  []eventlog.Event `json:"events"`
}

func createEventsBatchUploadHandler(h *Handlers, maxPayloadBytes int) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req uploadBatchRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
		}
		if req.BatchID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "batch_id is required")
		}
		if len(req.Events) == 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "events must not be empty")
		}

		events, validationErrors := prepareBatch(c, req.Events, req.BatchID, maxPayloadBytes)

		result, err := h.Store.InsertBatchUpload(c.Request().Context(), req.BatchID, events)
		if err != nil {
			return err
		}

		resp := batchResponse{
			Success:        true,
			BatchID:        req.BatchID,
			TotalReceived:  len(req.Events),
			TotalInserted:  result.TotalInserted,
			CorrelationIDs: correlationIDsOf(events),
			Errors:         append(validationErrors, toIndexedErrors(result.Errors)...),
		}
		return c.JSON(http.StatusCreated, resp)
	}
}

// prepareBatch stamps ambient defaults and batch_id, truncates oversized
// payloads, and drops (reporting by index) any event that fails
// validation before it ever reaches the store.
func prepareBatch(c echo.Context, in []eventlog.Event, batchID string, maxPayloadBytes int) ([]eventlog.Event, []indexedError) {
	var out []eventlog.Event
	var errs []indexedError

	for i, ev := range in {
		applyAmbientDefaults(c, &ev)
		if batchID != "" {
			ev.BatchID = &batchID
		}
		truncatePayloads(&ev, maxPayloadBytes)

		if err := eventlog.Validate(&ev); err != nil {
			errs = append(errs, indexedError{Index: i, Message: err.Error()})
			continue
		}
		out = append(out, ev)
	}
	return out, errs
}

func correlationIDsOf(events []eventlog.Event) []string {
	seen := map[string]bool{}
	var out []string
	for _, e := range events {
		if !seen[e.CorrelationID] {
			seen[e.CorrelationID] = true
			out = append(out, e.CorrelationID)
		}
	}
	return out
}

func toIndexedErrors(errs []store.IndexError) []indexedError {
	out := make([]indexedError, len(errs))
	for i, e := range errs {
		out[i] = indexedError{Index: e.Index, Message: e.ErrorMessage}
	}
	return out
}

// nonEmpty drops the empty-string holes InsertBulk/InsertBatchUpload
// leave at failed-row indices, so the wire response omits failed rows
// from execution_ids entirely rather than emitting a blank slot.
func nonEmpty(ids []string) []string {
	var out []string
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}
	return out
}

func deleteEventHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		executionID := c.QueryParam("execution_id")
		if executionID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "execution_id is required")
		}
		if err := h.Store.SoftDelete(c.Request().Context(), executionID); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
}

// applyAmbientDefaults stamps any trace/correlation identifiers missing
// from the inbound event with ones established by the ambient
// middleware (or freshly generated ones, if no ambient context exists).
func applyAmbientDefaults(c echo.Context, ev *eventlog.Event) {
	values := ambient.FromEcho(c)
	if ev.CorrelationID == "" {
		ev.CorrelationID = values.CorrelationID
	}
	if ev.TraceID == "" {
		ev.TraceID = values.TraceID
	}
	if ev.SpanID == "" {
		ev.SpanID = values.SpanID
	}
	if ev.CorrelationID == "" {
		ev.CorrelationID = eventlog.NewCorrelationID("evt")
	}
	if ev.TraceID == "" {
		ev.TraceID = eventlog.NewTraceID()
	}
	if ev.SpanID == "" {
		ev.SpanID = eventlog.NewSpanID()
	}
	if ev.EventTimestamp.IsZero() {
		ev.EventTimestamp = time.Now().UTC()
	}
}

func truncatePayloads(ev *eventlog.Event, maxBytes int) {
	if maxBytes <= 0 {
		return
	}
	if ev.RequestPayload != nil {
		truncated := eventlog.Truncate(*ev.RequestPayload, maxBytes)
		ev.RequestPayload = &truncated
	}
	if ev.ResponsePayload != nil {
		truncated := eventlog.Truncate(*ev.ResponsePayload, maxBytes)
		ev.ResponsePayload = &truncated
	}
}
