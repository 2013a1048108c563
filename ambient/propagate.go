package ambient

import (
	"context"
	"net/http"
)

// PropagateHeaders stamps the ambient identifiers onto an outbound
// request so a downstream service call (including replay-triggered
// resubmission) keeps the same correlation/trace lineage.
func PropagateHeaders(req *http.Request, v Values) {
	if v.CorrelationID != "" {
		req.Header.Set("X-Correlation-ID", v.CorrelationID)
	}
	if v.TraceID != "" {
		req.Header.Set("X-Trace-Id", v.TraceID)
	}
	if v.SpanID != "" {
		// current span becomes parent for the downstream call
		req.Header.Set("X-Parent-Operation-ID", v.SpanID)
	}
	if v.BatchID != "" {
		req.Header.Set("X-Batch-Id", v.BatchID)
	}
}

// PropagateFromContext reads ambient values from ctx and stamps them on req.
func PropagateFromContext(ctx context.Context, req *http.Request) {
	if v, ok := FromContext(ctx); ok {
		PropagateHeaders(req, v)
	}
}
