package ambient

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const contextKey = "ambient_values"

// Middleware establishes the ambient value set for the duration of one
// HTTP request, reading propagated headers when present and
// generating a fresh correlation ID when none is supplied; the trace,
// parent span and batch IDs stay empty when their headers are absent,
// and SpanID is never set here. It stores the set both on the Echo
// context (for handlers using echo.Context) and on the request's
// context.Context (for anything passed down to the ingestion engine
// or store layer), guaranteeing release on every exit path since the
// values simply fall out of scope when the handler returns.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := Values{
				CorrelationID: c.Request().Header.Get("X-Correlation-ID"),
				TraceID:       c.Request().Header.Get("X-Trace-Id"),
				ParentSpanID:  c.Request().Header.Get("X-Parent-Operation-ID"),
				BatchID:       c.Request().Header.Get("X-Batch-Id"),
			}
			if v.CorrelationID == "" {
				v.CorrelationID = uuid.New().String()
			}

			c.Set(contextKey, v)
			ctx := WithValues(c.Request().Context(), v)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// FromEcho retrieves the ambient values stored on the Echo context by
// Middleware. Returns the zero Values if none were established.
func FromEcho(c echo.Context) Values {
	if v, ok := c.Get(contextKey).(Values); ok {
		return v
	}
	return Values{}
}
