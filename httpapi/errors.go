package httpapi

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"eventlog.dev/service/common/errs"
	"eventlog.dev/service/eventlog"
	"eventlog.dev/service/query"
)

// ErrorResponse is the §7 structured error body.
type ErrorResponse struct {
	ErrorCode string            `json:"error_code"`
	Message   string            `json:"message"`
	Fields    []eventlog.FieldError `json:"fields,omitempty"`
}

// CustomHTTPErrorHandler maps domain sentinels and validation errors to
// the status codes and body shape §7 specifies.
func CustomHTTPErrorHandler(log *logrus.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := classify(err)
		if logErr := c.JSON(code, body); logErr != nil {
			log.WithError(logErr).Error("failed writing error response")
		}
	}
}

func classify(err error) (int, ErrorResponse) {
	var validationErr *eventlog.ValidationError
	if errors.As(err, &validationErr) {
		return http.StatusBadRequest, ErrorResponse{
			ErrorCode: "validation_error",
			Message:   validationErr.Error(),
			Fields:    validationErr.Fields,
		}
	}

	switch {
	case errors.Is(err, errs.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{ErrorCode: "not_found", Message: err.Error()}
	case errors.Is(err, errs.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{ErrorCode: "validation_error", Message: err.Error()}
	case errors.Is(err, errs.ErrAuth):
		return http.StatusUnauthorized, ErrorResponse{ErrorCode: "auth_error", Message: err.Error()}
	case errors.Is(err, query.ErrNoLookupFilter):
		return http.StatusBadRequest, ErrorResponse{ErrorCode: "validation_error", Message: err.Error()}
	}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg, _ := he.Message.(string)
		if msg == "" {
			msg = http.StatusText(he.Code)
		}
		return he.Code, ErrorResponse{ErrorCode: "http_error", Message: msg}
	}

	return http.StatusInternalServerError, ErrorResponse{ErrorCode: "internal_error", Message: "internal server error"}
}
