package httpapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"eventlog.dev/service/query"
)

func pageFrom(c echo.Context, defaultSize int) query.Page {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	size, _ := strconv.Atoi(c.QueryParam("pageSize"))
	return query.NormalizePage(page, size, defaultSize)
}

func timeRangeFrom(c echo.Context) query.TimeRange {
	var r query.TimeRange
	if v := c.QueryParam("startDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			r.Start = &t
		}
	}
	if v := c.QueryParam("endDate"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			r.End = &t
		}
	}
	return r
}

func optionalQueryParam(c echo.Context, name string) *string {
	v := c.QueryParam(name)
	if v == "" {
		return nil
	}
	return &v
}
