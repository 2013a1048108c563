package httpapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"eventlog.dev/service/common/errs"
	"eventlog.dev/service/eventlog"
)

func registerLinkRoutes(g *echo.Group, h *Handlers) {
	g.POST("/correlation-links", createCorrelationLinkHandler(h))
	g.GET("/correlation-links/:correlationId", getCorrelationLinkHandler(h))
	g.GET("/processes", listProcessDefinitionsHandler(h))
	g.GET("/processes/:processName", getProcessDefinitionHandler(h))
	g.POST("/processes", upsertProcessDefinitionHandler(h))
}

type correlationLinkRequest struct {
	CorrelationID string  `json:"correlation_id"`
	AccountID     string  `json:"account_id"`
	ApplicationID *string `json:"application_id"`
	CustomerID    *string `json:"customer_id"`
	CardLast4     *string `json:"card_last4"`
}

func createCorrelationLinkHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req correlationLinkRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
		}
		if req.CorrelationID == "" || req.AccountID == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "correlation_id and account_id are required")
		}

		link := eventlog.CorrelationLink{
			CorrelationID: req.CorrelationID,
			AccountID:     req.AccountID,
			ApplicationID: req.ApplicationID,
			CustomerID:    req.CustomerID,
			CardLast4:     req.CardLast4,
			LinkedAt:      time.Now().UTC(),
		}
		if err := h.Links.UpsertCorrelationLink(c.Request().Context(), link); err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, link)
	}
}

func getCorrelationLinkHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		link, err := h.Links.GetCorrelationLink(c.Request().Context(), c.Param("correlationId"))
		if err != nil {
			return err
		}
		if link == nil {
			return errs.ErrNotFound
		}
		return c.JSON(http.StatusOK, link)
	}
}

type processDefinitionRequest struct {
	ProcessName   string `json:"process_name"`
	DisplayName   string `json:"display_name"`
	OwningTeam    string `json:"owning_team"`
	ExpectedSteps int    `json:"expected_steps"`
	SLAMs         int64  `json:"sla_ms"`
	Active        bool   `json:"active"`
}

func upsertProcessDefinitionHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req processDefinitionRequest
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "malformed request body")
		}
		if req.ProcessName == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "process_name is required")
		}

		def := eventlog.ProcessDefinition{
			ProcessName:   req.ProcessName,
			DisplayName:   req.DisplayName,
			OwningTeam:    req.OwningTeam,
			ExpectedSteps: req.ExpectedSteps,
			SLAMs:         req.SLAMs,
			Active:        req.Active,
		}
		if err := h.Links.UpsertProcessDefinition(c.Request().Context(), def); err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, def)
	}
}

func getProcessDefinitionHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		def, err := h.Links.GetProcessDefinition(c.Request().Context(), c.Param("processName"))
		if err != nil {
			return err
		}
		if def == nil {
			return errs.ErrNotFound
		}
		return c.JSON(http.StatusOK, def)
	}
}

func listProcessDefinitionsHandler(h *Handlers) echo.HandlerFunc {
	return func(c echo.Context) error {
		defs, err := h.Links.ListProcessDefinitions(c.Request().Context())
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, defs)
	}
}
