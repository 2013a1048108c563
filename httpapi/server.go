// Package httpapi wires the §6.2 HTTP surface onto an Echo server:
// ingestion endpoints backed by the store (C7), read endpoints backed
// by the query engine (C8), and reference-data CRUD backed by the
// link store. Grounded on the corpus's http/server.go for middleware
// composition and graceful shutdown.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"eventlog.dev/service/ambient"
	"eventlog.dev/service/authtoken"
	"eventlog.dev/service/query"
	"eventlog.dev/service/store"
	"eventlog.dev/service/version"
)

// ServerConfig controls middleware and listening behavior.
type ServerConfig struct {
	Port            int
	Debug           bool
	BodyLimit       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	RateLimit       float64

	// JWTValidator, when non-nil, requires a valid bearer token on every
	// route except /healthz.
	JWTValidator *authtoken.Validator

	MaxPayloadSizeBytes int
}

// DefaultServerConfig returns sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:                8080,
		BodyLimit:           "10M",
		ReadTimeout:         30 * time.Second,
		WriteTimeout:        30 * time.Second,
		ShutdownTimeout:     10 * time.Second,
		AllowedOrigins:      []string{"*"},
		MaxPayloadSizeBytes: 32_768,
	}
}

// Handlers holds the dependencies every route handler needs.
type Handlers struct {
	Store *store.Store
	Links *store.LinkStore
	Query *query.Engine
	Log   *logrus.Logger
}

// NewServer builds an Echo instance with the full middleware chain and
// every §6.2 route registered.
func NewServer(cfg ServerConfig, h *Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.Debug
	e.HTTPErrorHandler = CustomHTTPErrorHandler(h.Log)

	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "[${time_rfc3339}] ${status} ${method} ${uri} (${latency_human})\n",
	}))
	e.Use(middleware.Recover())
	if cfg.BodyLimit != "" {
		e.Use(middleware.BodyLimit(cfg.BodyLimit))
	}
	if len(cfg.AllowedOrigins) > 0 {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowedOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
	e.Use(middleware.RequestID())
	e.Use(ambient.Middleware())
	if cfg.RateLimit > 0 {
		e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(cfg.RateLimit))))
	}

	e.GET("/healthz", healthHandler())

	v1 := e.Group("/v1")
	if cfg.JWTValidator != nil {
		v1.Use(echojwt.WithConfig(echojwt.Config{
			ParseTokenFunc: func(c echo.Context, auth string) (interface{}, error) {
				return cfg.JWTValidator.Parse(auth)
			},
		}))
	}

	registerEventRoutes(v1, h, cfg.MaxPayloadSizeBytes)
	registerQueryRoutes(v1, h)
	registerLinkRoutes(v1, h)
	registerTraceRoutes(v1, h)

	return e
}

func healthHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": "eventlogd",
			"version": version.GetServiceVersion(),
		})
	}
}

// StartServer starts e with the configured timeouts.
func StartServer(e *echo.Echo, cfg ServerConfig) error {
	s := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return e.StartServer(s)
}

// GracefulShutdown shuts e down within timeout.
func GracefulShutdown(e *echo.Echo, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return e.Shutdown(ctx)
}

// claimsFromContext extracts the validated JWT claims echo-jwt stashes
// on the request context, returning nil when no token was required.
func claimsFromContext(c echo.Context) jwt.Token {
	raw := c.Get("user")
	if raw == nil {
		return nil
	}
	token, _ := raw.(jwt.Token)
	return token
}
