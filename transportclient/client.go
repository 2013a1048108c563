package transportclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"eventlog.dev/service/common/errs"
	"github.com/sirupsen/logrus"
)

// ErrKind classifies a transport failure per the error-handling design.
type ErrKind string

const (
	ErrKindAuth             ErrKind = "auth_error"
	ErrKindRetryable        ErrKind = "retryable_transport_error"
	ErrKindNonRetryable     ErrKind = "non_retryable_transport_error"
)

// TransportError wraps a failed call with its classification.
type TransportError struct {
	Kind       ErrKind
	StatusCode int
	ServerCode string
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: status=%d", e.Kind, e.StatusCode)
}

// Unwrap exposes the error-kind sentinel for errors.Is, and falls back
// to the wrapped cause when no kind-specific sentinel applies so
// errors.Is/As still sees the underlying network error.
func (e *TransportError) Unwrap() error {
	switch e.Kind {
	case ErrKindAuth:
		return errs.ErrAuth
	case ErrKindRetryable:
		return errs.ErrRetryableTransport
	case ErrKindNonRetryable:
		return errs.ErrNonRetryableTransport
	default:
		return e.Err
	}
}

var retryableStatus = map[int]bool{
	429: true, 500: true, 502: true, 503: true, 504: true,
}

// Config configures the retry/backoff/timeout policy per spec §4.3/§6.4.
type Config struct {
	BaseURL       string
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	RequestTimeout time.Duration
	ApplicationID string
	TokenProvider TokenProvider
	HTTPDoer      HTTPDoer
	Logger        *logrus.Logger
}

// HTTPDoer is the seam the client is injected through for tests and
// alternative backends, per spec §4.3 "the transport MUST be injectable".
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		MaxRetries:     3,
		BaseDelay:      500 * time.Millisecond,
		MaxDelay:       30 * time.Second,
		RequestTimeout: 30 * time.Second,
		HTTPDoer:       &http.Client{Timeout: 30 * time.Second},
		Logger:         logrus.StandardLogger(),
	}
}

// Client is the synchronous HTTP transport client (C3).
type Client struct {
	cfg Config
}

func New(cfg Config) *Client {
	if cfg.HTTPDoer == nil {
		cfg.HTTPDoer = &http.Client{Timeout: cfg.RequestTimeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Client{cfg: cfg}
}

// Execute runs req with retry on retryable outcomes: status in
// {429,500,502,503,504} or network/timeout error. Non-retryable 4xx
// (other than 429) return immediately. Delay between attempt k and
// k+1 is full-jitter capped exponential backoff.
func (c *Client) Execute(ctx context.Context, req *Request) (*Response, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		resp, err := c.executeOnce(ctx, req)
		if err == nil {
			if resp.IsSuccess() || resp.IsRedirect() {
				return resp, nil
			}
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return resp, &TransportError{Kind: ErrKindAuth, StatusCode: resp.StatusCode}
			}
			if !retryableStatus[resp.StatusCode] {
				return resp, &TransportError{Kind: ErrKindNonRetryable, StatusCode: resp.StatusCode}
			}
			lastErr = &TransportError{Kind: ErrKindRetryable, StatusCode: resp.StatusCode}
		} else {
			lastErr = &TransportError{Kind: ErrKindRetryable, Err: err, Message: err.Error()}
		}

		if attempt == c.cfg.MaxRetries {
			break
		}
		delay := Backoff(attempt, c.cfg.BaseDelay, c.cfg.MaxDelay)
		c.cfg.Logger.WithFields(logrus.Fields{
			"attempt": attempt,
			"delay_ms": delay.Milliseconds(),
			"path":    req.Path,
		}).Warn("transportclient: retrying request")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func (c *Client) executeOnce(ctx context.Context, req *Request) (*Response, error) {
	body, err := newBodyReader(req.Body)
	if err != nil {
		return nil, err
	}

	reqURL := c.cfg.BaseURL + req.Path
	if len(req.Query) > 0 {
		q := url.Values{}
		for k, v := range req.Query {
			q.Set(k, v)
		}
		reqURL += "?" + q.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, reqURL, body)
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.ApplicationID != "" {
		httpReq.Header.Set("X-Application-Id", c.cfg.ApplicationID)
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	if c.cfg.TokenProvider != nil {
		token, err := c.cfg.TokenProvider.Token(ctx)
		if err != nil {
			return nil, &TransportError{Kind: ErrKindAuth, Err: err, Message: err.Error()}
		}
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	httpResp, err := c.cfg.HTTPDoer.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{StatusCode: httpResp.StatusCode, Body: raw, Header: httpResp.Header}, nil
}

// IsRetryable reports whether err represents a retryable transport failure.
func IsRetryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Kind == ErrKindRetryable
	}
	return false
}
