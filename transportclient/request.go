// Package transportclient implements the synchronous HTTP client used
// both by direct callers and by the async ingestion engine's sender
// loop: single/batch event submission and correlation-link upsert,
// all with retry-on-retryable-status and an injectable transport for
// tests. It has no typed read-query methods; Execute sends any Request
// and returns the raw Response.
//
// Adapted from the corpus's http.Client retry-request pattern,
// generalized with full-jitter capped backoff and a pluggable
// TokenProvider.
package transportclient

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

// Request describes one logical HTTP call to retry as a unit.
type Request struct {
	Method  string
	Path    string
	Query   map[string]string
	Body    interface{}
	Headers map[string]string
}

// Response wraps the outcome of a single attempt.
type Response struct {
	StatusCode int
	Body       []byte
	Header     http.Header
}

func (r *Response) IsSuccess() bool     { return r.StatusCode >= 200 && r.StatusCode < 300 }
func (r *Response) IsRedirect() bool    { return r.StatusCode >= 300 && r.StatusCode < 400 }
func (r *Response) IsClientError() bool { return r.StatusCode >= 400 && r.StatusCode < 500 }
func (r *Response) IsServerError() bool { return r.StatusCode >= 500 && r.StatusCode < 600 }

// Decode unmarshals the response body into v.
func (r *Response) Decode(v interface{}) error {
	return json.Unmarshal(r.Body, v)
}

func newBodyReader(body interface{}) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}
