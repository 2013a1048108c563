package transportclient

import (
	"context"
	"net/http"

	"eventlog.dev/service/eventlog"
)

// CreateEventResponse mirrors POST /v1/events' 201 body.
type CreateEventResponse struct {
	Success       bool     `json:"success"`
	ExecutionIDs  []string `json:"execution_ids"`
	CorrelationID string   `json:"correlation_id"`
}

// CreateEvent submits a single event.
func (c *Client) CreateEvent(ctx context.Context, e eventlog.Event) (*CreateEventResponse, error) {
	resp, err := c.Execute(ctx, &Request{Method: http.MethodPost, Path: "/v1/events", Body: e})
	if err != nil {
		return nil, err
	}
	var out CreateEventResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BatchError reports one failed row within a partially-successful batch.
type BatchError struct {
	Index        int    `json:"index"`
	ErrorMessage string `json:"error_message"`
}

// CreateEventsResponse mirrors POST /v1/events/batch's 201 body.
type CreateEventsResponse struct {
	Success         bool         `json:"success"`
	TotalReceived   int          `json:"total_received"`
	TotalInserted   int          `json:"total_inserted"`
	ExecutionIDs    []string     `json:"execution_ids"`
	CorrelationIDs  []string     `json:"correlation_ids"`
	Errors          []BatchError `json:"errors,omitempty"`
}

// CreateEvents submits a batch, optionally stamping a shared batch_id.
func (c *Client) CreateEvents(ctx context.Context, events []eventlog.Event, batchID string) (*CreateEventsResponse, error) {
	body := map[string]interface{}{"events": events}
	if batchID != "" {
		body["batch_id"] = batchID
	}
	resp, err := c.Execute(ctx, &Request{Method: http.MethodPost, Path: "/v1/events/batch", Body: body})
	if err != nil {
		return nil, err
	}
	var out CreateEventsResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateBatchUpload submits a caller-labeled bulk upload.
func (c *Client) CreateBatchUpload(ctx context.Context, batchID string, events []eventlog.Event) (*CreateEventsResponse, error) {
	body := map[string]interface{}{"batch_id": batchID, "events": events}
	resp, err := c.Execute(ctx, &Request{Method: http.MethodPost, Path: "/v1/events/batch/upload", Body: body})
	if err != nil {
		return nil, err
	}
	var out CreateEventsResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCorrelationLink idempotently upserts a correlation->account link.
func (c *Client) CreateCorrelationLink(ctx context.Context, link eventlog.CorrelationLink) error {
	_, err := c.Execute(ctx, &Request{Method: http.MethodPost, Path: "/v1/correlation-links", Body: link})
	return err
}

// SendOne submits a single event, discarding the response body. It
// satisfies the Sender capability consumed by the ingestion engine and
// the spillover replayer.
func (c *Client) SendOne(ctx context.Context, e eventlog.Event) error {
	_, err := c.CreateEvent(ctx, e)
	return err
}

// SendBatch submits a batch with no shared batch_id, discarding the
// response body. It satisfies the ingestion engine's Sender capability.
func (c *Client) SendBatch(ctx context.Context, events []eventlog.Event) error {
	_, err := c.CreateEvents(ctx, events, "")
	return err
}
