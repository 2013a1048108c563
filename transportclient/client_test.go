package transportclient

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDoer struct {
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	status int
	body   string
	err    error
}

func (f *fakeDoer) Do(req *http.Request) (*http.Response, error) {
	r := f.responses[f.calls]
	f.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &http.Response{
		StatusCode: r.status,
		Body:       io.NopCloser(strings.NewReader(r.body)),
		Header:     http.Header{},
	}, nil
}

func testConfig(doer HTTPDoer) Config {
	cfg := DefaultConfig("http://events.internal")
	cfg.HTTPDoer = doer
	cfg.BaseDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	cfg.Logger = logrus.New()
	cfg.Logger.SetOutput(io.Discard)
	return cfg
}

func TestExecuteSucceedsOnFirstTry(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{{status: 200, body: `{"ok":true}`}}}
	c := New(testConfig(doer))

	resp, err := c.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/v1/processes"})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, 1, doer.calls)
}

func TestExecuteRetriesOnServerError(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 503, body: ""},
		{status: 500, body: ""},
		{status: 200, body: `{"ok":true}`},
	}}
	c := New(testConfig(doer))

	resp, err := c.Execute(context.Background(), &Request{Method: http.MethodPost, Path: "/v1/events"})
	require.NoError(t, err)
	assert.True(t, resp.IsSuccess())
	assert.Equal(t, 3, doer.calls)
}

func TestExecuteDoesNotRetryNonRetryable4xx(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{{status: 422, body: `{"message":"bad"}`}}}
	c := New(testConfig(doer))

	_, err := c.Execute(context.Background(), &Request{Method: http.MethodPost, Path: "/v1/events"})
	require.Error(t, err)
	assert.Equal(t, 1, doer.calls)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrKindNonRetryable, te.Kind)
}

func TestExecuteGivesUpAfterMaxRetries(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{
		{status: 500}, {status: 500}, {status: 500}, {status: 500},
	}}
	cfg := testConfig(doer)
	cfg.MaxRetries = 3
	c := New(cfg)

	_, err := c.Execute(context.Background(), &Request{Method: http.MethodPost, Path: "/v1/events"})
	require.Error(t, err)
	assert.Equal(t, 4, doer.calls) // initial + 3 retries
	assert.True(t, IsRetryable(err))
}

func TestExecuteClassifiesAuthError(t *testing.T) {
	doer := &fakeDoer{responses: []fakeResponse{{status: 401, body: ""}}}
	c := New(testConfig(doer))

	_, err := c.Execute(context.Background(), &Request{Method: http.MethodGet, Path: "/v1/events/account/a1"})
	require.Error(t, err)

	var te *TransportError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrKindAuth, te.Kind)
}
