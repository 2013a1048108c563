package ingest

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"eventlog.dev/service/eventlog"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu        sync.Mutex
	failAll   bool
	sentCount int
}

func (f *fakeSender) SendOne(ctx context.Context, e eventlog.Event) error {
	return f.SendBatch(ctx, []eventlog.Event{e})
}

func (f *fakeSender) SendBatch(ctx context.Context, events []eventlog.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return errors.New("server unavailable")
	}
	f.sentCount += len(events)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sentCount
}

type fakeSpiller struct {
	mu       sync.Mutex
	capacity int
	items    []eventlog.Event
	reasons  []string
}

func (f *fakeSpiller) Offer(e eventlog.Event, reason string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.capacity > 0 && len(f.items) >= f.capacity {
		return false
	}
	f.items = append(f.items, e)
	f.reasons = append(f.reasons, reason)
	return true
}

func (f *fakeSpiller) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func testEvent(correlation string) eventlog.Event {
	return eventlog.Event{
		CorrelationID: correlation,
		TraceID:       eventlog.NewTraceID(),
		SpanID:        eventlog.NewSpanID(),
		ProcessName:   "refund",
		EventType:     eventlog.EventTypeStep,
		EventStatus:   eventlog.EventStatusSuccess,
		Summary:       "test",
		Result:        "ok",
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	require.True(t, cond(), "condition not met within %s", timeout)
}

func TestEngineHappyPathSendsAllEvents(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdlePollInterval = 2 * time.Millisecond
	sender := &fakeSender{}
	spiller := &fakeSpiller{capacity: 100}

	e := New(cfg, sender, spiller, Hooks{}, quietLogger())
	e.Start()
	defer e.Shutdown(context.Background())

	for i := 0; i < 50; i++ {
		accepted := e.Log(testEvent("corr-" + string(rune('A'+i%10))))
		require.True(t, accepted)
	}

	waitFor(t, 2*time.Second, func() bool { return sender.count() == 50 })
	snap := e.Metrics()
	assert.Equal(t, int64(50), snap.Queued)
	assert.Equal(t, int64(50), snap.Sent)
	assert.Equal(t, int64(0), snap.Failed)
	assert.Equal(t, int64(0), snap.Spilled)
}

func TestEngineSpillsWhenQueueFull(t *testing.T) {
	cfg := DefaultConfig()
	cfg.QueueCapacity = 1
	sender := &fakeSender{failAll: true}
	spiller := &fakeSpiller{capacity: 100}

	e := New(cfg, sender, spiller, Hooks{}, quietLogger())
	// do not Start(): nothing drains the queue, so the second Log call
	// must find it full and divert to spillover.
	accepted1 := e.Log(testEvent("corr-1"))
	accepted2 := e.Log(testEvent("corr-2"))

	assert.True(t, accepted1)
	assert.False(t, accepted2)
	assert.Equal(t, 1, spiller.count())
	assert.Equal(t, "queue_full", spiller.reasons[0])
}

func TestEngineOpensCircuitAndSpillsAfterRepeatedFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdlePollInterval = 2 * time.Millisecond
	cfg.CircuitBreakerThreshold = 2
	cfg.MaxRetries = 1
	cfg.BatchSize = 1
	cfg.CircuitBreakerResetDelay = time.Hour
	sender := &fakeSender{failAll: true}
	spiller := &fakeSpiller{capacity: 1000}

	var circuitOpened bool
	var mu sync.Mutex
	hooks := Hooks{OnCircuitOpen: func(int) { mu.Lock(); circuitOpened = true; mu.Unlock() }}

	e := New(cfg, sender, spiller, hooks, quietLogger())
	e.Start()
	defer e.Shutdown(context.Background())

	for i := 0; i < 6; i++ {
		e.Log(testEvent("corr-x"))
	}

	waitFor(t, 2*time.Second, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return circuitOpened
	})

	snap := e.Metrics()
	assert.True(t, snap.CircuitOpen)
	assert.Equal(t, int64(0), snap.Sent)
}

func TestShutdownRejectsNewEventsAndDrainsQueue(t *testing.T) {
	cfg := DefaultConfig()
	cfg.IdlePollInterval = 2 * time.Millisecond
	sender := &fakeSender{}
	spiller := &fakeSpiller{capacity: 100}

	e := New(cfg, sender, spiller, Hooks{}, quietLogger())
	e.Start()

	for i := 0; i < 5; i++ {
		e.Log(testEvent("corr-1"))
	}

	e.Shutdown(context.Background())

	accepted := e.Log(testEvent("corr-after-shutdown"))
	assert.False(t, accepted, "log() must reject new events once shutdown has begun")
	assert.Equal(t, int64(0), e.Metrics().QueueDepth)
}
