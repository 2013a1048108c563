// Package ingest implements the async ingestion engine (C4): the
// bounded in-memory queue, batching sender loop, retry scheduler,
// circuit breaker, and spillover bridge that together make log()
// non-blocking while guaranteeing at-least-once delivery.
//
// Grounded structurally on the corpus's worker.Pool (bounded-channel
// dequeue loop with Start/Stop lifecycle) but generalized: the queue
// is owned directly by the engine rather than delegated to an
// external Queue abstraction, since the caller-never-blocks
// requirement needs a single in-process bounded channel, and the
// explicit circuit-breaker state machine has no teacher-side
// precedent (see DESIGN.md).
package ingest

import (
	"context"
	"sync"
	"time"

	"eventlog.dev/service/eventlog"
	"eventlog.dev/service/transportclient"
	"github.com/sirupsen/logrus"
)

// Sender is the C3 capability the engine submits batches through.
type Sender interface {
	SendOne(ctx context.Context, e eventlog.Event) error
	SendBatch(ctx context.Context, events []eventlog.Event) error
}

// Spiller is the C5 capability events are diverted to at the five
// trigger points. Offer must never block.
type Spiller interface {
	Offer(e eventlog.Event, reason string) bool
}

// Hooks are optional user callbacks for observability.
type Hooks struct {
	OnBatchSent    func(n int)
	OnBatchFailed  func(n int, err error)
	OnCircuitOpen  func(failures int)
	OnCircuitClose func()
	OnEventLoss    func(e eventlog.Event, reason string)
}

func (h Hooks) fireBatchSent(n int) {
	if h.OnBatchSent != nil {
		h.OnBatchSent(n)
	}
}

func (h Hooks) fireBatchFailed(n int, err error) {
	if h.OnBatchFailed != nil {
		h.OnBatchFailed(n, err)
	}
}

func (h Hooks) fireCircuitOpen(failures int) {
	if h.OnCircuitOpen != nil {
		h.OnCircuitOpen(failures)
	}
}

func (h Hooks) fireCircuitClose() {
	if h.OnCircuitClose != nil {
		h.OnCircuitClose()
	}
}

func (h Hooks) fireEventLoss(e eventlog.Event, reason string) {
	if h.OnEventLoss != nil {
		h.OnEventLoss(e, reason)
	}
}

// QueuedEvent wraps an event with its retry bookkeeping.
type QueuedEvent struct {
	Event            eventlog.Event
	Attempts         int
	EarliestSendTime time.Time
}

// Engine is the async ingestion engine. A single instance is safe for
// concurrent use from arbitrary caller goroutines.
type Engine struct {
	cfg     Config
	sender  Sender
	spiller Spiller
	hooks   Hooks
	log     *logrus.Logger

	metrics Metrics
	circuit *circuitState

	queue chan QueuedEvent

	shuttingDown chanFlag
	stopCh       chan struct{}
	wg           sync.WaitGroup

	// carry holds items drained this tick but not yet due; they are
	// prepended to the next drain rather than pushed through the
	// bounded channel again, so "rotate to tail" never contends with
	// fresh log() callers for queue capacity.
	carryMu sync.Mutex
	carry   []QueuedEvent
}

// chanFlag is a closeable boolean flag safe for concurrent reads.
type chanFlag struct {
	mu sync.RWMutex
	v  bool
}

func (f *chanFlag) set() { f.mu.Lock(); f.v = true; f.mu.Unlock() }
func (f *chanFlag) get() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.v
}

// New constructs an Engine. Call Start to launch the sender workers.
func New(cfg Config, sender Sender, spiller Spiller, hooks Hooks, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		cfg:     cfg,
		sender:  sender,
		spiller: spiller,
		hooks:   hooks,
		log:     logger,
		circuit: newCircuitState(cfg.CircuitBreakerThreshold, cfg.CircuitBreakerResetDelay),
		queue:   make(chan QueuedEvent, cfg.QueueCapacity),
		stopCh:  make(chan struct{}),
	}
}

// Start launches the configured number of sender workers.
func (e *Engine) Start() {
	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		e.wg.Add(1)
		go e.senderLoop()
	}
}

// Log performs at most one non-blocking enqueue and returns whether
// the event was accepted. The caller never blocks.
func (e *Engine) Log(ev eventlog.Event) bool {
	if e.shuttingDown.get() {
		e.hooks.fireEventLoss(ev, "shutdown_in_progress")
		return false
	}

	qe := QueuedEvent{Event: ev, EarliestSendTime: time.Now()}
	select {
	case e.queue <- qe:
		e.metrics.Queued.Add(1)
		e.metrics.QueueDepth.Add(1)
		return true
	default:
		// trigger point 1: log() when main_queue full
		e.spillOrLose(ev, "queue_full")
		return false
	}
}

// Metrics returns a point-in-time snapshot of the engine's counters.
func (e *Engine) Metrics() Snapshot {
	return e.metrics.Snapshot()
}

// Shutdown is a two-phase cooperative cancellation: new enqueues are
// rejected immediately; the queue is drained for up to drain_timeout,
// then anything remaining is flushed to spillover and workers stop.
func (e *Engine) Shutdown(ctx context.Context) {
	e.shuttingDown.set()

	deadline := time.Now().Add(e.cfg.DrainTimeout)
	for time.Now().Before(deadline) && e.metrics.QueueDepth.Load() > 0 {
		select {
		case <-ctx.Done():
			goto forceFlush
		case <-time.After(10 * time.Millisecond):
		}
	}

forceFlush:
	close(e.stopCh)
	e.wg.Wait()

	// flush anything left in the channel and carry buffer
	e.carryMu.Lock()
	leftover := e.carry
	e.carry = nil
	e.carryMu.Unlock()

	for _, qe := range leftover {
		e.spillOrLose(qe.Event, "shutdown_pending_retry")
		e.metrics.QueueDepth.Add(-1)
	}
drainRemaining:
	for {
		select {
		case qe := <-e.queue:
			e.spillOrLose(qe.Event, "shutdown_pending_retry")
			e.metrics.QueueDepth.Add(-1)
		default:
			break drainRemaining
		}
	}
}

// spillOrLose offers ev to the spillover writer. If the spiller
// rejects the offer (channel full, or none configured), the
// caller-visible reason is always spillover_queue_full regardless of
// which of the five trigger points caused the offer.
func (e *Engine) spillOrLose(ev eventlog.Event, reason string) {
	if e.spiller == nil || !e.spiller.Offer(ev, reason) {
		e.metrics.Failed.Add(1)
		e.hooks.fireEventLoss(ev, "spillover_queue_full")
		return
	}
	e.metrics.Spilled.Add(1)
}

func (e *Engine) senderLoop() {
	defer e.wg.Done()
	for {
		select {
		case <-e.stopCh:
			return
		default:
		}
		e.tick()
	}
}

func (e *Engine) tick() {
	batch := e.drainBatch()
	if len(batch) == 0 {
		return
	}

	now := time.Now()
	if e.circuit.isOpen(now) {
		// trigger point 3: circuit open, items in flight
		for _, qe := range batch {
			e.spillOrLose(qe.Event, "circuit_open")
			e.metrics.QueueDepth.Add(-1)
		}
		return
	}
	if open, _ := e.circuit.snapshot(); !open {
		e.metrics.CircuitOpen.Store(0)
	}

	events := make([]eventlog.Event, len(batch))
	for i, qe := range batch {
		events[i] = qe.Event
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	var err error
	if len(events) == 1 {
		err = e.sender.SendOne(ctx, events[0])
	} else {
		err = e.sender.SendBatch(ctx, events)
	}
	cancel()

	if err == nil {
		n := int64(len(batch))
		e.metrics.Sent.Add(n)
		e.metrics.QueueDepth.Add(-n)
		if e.circuit.recordSuccess() {
			e.metrics.CircuitOpen.Store(0)
			e.hooks.fireCircuitClose()
		}
		e.hooks.fireBatchSent(len(batch))
		return
	}

	e.hooks.fireBatchFailed(len(batch), err)
	tripped, failures := e.circuit.recordFailure(time.Now())
	if tripped {
		e.metrics.CircuitOpen.Store(1)
		e.hooks.fireCircuitOpen(failures)
	}

	for _, qe := range batch {
		qe.Attempts++
		if qe.Attempts < e.cfg.MaxRetries {
			qe.EarliestSendTime = time.Now().Add(transportclient.Backoff(qe.Attempts, e.cfg.BaseRetryDelay, e.cfg.MaxRetryDelay))
			select {
			case e.queue <- qe:
				// stays in queue_depth accounting; no change needed
			default:
				// trigger point 4: retry re-enqueue failed
				e.spillOrLose(qe.Event, "retry_requeue_failed")
				e.metrics.QueueDepth.Add(-1)
			}
		} else {
			// trigger point 2: max_retries exhausted
			e.spillOrLose(qe.Event, "retries_exhausted")
			e.metrics.QueueDepth.Add(-1)
		}
	}
}

// drainBatch dequeues up to batch_size due items. Items not yet due
// are kept in the carry buffer for the next tick rather than being
// pushed back through the bounded channel, satisfying "rotated to the
// tail; they do NOT block other items" without contending with log().
func (e *Engine) drainBatch() []QueuedEvent {
	e.carryMu.Lock()
	batch := e.carry
	e.carry = nil
	e.carryMu.Unlock()

	if len(batch) == 0 {
		select {
		case qe := <-e.queue:
			batch = append(batch, qe)
		case <-time.After(e.cfg.IdlePollInterval):
			return nil
		case <-e.stopCh:
			return nil
		}
	}

	for len(batch) < e.cfg.BatchSize {
		select {
		case qe := <-e.queue:
			batch = append(batch, qe)
		default:
			goto partition
		}
	}

partition:
	now := time.Now()
	due := batch[:0:0]
	var notDue []QueuedEvent
	for _, qe := range batch {
		if !qe.EarliestSendTime.After(now) {
			due = append(due, qe)
		} else {
			notDue = append(notDue, qe)
		}
	}
	if len(notDue) > 0 {
		e.carryMu.Lock()
		e.carry = append(e.carry, notDue...)
		e.carryMu.Unlock()
	}
	return due
}
