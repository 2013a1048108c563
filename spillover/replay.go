package spillover

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"eventlog.dev/service/eventlog"
	"github.com/sirupsen/logrus"
)

// Sender is the capability the replayer resubmits spilled events
// through. transportclient.Client.SendOne satisfies it.
type Sender interface {
	SendOne(ctx context.Context, e eventlog.Event) error
}

// replayCircuit is a small closed/open gate local to the replay
// worker. It deliberately does not share state with the ingestion
// engine's circuit breaker (ingest.circuitState): replay and live
// sends are independent failure domains.
type replayCircuit struct {
	mu         sync.Mutex
	open       bool
	openedAt   time.Time
	threshold  int
	failures   int
	resetDelay time.Duration
}

func (c *replayCircuit) checkAndMaybeReset(now time.Time) (skip bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return false
	}
	if now.Sub(c.openedAt) < c.resetDelay {
		return true
	}
	c.open = false
	c.failures = 0
	return false
}

func (c *replayCircuit) recordFailure(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
	if !c.open && c.failures >= c.threshold {
		c.open = true
		c.openedAt = now
	}
}

func (c *replayCircuit) recordSuccess() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = 0
	c.open = false
}

// Replayer runs the scheduled replay worker described in §4.5.2.
type Replayer struct {
	cfg    Config
	writer *Writer
	sender Sender
	log    *logrus.Logger

	circuit *replayCircuit
	replayed atomic.Int64

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewReplayer wires a replayer to the writer whose active file it
// rotates and the sender it resubmits through. The replay circuit
// opens after 3 consecutive failures and stays open for 30s; neither
// value is configurable.
func NewReplayer(cfg Config, writer *Writer, sender Sender, logger *logrus.Logger) *Replayer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Replayer{
		cfg:    cfg,
		writer: writer,
		sender: sender,
		log:    logger,
		circuit: &replayCircuit{
			threshold:  3,
			resetDelay: 30 * time.Second,
		},
		stopCh: make(chan struct{}),
	}
}

// Start launches the periodic replay loop.
func (r *Replayer) Start() {
	r.wg.Add(1)
	go r.loop()
}

// Stop halts the replay loop.
func (r *Replayer) Stop() {
	close(r.stopCh)
	r.wg.Wait()
}

// Replayed returns the total count of events successfully resubmitted.
func (r *Replayer) Replayed() int64 { return r.replayed.Load() }

func (r *Replayer) loop() {
	defer r.wg.Done()
	ticker := time.NewTicker(r.cfg.ReplayInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			r.tick()
		}
	}
}

func (r *Replayer) tick() {
	now := time.Now()
	if r.circuit.checkAndMaybeReset(now) {
		return
	}

	if _, err := r.writer.rotateToReplay(); err != nil {
		r.log.WithError(err).Error("spillover: failed to rotate active file to replay")
		return
	}

	replayPath := r.writer.replayPath()
	f, err := os.Open(replayPath)
	if os.IsNotExist(err) {
		return
	}
	if err != nil {
		r.log.WithError(err).Error("spillover: failed to open replay file")
		return
	}

	var remaining []string
	stopped := false

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(line) == 0 {
			continue
		}
		if stopped {
			remaining = append(remaining, line)
			continue
		}

		var ev eventlog.Event
		if err := json.Unmarshal([]byte(line), &ev); err != nil {
			// corrupt line: drop and log, per §4.5.3
			r.log.WithError(err).Warn("spillover: dropping corrupt replay line")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		sendErr := r.sender.SendOne(ctx, ev)
		cancel()

		if sendErr != nil {
			r.log.WithError(sendErr).Warn("spillover: replay submission failed, pausing this cycle")
			r.circuit.recordFailure(time.Now())
			stopped = true
			remaining = append(remaining, line)
			continue
		}

		r.circuit.recordSuccess()
		r.replayed.Add(1)
	}
	scanErr := scanner.Err()
	f.Close()
	if scanErr != nil {
		r.log.WithError(scanErr).Error("spillover: error scanning replay file")
		return
	}

	if len(remaining) == 0 {
		if err := os.Remove(replayPath); err != nil && !os.IsNotExist(err) {
			r.log.WithError(err).Error("spillover: failed to remove exhausted replay file")
		}
		return
	}

	if err := rewriteReplayFile(replayPath, remaining); err != nil {
		r.log.WithError(err).Error("spillover: failed to rewrite replay file with unsent lines")
	}
}

// rewriteReplayFile writes lines to a temp file in the same directory
// then atomically renames over path, per §4.5.2's "rewriting the
// replay file (to a temp file, then atomic move)".
func rewriteReplayFile(path string, lines []string) error {
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line); err != nil {
			f.Close()
			return err
		}
		if _, err := w.WriteString("\n"); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
