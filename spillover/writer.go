package spillover

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"eventlog.dev/service/eventlog"
	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
)

// Writer is the spill_to_disk worker (§4.5.1). Offer enqueues an event
// onto an internal channel and never blocks; a background goroutine
// drains the channel and appends to the active file under the cap
// checks. Construct with NewWriter and call Start before offering.
type Writer struct {
	cfg Config
	log *logrus.Logger

	spillCh chan offer

	mu         sync.Mutex
	activeSize int64
	activeN    int

	stopCh chan struct{}
	wg     sync.WaitGroup

	dropped atomic.Int64
}

type offer struct {
	event  eventlog.Event
	reason string
}

// NewWriter opens (creating if absent) the spillover directory and
// recovers the active file's line/byte counters, per §4.5.1 "On
// startup, the writer recovers counters by counting non-blank lines".
func NewWriter(cfg Config, logger *logrus.Logger) (*Writer, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, err
	}

	w := &Writer{
		cfg:     cfg,
		log:     logger,
		spillCh: make(chan offer, 1024),
		stopCh:  make(chan struct{}),
	}

	n, size, err := countLines(w.activePath())
	if err != nil {
		return nil, err
	}
	w.activeN = n
	w.activeSize = size
	return w, nil
}

func (w *Writer) activePath() string { return filepath.Join(w.cfg.Dir, activeFileName) }
func (w *Writer) replayPath() string { return filepath.Join(w.cfg.Dir, replayFileName) }

// Start launches the drain goroutine. Call Stop to flush and exit.
func (w *Writer) Start() {
	w.wg.Add(1)
	go w.drainLoop()
}

// Stop signals the drain goroutine to exit after flushing pending offers.
func (w *Writer) Stop() {
	close(w.stopCh)
	w.wg.Wait()
}

// Offer enqueues ev for spilling. Satisfies ingest.Spiller. Never
// blocks: if the internal channel is saturated the offer is rejected,
// Offer returns false, and the drop is counted in Dropped. An accepted
// offer that later exceeds the on-disk caps is logged and discarded,
// not counted.
func (w *Writer) Offer(ev eventlog.Event, reason string) bool {
	select {
	case w.spillCh <- offer{event: ev, reason: reason}:
		return true
	default:
		w.dropped.Add(1)
		return false
	}
}

// Dropped returns the number of offers rejected because the internal
// channel was saturated (distinct from on-disk cap rejections, which
// are logged individually).
func (w *Writer) Dropped() int64 { return w.dropped.Load() }

func (w *Writer) drainLoop() {
	defer w.wg.Done()
	for {
		select {
		case o := <-w.spillCh:
			w.write(o)
		case <-w.stopCh:
			// flush whatever is already queued before exiting
			for {
				select {
				case o := <-w.spillCh:
					w.write(o)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) write(o offer) {
	line, err := json.Marshal(o.event)
	if err != nil {
		w.log.WithError(err).Error("spillover: failed to marshal event")
		return
	}
	lineLen := int64(len(line) + 1)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.activeN+1 > w.cfg.MaxSpillEvents {
		w.log.WithFields(logrus.Fields{
			"reason": "spillover_max_events",
			"cap":    w.cfg.MaxSpillEvents,
		}).Warn("spillover: dropping event, active file at capacity")
		return
	}
	if w.activeSize+lineLen > w.cfg.MaxSpillBytes {
		w.log.WithFields(logrus.Fields{
			"reason": "spillover_max_size",
			"size":   humanize.Bytes(uint64(w.activeSize)),
			"cap":    humanize.Bytes(uint64(w.cfg.MaxSpillBytes)),
		}).Warn("spillover: dropping event, active file at byte cap")
		return
	}

	f, err := os.OpenFile(w.activePath(), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		w.log.WithError(err).Error("spillover: failed to open active file")
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		w.log.WithError(err).Error("spillover: failed to append to active file")
		return
	}

	w.activeN++
	w.activeSize += lineLen
}

// rotateToReplay atomically moves the active file to the replay path
// and zeroes the active counters, iff no replay file already exists
// and the active file is non-empty. Returns whether a rotation happened.
func (w *Writer) rotateToReplay() (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := os.Stat(w.replayPath()); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, err
	}

	if w.activeN == 0 {
		return false, nil
	}

	if err := os.Rename(w.activePath(), w.replayPath()); err != nil {
		return false, err
	}
	w.activeN = 0
	w.activeSize = 0
	return true, nil
}

// countLines reports the number of non-blank lines and the total byte
// size of path. A missing file counts as empty, not an error.
func countLines(path string) (n int, size int64, err error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, 0, err
	}
	size = info.Size()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) > 0 {
			n++
		}
	}
	if err := scanner.Err(); err != nil {
		return 0, 0, err
	}
	return n, size, nil
}
