package spillover

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"eventlog.dev/service/eventlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	mu      sync.Mutex
	failAll bool
	sent    []eventlog.Event
}

func (f *fakeSender) SendOne(ctx context.Context, e eventlog.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return assert.AnError
	}
	f.sent = append(f.sent, e)
	return nil
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestReplayerMovesActiveToReplayAndResubmits(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	w, err := NewWriter(cfg, quietLogger())
	require.NoError(t, err)
	w.Start()
	for i := 0; i < 3; i++ {
		w.Offer(testEvent("corr-1"), "queue_full")
	}
	require.Eventually(t, func() bool { return countActiveLines(t, dir) == 3 }, time.Second, 5*time.Millisecond)
	w.Stop()

	sender := &fakeSender{}
	r := NewReplayer(cfg, w, sender, quietLogger())
	r.tick()

	assert.Equal(t, 3, sender.count())
	assert.Equal(t, int64(3), r.Replayed())
	_, err = os.Stat(filepath.Join(dir, replayFileName))
	assert.True(t, os.IsNotExist(err), "replay file should be removed once fully consumed")
}

func TestReplayerPreservesUnsentLinesOnFailure(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	w, err := NewWriter(cfg, quietLogger())
	require.NoError(t, err)
	w.Start()
	for i := 0; i < 3; i++ {
		w.Offer(testEvent("corr-1"), "queue_full")
	}
	require.Eventually(t, func() bool { return countActiveLines(t, dir) == 3 }, time.Second, 5*time.Millisecond)
	w.Stop()

	sender := &fakeSender{failAll: true}
	r := NewReplayer(cfg, w, sender, quietLogger())
	r.tick()

	assert.Equal(t, 0, sender.count())
	replayBytes, err := os.ReadFile(filepath.Join(dir, replayFileName))
	require.NoError(t, err)
	assert.NotEmpty(t, replayBytes, "unsent lines must remain for the next tick")
}

func TestReplayerDropsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, activeFileName), []byte("not json\n{\"correlation_id\":\"c1\",\"trace_id\":\"t1\",\"span_id\":\"s1\",\"process_name\":\"p\",\"event_type\":\"STEP\",\"event_status\":\"SUCCESS\",\"summary\":\"s\",\"result\":\"r\"}\n"), 0o644))

	w, err := NewWriter(cfg, quietLogger())
	require.NoError(t, err)

	sender := &fakeSender{}
	r := NewReplayer(cfg, w, sender, quietLogger())
	r.tick()

	assert.Equal(t, 1, sender.count(), "corrupt line is dropped, well-formed line still replays")
	_, err = os.Stat(filepath.Join(dir, replayFileName))
	assert.True(t, os.IsNotExist(err))
}

func TestReplayerSkipsWhenCircuitOpen(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig(dir)
	w, err := NewWriter(cfg, quietLogger())
	require.NoError(t, err)

	sender := &fakeSender{}
	r := NewReplayer(cfg, w, sender, quietLogger())
	r.circuit.open = true
	r.circuit.openedAt = time.Now()
	r.circuit.resetDelay = time.Hour

	r.tick()
	assert.Equal(t, 0, sender.count())
}
