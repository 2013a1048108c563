// Package spillover implements the disk-backed overflow path (C5): a
// writer that appends events the ingestion engine could not send to a
// newline-delimited JSON file, and a scheduled replayer that resubmits
// them through the transport client once the circuit allows it.
//
// Grounded structurally on the corpus's redis.Queue (Config struct with
// env-fallback defaults, NewX(ctx, Config) constructor, mutex-guarded
// state) but the transport is local disk rather than Redis, since the
// whole point of spillover is surviving the loss of any network-backed
// dependency, including a queue broker.
package spillover

import "time"

// Config controls file locations, caps, and the replay cadence.
type Config struct {
	// Dir is the directory holding the active and replay files.
	Dir string

	// MaxSpillEvents caps the number of lines the active file may hold.
	MaxSpillEvents int

	// MaxSpillBytes caps the active file's size in bytes.
	MaxSpillBytes int64

	// ReplayInterval is how often the replay worker wakes up.
	ReplayInterval time.Duration
}

const (
	activeFileName = "spillover.jsonl"
	replayFileName = "spillover.replay.jsonl"

	defaultMaxSpillEvents = 10000
	defaultMaxSpillBytes  = 50 * 1024 * 1024
	defaultReplayInterval = 10 * time.Second
)

// DefaultConfig returns the §6.4 defaults rooted at dir.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:            dir,
		MaxSpillEvents: defaultMaxSpillEvents,
		MaxSpillBytes:  defaultMaxSpillBytes,
		ReplayInterval: defaultReplayInterval,
	}
}
