package ingest

import "time"

// Config carries the async ingestion engine's tunables, defaults per
// the configuration table.
type Config struct {
	QueueCapacity            int
	BatchSize                int
	MaxRetries               int
	BaseRetryDelay           time.Duration
	MaxRetryDelay            time.Duration
	CircuitBreakerThreshold  int
	CircuitBreakerResetDelay time.Duration
	DrainTimeout             time.Duration
	IdlePollInterval         time.Duration
	Workers                  int
}

func DefaultConfig() Config {
	return Config{
		QueueCapacity:            10_000,
		BatchSize:                25,
		MaxRetries:               3,
		BaseRetryDelay:           1 * time.Second,
		MaxRetryDelay:            30 * time.Second,
		CircuitBreakerThreshold:  5,
		CircuitBreakerResetDelay: 30 * time.Second,
		DrainTimeout:             10 * time.Second,
		IdlePollInterval:         50 * time.Millisecond,
		Workers:                  1,
	}
}
