package config

import (
	"fmt"
	"time"

	"eventlog.dev/service/ingest"
	"eventlog.dev/service/spillover"
)

// EventLogConfig is the full configuration surface for the eventlogd
// server and eventlogctl producer, assembled from the generic env
// helpers above. Every key and default matches the configuration table.
type EventLogConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	CORS     CORSConfig

	Ingest    ingest.Config
	Spillover *spillover.Config // nil when SpilloverPath is unset

	MaxPayloadSizeBytes int
	FulltextEnabled     bool

	RedisURL string
}

// LoadEventLogConfig reads every §6.4 key from the environment, applying
// the documented defaults, under the given prefix (e.g. "EVENTLOG").
func LoadEventLogConfig(prefix string) (*EventLogConfig, error) {
	env := NewEnvConfig(prefix)

	dbEnv := NewEnvConfig(prefix + "_DB")
	cfg := &EventLogConfig{
		Server: LoadServerConfig(prefix),
		Database: DatabaseConfig{
			URL:            dbEnv.GetString("URL", "postgres://localhost:5432/eventlog"),
			Database:       dbEnv.GetString("DATABASE", "eventlog"),
			Username:       dbEnv.GetString("USERNAME", ""),
			Password:       dbEnv.GetString("PASSWORD", ""),
			MaxConnections: dbEnv.GetInt("MAX_CONNECTIONS", 10),
			Timeout:        dbEnv.GetDuration("TIMEOUT", 30*time.Second),
		},
		Auth: LoadAuthConfig(prefix + "_AUTH"),
		CORS: LoadCORSConfig(prefix + "_CORS"),

		Ingest: ingest.Config{
			QueueCapacity:            env.GetInt("QUEUE_CAPACITY", 10_000),
			BatchSize:                env.GetInt("BATCH_SIZE", 25),
			MaxRetries:               env.GetInt("MAX_RETRIES", 3),
			BaseRetryDelay:           env.GetDuration("BASE_RETRY_DELAY", 1*time.Second),
			MaxRetryDelay:            env.GetDuration("MAX_RETRY_DELAY", 30*time.Second),
			CircuitBreakerThreshold:  env.GetInt("CIRCUIT_BREAKER_THRESHOLD", 5),
			CircuitBreakerResetDelay: env.GetDuration("CIRCUIT_BREAKER_RESET", 30*time.Second),
			DrainTimeout:             env.GetDuration("DRAIN_TIMEOUT", 10*time.Second),
			IdlePollInterval:         50 * time.Millisecond,
			Workers:                  1,
		},

		MaxPayloadSizeBytes: env.GetInt("MAX_PAYLOAD_SIZE_BYTES", 32_768),
		FulltextEnabled:     env.GetBool("FULLTEXT_ENABLED", false),
		RedisURL:            env.GetString("REDIS_URL", ""),
	}

	if path := env.GetString("SPILLOVER_PATH", ""); path != "" {
		spillCfg := spillover.DefaultConfig(path)
		spillCfg.MaxSpillEvents = env.GetInt("MAX_SPILL_EVENTS", 10_000)
		spillCfg.MaxSpillBytes = int64(env.GetInt("MAX_SPILL_BYTES", 50*1024*1024))
		spillCfg.ReplayInterval = env.GetDuration("REPLAY_INTERVAL", 10*time.Second)
		cfg.Spillover = &spillCfg
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *EventLogConfig) validate() error {
	v := NewValidator()
	v.RequirePositiveInt("Server.Port", c.Server.Port)
	v.RequireString("Database.URL", c.Database.URL)
	v.RequirePositiveInt("Ingest.QueueCapacity", c.Ingest.QueueCapacity)
	v.RequirePositiveInt("Ingest.BatchSize", c.Ingest.BatchSize)
	v.RequirePositiveInt("MaxPayloadSizeBytes", c.MaxPayloadSizeBytes)
	if err := v.Validate(); err != nil {
		return fmt.Errorf("eventlog config: %w", err)
	}
	return nil
}
