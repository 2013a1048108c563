package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEventLogConfigAppliesDefaults(t *testing.T) {
	cfg, err := LoadEventLogConfig("EVENTLOG_TEST_DEFAULTS")
	require.NoError(t, err)

	assert.Equal(t, 10_000, cfg.Ingest.QueueCapacity)
	assert.Equal(t, 25, cfg.Ingest.BatchSize)
	assert.Equal(t, 3, cfg.Ingest.MaxRetries)
	assert.Equal(t, 5, cfg.Ingest.CircuitBreakerThreshold)
	assert.Equal(t, 32_768, cfg.MaxPayloadSizeBytes)
	assert.False(t, cfg.FulltextEnabled)
	assert.Nil(t, cfg.Spillover)
}

func TestLoadEventLogConfigEnablesSpilloverWhenPathSet(t *testing.T) {
	t.Setenv("EVENTLOG_TEST_SPILL_SPILLOVER_PATH", "/tmp/eventlog-spill")

	cfg, err := LoadEventLogConfig("EVENTLOG_TEST_SPILL")
	require.NoError(t, err)
	require.NotNil(t, cfg.Spillover)
	assert.Equal(t, "/tmp/eventlog-spill", cfg.Spillover.Dir)
}

func TestLoadEventLogConfigRejectsNonPositiveQueueCapacity(t *testing.T) {
	t.Setenv("EVENTLOG_TEST_BADQ_QUEUE_CAPACITY", "0")

	_, err := LoadEventLogConfig("EVENTLOG_TEST_BADQ")
	assert.Error(t, err)
}
