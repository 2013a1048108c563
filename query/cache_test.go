package query

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*DashboardCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	cache, err := NewDashboardCache(context.Background(), CacheConfig{
		RedisURL: "redis://" + mr.Addr() + "/0",
		TTL:      time.Minute,
	})
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })

	return cache, mr
}

func TestDashboardCacheMissReturnsFalse(t *testing.T) {
	cache, _ := newTestCache(t)

	_, ok := cache.Get(context.Background(), "2026-01-01/2026-01-31")
	assert.False(t, ok)
}

func TestDashboardCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)

	stats := DashboardStats{
		TotalTraces:        10,
		TotalAccounts:      3,
		TotalEvents:        42,
		TracesWithFailures: 1,
		SystemNames:        []string{"billing", "payments"},
		SuccessRate:        90.0,
	}

	require.NoError(t, cache.Set(context.Background(), "key-a", stats))

	got, ok := cache.Get(context.Background(), "key-a")
	require.True(t, ok)
	assert.Equal(t, stats, got)
}

func TestDashboardCacheExpiresAfterTTL(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cache, err := NewDashboardCache(context.Background(), CacheConfig{
		RedisURL: "redis://" + mr.Addr() + "/0",
		TTL:      time.Second,
	})
	require.NoError(t, err)
	defer cache.Close()

	require.NoError(t, cache.Set(context.Background(), "key-b", DashboardStats{TotalTraces: 1}))
	mr.FastForward(2 * time.Second)

	_, ok := cache.Get(context.Background(), "key-b")
	assert.False(t, ok)
}
