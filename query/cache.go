package query

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheConfig configures the dashboard read-through cache.
type CacheConfig struct {
	RedisURL  string        // defaults to EVENTLOG_REDIS_URL or redis://localhost:6379/0
	KeyPrefix string        // defaults to "eventlog:dashboard:"
	TTL       time.Duration // defaults to 30s
}

// DashboardCache is a short-TTL read-through cache in front of the
// dashboard-stats aggregate, which is the one query contract expensive
// enough to warrant caching.
type DashboardCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewDashboardCache connects to Redis and returns a DashboardCache.
func NewDashboardCache(ctx context.Context, cfg CacheConfig) (*DashboardCache, error) {
	redisURL := cfg.RedisURL
	if redisURL == "" {
		redisURL = os.Getenv("EVENTLOG_REDIS_URL")
	}
	if redisURL == "" {
		redisURL = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "eventlog:dashboard:"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}

	return &DashboardCache{client: client, prefix: prefix, ttl: ttl}, nil
}

// Close closes the Redis connection.
func (c *DashboardCache) Close() error { return c.client.Close() }

// Get looks up a cached DashboardStats for key, returning ok=false on
// miss (including a cold Redis).
func (c *DashboardCache) Get(ctx context.Context, key string) (stats DashboardStats, ok bool) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		return DashboardStats{}, false
	}
	if err := json.Unmarshal(raw, &stats); err != nil {
		return DashboardStats{}, false
	}
	return stats, true
}

// Set stores stats under key with the cache's configured TTL.
func (c *DashboardCache) Set(ctx context.Context, key string, stats DashboardStats) error {
	raw, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to marshal dashboard stats: %w", err)
	}
	return c.client.SetEx(ctx, c.prefix+key, raw, c.ttl).Err()
}
