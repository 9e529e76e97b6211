package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"arbscan/internal/market"
)

// Redis caches rate tables in Redis hashes with a server-side TTL, so cached
// rates survive restarts and are shared between replicas. Redis errors
// degrade to cache misses; they never fail an aggregation.
type Redis struct {
	rdb *redis.Client
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb}
}

func redisKey(key string) string {
	// hash tag keeps the entry on one cluster slot
	return fmt.Sprintf("rates_cache:{%s}", key)
}

// Get returns the table cached under key, if any.
func (r *Redis) Get(ctx context.Context, key string) (*market.RateTable, bool) {
	raw, err := r.rdb.HGet(ctx, redisKey(key), "table").Result()
	if err != nil || raw == "" {
		return nil, false
	}
	table := market.NewRateTable()
	if err := json.Unmarshal([]byte(raw), table); err != nil {
		return nil, false
	}
	return table, true
}

// Set stores table under key with ttl. Failures are ignored.
func (r *Redis) Set(ctx context.Context, key string, table *market.RateTable, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	raw, err := json.Marshal(table)
	if err != nil {
		return
	}
	pipe := r.rdb.Pipeline()
	pipe.HSet(ctx, redisKey(key), map[string]any{
		"table":     string(raw),
		"stored_at": time.Now().UTC().Format(time.RFC3339),
	})
	pipe.Expire(ctx, redisKey(key), ttl)
	_, _ = pipe.Exec(ctx)
}
