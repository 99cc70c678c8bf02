package identity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/contacthub/internal/logging"
	"github.com/redis/go-redis/v9"
)

// Cache stores identity snapshots in Redis with a fixed TTL, keyed by
// username. Store errors degrade to cache misses: an unreachable Redis slows
// requests down to directory lookups but never fails them. Concurrent
// populations of the same key race benignly (last write wins).
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger logging.Logger
}

// NewCache builds a Cache over the given Redis client. The client is shared
// and safe for concurrent use; its lifecycle belongs to the caller.
func NewCache(client *redis.Client, ttl time.Duration, logger logging.Logger) *Cache {
	return &Cache{client: client, ttl: ttl, logger: logger}
}

func cacheKey(username string) string {
	return "user:" + username
}

// Get returns the cached snapshot for username, or ok=false on a miss.
// Read errors and undecodable payloads count as misses.
func (c *Cache) Get(ctx context.Context, username string) (*Snapshot, bool) {
	val, err := c.client.Get(ctx, cacheKey(username)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn(ctx, "identity cache read failed", "username", username, "error", err)
		}
		return nil, false
	}

	snap := &Snapshot{}
	if err := json.Unmarshal([]byte(val), snap); err != nil {
		c.logger.Warn(ctx, "identity cache entry undecodable", "username", username, "error", err)
		return nil, false
	}
	return snap, true
}

// Put unconditionally overwrites the cache entry for username. Write
// failures are logged and swallowed; the snapshot is already in hand and the
// request must not fail because caching did.
func (c *Cache) Put(ctx context.Context, username string, snap *Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		c.logger.Error(ctx, "identity snapshot marshal failed", "username", username, "error", err)
		return
	}
	if err := c.client.Set(ctx, cacheKey(username), data, c.ttl).Err(); err != nil {
		c.logger.Warn(ctx, "identity cache write failed", "username", username, "error", err)
	}
}
