package utils

import (
	"context"       // Context for Redis operations
	"encoding/json" // JSON encoding/decoding
	"errors"        // Error inspection
	"time"          // Time durations

	"github.com/redis/go-redis/v9" // Redis client
)

// Cache stores JSON encoded values in Redis under a common key prefix.
// Every entry has a version counter; a fill only lands if the version it was
// computed against is still current.
type Cache struct {
	rdb    redis.UniversalClient // Redis client, Watch needs more than Cmdable
	prefix string                // Prefix prepended to every key
	ttl    time.Duration         // Expiry of every entry
}

// NewCache returns a cache writing entries with the given prefix and TTL
func NewCache(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Key returns the full Redis key for name
func (c *Cache) Key(name string) string {
	return c.prefix + name
}

// VersionKey returns the Redis key holding the version counter of name
func (c *Cache) VersionKey(name string) string {
	return c.Key(name) + ":version"
}

// Get retrieves a value from Redis and unmarshals it into dest
func (c *Cache) Get(ctx context.Context, name string, dest any) (bool, error) {
	val, err := c.rdb.Get(ctx, c.Key(name)).Bytes() // Get value from Redis
	if errors.Is(err, redis.Nil) {
		return false, nil // Key does not exist
	} else if err != nil {
		return false, err // Other Redis error
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err // Corrupt entry, treat as a miss
	}
	return true, nil
}

// Version returns the current version of name, zero if it was never bumped
func (c *Cache) Version(ctx context.Context, name string) (int64, error) {
	return readVersion(ctx, c.rdb, c.VersionKey(name))
}

// SetIfVersion stores value only while the version of name still equals version.
// It reports whether the value was written.
func (c *Cache) SetIfVersion(ctx context.Context, name string, version int64, value any) (bool, error) {
	b, err := json.Marshal(value) // Marshal value to JSON
	if err != nil {
		return false, err
	}
	versionKey := c.VersionKey(name)
	stored := false
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readVersion(ctx, tx, versionKey) // Re-read under WATCH
		if err != nil {
			return err
		}
		if current != version {
			return nil // Invalidated since the value was computed
		}
		// EXEC fails if the version key changes after WATCH
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, c.Key(name), b, c.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		stored = true
		return nil
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil // Lost the race against an invalidation
	}
	if err != nil {
		return false, err
	}
	return stored, nil
}

// Invalidate bumps the version of name and drops its entry
func (c *Cache) Invalidate(ctx context.Context, name string) error {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, c.VersionKey(name)) // Pending fills see a new version
		pipe.Del(ctx, c.Key(name))         // Drop the stale entry
		return nil
	})
	return err
}

// getter is the part of a client or a watched transaction readVersion needs
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// readVersion reads a version counter, treating a missing key as zero
func readVersion(ctx context.Context, rdb getter, key string) (int64, error) {
	v, err := rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil // Never invalidated
	}
	return v, err
}
