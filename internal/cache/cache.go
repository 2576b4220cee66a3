// Package cache provides the gateway's 2-tier resource cache: L1 in-memory
// plus an optional L2 Redis. Each resource kind lives in its own namespace so
// TTLs can be tuned and namespaces invalidated independently. Entries always
// hold unfiltered shaped records; content filtering happens at read time.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Namespace isolates one resource kind's key space.
type Namespace string

const (
	NamespaceSearch              Namespace = "search"
	NamespaceCategories          Namespace = "categories"
	NamespaceVideo               Namespace = "video"
	NamespaceVideoFull           Namespace = "video-full"
	NamespaceCategoryVideos      Namespace = "category-videos"
	NamespaceChannelVideos       Namespace = "channel-videos"
	NamespacePlaylistVideos      Namespace = "playlist-videos"
	NamespaceComments            Namespace = "comments"
	NamespaceTrending            Namespace = "trending"
	NamespaceCategoriesWithVideo Namespace = "categories-with-videos"
)

// l1PromoteTTL caps how long an L2 hit stays in memory. The authoritative
// expiry lives in Redis; L1 is just a hot front.
const l1PromoteTTL = 10 * time.Minute

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Cache is the tiered store. A nil Redis client degrades it to L1 only.
type Cache struct {
	l1       sync.Map // full key -> *entry
	rdb      *redis.Client
	logger   *slog.Logger
	stopChan chan struct{}
}

// New connects the L2 tier when redisURL is non-empty and starts the L1
// cleanup loop. An unreachable Redis is logged and skipped, not fatal.
func New(redisURL string, logger *slog.Logger) *Cache {
	c := &Cache{
		logger:   logger.With("component", "cache"),
		stopChan: make(chan struct{}),
	}

	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			c.logger.Warn("Invalid redis URL, L2 tier disabled", "error", err)
		} else {
			rdb := redis.NewClient(opts)
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			if err := rdb.Ping(ctx).Err(); err != nil {
				c.logger.Warn("Redis unreachable, L2 tier disabled", "error", err)
			} else {
				c.rdb = rdb
				c.logger.Info("L2 redis tier connected", "addr", opts.Addr)
			}
		}
	}

	go c.cleanupLoop()
	return c
}

// Key builds the namespaced cache key.
func Key(ns Namespace, key string) string {
	return fmt.Sprintf("yt:%s:%s", ns, strings.ToLower(strings.TrimSpace(key)))
}

// Get loads an entry into out. The second value reports whether a live entry
// was found in either tier.
func (c *Cache) Get(ctx context.Context, ns Namespace, key string, out any) (bool, error) {
	fullKey := Key(ns, key)

	if val, ok := c.l1.Load(fullKey); ok {
		e := val.(*entry)
		if time.Now().Before(e.expiresAt) {
			if err := json.Unmarshal(e.data, out); err == nil {
				return true, nil
			}
		}
		c.l1.Delete(fullKey) // expired or corrupt
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, fullKey).Bytes()
		if err == nil {
			if err := json.Unmarshal(data, out); err == nil {
				c.l1.Store(fullKey, &entry{data: data, expiresAt: time.Now().Add(l1PromoteTTL)})
				return true, nil
			}
		} else if err != redis.Nil {
			c.logger.Warn("L2 read failed", "key", fullKey, "error", err)
		}
	}

	return false, nil
}

// Set stores value under the namespace with a TTL of ttlDays days. The TTL is
// fixed at write time; later configuration changes do not touch entries
// already written.
func (c *Cache) Set(ctx context.Context, ns Namespace, key string, value any, ttlDays int) error {
	if ttlDays <= 0 {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	fullKey := Key(ns, key)
	ttl := time.Duration(ttlDays) * 24 * time.Hour
	c.l1.Store(fullKey, &entry{data: data, expiresAt: time.Now().Add(ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, fullKey, data, ttl).Err(); err != nil {
			c.logger.Warn("L2 write failed", "key", fullKey, "error", err)
		}
	}
	return nil
}

// InvalidateNamespace drops every entry of one resource kind from both tiers.
func (c *Cache) InvalidateNamespace(ctx context.Context, ns Namespace) error {
	prefix := fmt.Sprintf("yt:%s:", ns)
	c.l1.Range(func(k, _ any) bool {
		if strings.HasPrefix(k.(string), prefix) {
			c.l1.Delete(k)
		}
		return true
	})

	if c.rdb != nil {
		iter := c.rdb.Scan(ctx, 0, prefix+"*", 0).Iterator()
		for iter.Next(ctx) {
			if err := c.rdb.Del(ctx, iter.Val()).Err(); err != nil {
				return fmt.Errorf("failed to invalidate namespace %s: %w", ns, err)
			}
		}
		if err := iter.Err(); err != nil {
			return fmt.Errorf("failed to scan namespace %s: %w", ns, err)
		}
	}
	return nil
}

// cleanupLoop evicts expired L1 entries so the map does not grow unbounded.
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.l1.Range(func(k, v any) bool {
				if now.After(v.(*entry).expiresAt) {
					c.l1.Delete(k)
				}
				return true
			})
		case <-c.stopChan:
			return
		}
	}
}

// Close stops background work and the L2 connection.
func (c *Cache) Close() {
	close(c.stopChan)
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil {
			c.logger.Warn("Failed to close redis client", "error", err)
		}
	}
}

// GetOrCompute is the cache-aside helper every gateway method goes through:
// return the cached value when present, otherwise compute, store under the
// TTL in effect right now, and return the fresh value. Writes are
// last-writer-wins; entries are idempotent derived data.
func GetOrCompute[T any](ctx context.Context, c *Cache, ns Namespace, key string, ttlDays int, compute func(context.Context) (T, error)) (T, error) {
	var cached T
	hit, err := c.Get(ctx, ns, key, &cached)
	if err == nil && hit {
		return cached, nil
	}

	fresh, err := compute(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	if err := c.Set(ctx, ns, key, fresh, ttlDays); err != nil {
		c.logger.Warn("Cache write failed", "namespace", string(ns), "key", key, "error", err)
	}
	return fresh, nil
}
