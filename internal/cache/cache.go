package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"
	"time"
)

// Clock returns the current time. Tests swap it to move time forward.
type Clock func() time.Time

// Entry is a cached value and the time it was written.
type Entry[V any] struct {
	Value     V         `json:"value"`
	Timestamp time.Time `json:"timestamp"`
}

// Cache is a TTL cache keyed by content fingerprints.
type Cache[V any] interface {
	Get(ctx context.Context, key string) (V, bool)
	Set(ctx context.Context, key string, value V)
}

// Memory is a process-wide Cache. Staleness is checked on read; there is
// no background sweeper.
type Memory[V any] struct {
	mu    sync.RWMutex
	items map[string]Entry[V]
	ttl   time.Duration
	now   Clock
}

// NewMemory returns an empty Memory cache. A nil clock means time.Now.
func NewMemory[V any](ttl time.Duration, clock Clock) *Memory[V] {
	if clock == nil {
		clock = time.Now
	}
	return &Memory[V]{
		items: make(map[string]Entry[V]),
		ttl:   ttl,
		now:   clock,
	}
}

func (c *Memory[V]) Get(_ context.Context, key string) (V, bool) {
	c.mu.RLock()
	item, exists := c.items[key]
	c.mu.RUnlock()

	var zero V
	if !exists {
		return zero, false
	}
	if c.now().Sub(item.Timestamp) >= c.ttl {
		c.mu.Lock()
		// Only drop the entry if nobody refreshed it in between.
		if cur, ok := c.items[key]; ok && cur.Timestamp.Equal(item.Timestamp) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return zero, false
	}
	return item.Value, true
}

func (c *Memory[V]) Set(_ context.Context, key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = Entry[V]{Value: value, Timestamp: c.now()}
}

// Len reports the number of stored entries, stale ones included.
func (c *Memory[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Key fingerprints parts into a stable hex key.
func Key(parts ...string) string {
	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(h.Sum(nil))
}
