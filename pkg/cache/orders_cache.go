// Package cache holds short-lived snapshots of venue responses so repeated
// reads do not burn venue request weight.
package cache

import (
	"hash/fnv"
	"sync"
	"time"

	exchange "venue-gateway/pkg/exchanges/common"
)

const numShards = 16

// OpenOrderCache is a sharded cache of open-order snapshots keyed by
// segment and symbol.
type OpenOrderCache struct {
	shards [numShards]*orderShard
}

type orderShard struct {
	mu    sync.RWMutex
	items map[string]orderEntry
}

type orderEntry struct {
	orders    []exchange.OpenOrder
	updatedAt time.Time
}

// NewOpenOrderCache creates a new sharded cache.
func NewOpenOrderCache() *OpenOrderCache {
	c := &OpenOrderCache{}
	for i := 0; i < numShards; i++ {
		c.shards[i] = &orderShard{
			items: make(map[string]orderEntry),
		}
	}
	return c
}

func cacheKey(segment, symbol string) string {
	return segment + "|" + symbol
}

// getShard returns the shard for the given key.
func (c *OpenOrderCache) getShard(key string) *orderShard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return c.shards[h.Sum32()%numShards]
}

// Set stores a snapshot for a segment and symbol.
func (c *OpenOrderCache) Set(segment, symbol string, orders []exchange.OpenOrder) {
	key := cacheKey(segment, symbol)
	shard := c.getShard(key)
	shard.mu.Lock()
	shard.items[key] = orderEntry{
		orders:    orders,
		updatedAt: time.Now(),
	}
	shard.mu.Unlock()
}

// Get retrieves a snapshot no older than maxAge.
func (c *OpenOrderCache) Get(segment, symbol string, maxAge time.Duration) ([]exchange.OpenOrder, bool) {
	key := cacheKey(segment, symbol)
	shard := c.getShard(key)
	shard.mu.RLock()
	entry, ok := shard.items[key]
	shard.mu.RUnlock()
	if !ok || time.Since(entry.updatedAt) > maxAge {
		return nil, false
	}
	return entry.orders, true
}

// Invalidate removes a snapshot, e.g. after a submit or cancel.
func (c *OpenOrderCache) Invalidate(segment, symbol string) {
	key := cacheKey(segment, symbol)
	shard := c.getShard(key)
	shard.mu.Lock()
	delete(shard.items, key)
	shard.mu.Unlock()
}

// Len returns total snapshots across all shards.
func (c *OpenOrderCache) Len() int {
	total := 0
	for _, shard := range c.shards {
		shard.mu.RLock()
		total += len(shard.items)
		shard.mu.RUnlock()
	}
	return total
}

// Cleanup removes snapshots older than maxAge.
func (c *OpenOrderCache) Cleanup(maxAge time.Duration) int {
	removed := 0
	cutoff := time.Now().Add(-maxAge)

	for _, shard := range c.shards {
		shard.mu.Lock()
		for key, entry := range shard.items {
			if entry.updatedAt.Before(cutoff) {
				delete(shard.items, key)
				removed++
			}
		}
		shard.mu.Unlock()
	}
	return removed
}
