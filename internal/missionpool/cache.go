package missionpool

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache stores one pool of mission ids per user and day
type Cache interface {
	// SetIfAbsent stores ids unless a pool for (userID, dateKey) exists and
	// returns whichever pool is stored. expireAt bounds how long it is kept.
	SetIfAbsent(ctx context.Context, userID, dateKey string, ids []string, expireAt time.Time) ([]string, error)

	// Get returns the stored pool, found=false when there is none
	Get(ctx context.Context, userID, dateKey string) (ids []string, found bool, err error)
}

func cacheKey(userID, dateKey string) string {
	return userID + ":" + dateKey
}

type cachedPool struct {
	Version string   `json:"version"`
	IDs     []string `json:"ids"`
}

// LRUCache is the in-process Cache. Entries are keyed by day, so a pool is
// never served after its day even before the TTL evicts it.
type LRUCache struct {
	mu  sync.Mutex
	lru *expirable.LRU[string, *cachedPool]
}

// NewLRUCache creates an LRU cache holding at most size pools for ttl
func NewLRUCache(size int, ttl time.Duration) *LRUCache {
	if size <= 0 {
		size = DefaultLRUSize
	}
	if ttl <= 0 {
		ttl = DefaultLRUTTL
	}
	return &LRUCache{lru: expirable.NewLRU[string, *cachedPool](size, nil, ttl)}
}

func (c *LRUCache) SetIfAbsent(ctx context.Context, userID, dateKey string, ids []string, expireAt time.Time) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(userID, dateKey)
	if entry, ok := c.lru.Get(key); ok && entry.Version == cacheSchemaVersion {
		return append([]string(nil), entry.IDs...), nil
	}
	c.lru.Add(key, &cachedPool{Version: cacheSchemaVersion, IDs: append([]string(nil), ids...)})
	return ids, nil
}

func (c *LRUCache) Get(ctx context.Context, userID, dateKey string) ([]string, bool, error) {
	key := cacheKey(userID, dateKey)
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if entry.Version != cacheSchemaVersion {
		c.lru.Remove(key)
		return nil, false, nil
	}
	return append([]string(nil), entry.IDs...), true, nil
}

// Purge drops every cached pool
func (c *LRUCache) Purge() {
	c.lru.Purge()
}
