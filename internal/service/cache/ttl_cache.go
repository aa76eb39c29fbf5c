package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a TTLCache created with NewTTLCache.
const DefaultMaxEntries = 1024

type entry struct {
	v   []byte
	exp time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

// TTLCache is an in-process BytesCache used when Redis is not configured.
// When full, expired entries are swept; if none expired the oldest-expiring
// entry is dropped.
type TTLCache struct {
	mu  sync.RWMutex
	m   map[string]entry
	max int
	now func() time.Time
}

func NewTTLCache() *TTLCache {
	return NewTTLCacheSize(DefaultMaxEntries)
}

func NewTTLCacheSize(max int) *TTLCache {
	if max <= 0 {
		max = DefaultMaxEntries
	}
	return &TTLCache{m: make(map[string]entry), max: max, now: time.Now}
}

func (c *TTLCache) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if e.expired(c.now()) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false, nil
	}
	return e.v, true, nil
}

func (c *TTLCache) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := c.now()
	var exp time.Time
	if ttl > 0 {
		exp = now.Add(ttl)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.m[key]; !exists && len(c.m) >= c.max {
		c.evict(now)
	}
	c.m[key] = entry{v: value, exp: exp}
	return nil
}

// evict must be called with mu held.
func (c *TTLCache) evict(now time.Time) {
	victim := ""
	var soonest time.Time
	for k, e := range c.m {
		if e.expired(now) {
			delete(c.m, k)
			continue
		}
		if e.exp.IsZero() {
			continue
		}
		if victim == "" || e.exp.Before(soonest) {
			victim, soonest = k, e.exp
		}
	}
	if len(c.m) < c.max {
		return
	}
	if victim == "" {
		for k := range c.m {
			victim = k
			break
		}
	}
	delete(c.m, victim)
}

// Len returns the number of stored entries, expired ones included.
func (c *TTLCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
