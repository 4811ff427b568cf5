package cache

import (
	"strings"
	"sync"
	"time"
)

// sweepAt is the size past which Set drops expired entries.
const sweepAt = 512

// Cache is a small TTL map for rendered public responses. Writers
// invalidate by key prefix; every invalidation bumps the generation so a
// reader that loaded data before it can be refused with SetIfGeneration.
type Cache struct {
	mu  sync.RWMutex
	ttl time.Duration
	now func() time.Time
	m   map[string]entry
	gen uint64
}

type entry struct {
	val any
	exp time.Time
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Cache{
		ttl: ttl,
		now: time.Now,
		m:   make(map[string]entry),
	}
}

func (c *Cache) Get(key string) (any, bool) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if now.Before(e.exp) {
		return e.val, true
	}

	c.mu.Lock()
	// a concurrent Set may have refreshed the key meanwhile
	if cur, ok := c.m[key]; ok && !now.Before(cur.exp) {
		delete(c.m, key)
	}
	c.mu.Unlock()

	return nil, false
}

func (c *Cache) Set(key string, val any) {
	c.mu.Lock()
	c.setLocked(key, val)
	c.mu.Unlock()
}

// Generation is read before loading the value that will be stored.
func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.gen
}

// SetIfGeneration stores val only when no invalidation happened since gen
// was read. It reports whether the value was stored.
func (c *Cache) SetIfGeneration(key string, val any, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}
	c.setLocked(key, val)
	return true
}

func (c *Cache) setLocked(key string, val any) {
	now := c.now()

	if len(c.m) >= sweepAt {
		for k, e := range c.m {
			if !now.Before(e.exp) {
				delete(c.m, k)
			}
		}
	}
	c.m[key] = entry{val: val, exp: now.Add(c.ttl)}
}

// DeletePrefix drops every key starting with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	c.mu.Lock()
	c.gen++
	for k := range c.m {
		if strings.HasPrefix(k, prefix) {
			delete(c.m, k)
		}
	}
	c.mu.Unlock()
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
