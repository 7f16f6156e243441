// Package memcache provides the in-process implementation of the "cache"
// capability. Values live in a map for the lifetime of the instance; a
// registry reset discards them.
package memcache

import (
	"context"
	"sync"

	"github.com/everstacklabs/chassis/internal/adapters"
	"github.com/everstacklabs/chassis/internal/capability"
	"github.com/everstacklabs/chassis/internal/registry"
	"github.com/everstacklabs/chassis/internal/resolve"
)

// ModulePath is the canonical resolution path for this adapter.
const ModulePath = "chassis/adapters/memcache"

var maxEntries int // 0 means unbounded; set via Configure before resolution

func init() {
	resolve.Provide(ModulePath, func(ctx context.Context) (any, error) {
		return New(maxEntries), nil
	})
	adapters.Announce(registry.Metadata{
		Identity:     "cache.memory",
		Capabilities: []string{capability.Cache},
		Version:      registry.Version{Major: 1, Minor: 2, Patch: 0},
		Compat: registry.CompatRange{
			Min: registry.Version{Major: 1},
			Max: registry.Version{Major: 1, Minor: 99},
		},
		Priority:   10,
		ModulePath: ModulePath,
	})
}

// Configure sets the entry cap applied to instances created after this call.
// Called once at startup, before first resolution.
func Configure(entries int) { maxEntries = entries }

// Cache is a mutex-guarded in-memory byte cache.
type Cache struct {
	mu      sync.RWMutex
	entries map[string][]byte
	max     int
}

// New creates a Cache holding at most max entries; max <= 0 means unbounded.
func New(max int) *Cache {
	return &Cache{entries: make(map[string][]byte), max: max}
}

func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.max > 0 && len(c.entries) >= c.max {
		if _, exists := c.entries[key]; !exists {
			// At capacity: drop one arbitrary entry. Callers needing an
			// eviction policy should register a dedicated cache adapter.
			for k := range c.entries {
				delete(c.entries, k)
				break
			}
		}
	}
	c.entries[key] = append([]byte(nil), value...)
	return nil
}

func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
