// Package filecache provides a file-backed implementation of the "cache"
// capability with per-entry TTL. It registers at a lower priority than the
// in-process cache; pin it when entries must survive process restarts.
package filecache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/everstacklabs/chassis/internal/actions"
	"github.com/everstacklabs/chassis/internal/adapters"
	"github.com/everstacklabs/chassis/internal/capability"
	"github.com/everstacklabs/chassis/internal/registry"
	"github.com/everstacklabs/chassis/internal/resolve"
)

// ModulePath is the canonical resolution path for this adapter.
const ModulePath = "chassis/adapters/filecache"

var (
	cacheDir = defaultDir() // set via Configure before resolution
	cacheTTL = time.Hour
)

func init() {
	resolve.Provide(ModulePath, func(ctx context.Context) (any, error) {
		return New(cacheDir, cacheTTL)
	})
	adapters.Announce(registry.Metadata{
		Identity:     "cache.file",
		Capabilities: []string{capability.Cache},
		Version:      registry.Version{Major: 1, Minor: 0, Patch: 2},
		Compat: registry.CompatRange{
			Min: registry.Version{Major: 1},
			Max: registry.Version{Major: 1, Minor: 99},
		},
		Priority:   5,
		ModulePath: ModulePath,
	})
}

// Configure sets the directory and TTL for instances created after this call.
func Configure(dir string, ttl time.Duration) {
	if dir != "" {
		cacheDir = dir
	}
	if ttl > 0 {
		cacheTTL = ttl
	}
}

func defaultDir() string {
	home, err := os.UserCacheDir()
	if err != nil {
		return ".chassis-cache"
	}
	return filepath.Join(home, "chassis")
}

// entry is the on-disk representation of one cached value.
type entry struct {
	Value    []byte    `json:"value"`
	CachedAt time.Time `json:"cached_at"`
}

// Cache stores entries as one JSON file per key under a directory.
type Cache struct {
	dir string
	ttl time.Duration
}

// New creates the cache directory if needed.
func New(dir string, ttl time.Duration) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Get retrieves a cached value if it exists and hasn't expired. Expired
// entries are removed on read.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading cache entry: %w", err)
	}

	var e entry
	if err := json.Unmarshal(data, &e); err != nil {
		// Corrupt entry: drop it and report a miss
		os.Remove(path)
		return nil, false, nil
	}

	if time.Since(e.CachedAt) > c.ttl {
		os.Remove(path)
		return nil, false, nil
	}
	return e.Value, true, nil
}

// Set stores a value under a key, replacing any existing value.
func (c *Cache) Set(ctx context.Context, key string, value []byte) error {
	data, err := json.Marshal(entry{Value: value, CachedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	if err := os.WriteFile(c.path(key), data, 0o644); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is not an error.
func (c *Cache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing cache entry: %w", err)
	}
	return nil
}

func (c *Cache) path(key string) string {
	return filepath.Join(c.dir, actions.HashKey(key))
}
