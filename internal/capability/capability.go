// Package capability defines the interfaces concrete adapters implement, one
// per capability category. The registry itself stores instances untyped;
// callers assert to the interface matching the capability they asked for, so
// the framework depends on these contracts and never on concrete adapter types.
package capability

import "context"

// Capability names resolved through the registry.
const (
	Cache   = "cache"
	Storage = "storage"
	Config  = "config"
	Fetch   = "fetch"
)

// Cacher is the contract for the "cache" capability.
type Cacher interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores a value under a key, replacing any existing value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// Store is the contract for the "storage" capability: durable keyed records.
type Store interface {
	Put(ctx context.Context, key string, value []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	// Keys lists stored keys with the given prefix, sorted.
	Keys(ctx context.Context, prefix string) ([]string, error)
}

// Source is the contract for the "config" capability: read-only settings.
type Source interface {
	// Lookup returns the value for a dotted key and whether it exists.
	Lookup(key string) (string, bool)
	// Keys returns all known keys, sorted.
	Keys() []string
}

// Fetcher is the contract for the "fetch" capability.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}
