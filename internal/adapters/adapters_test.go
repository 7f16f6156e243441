package adapters_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/everstacklabs/chassis/internal/adapters"
	"github.com/everstacklabs/chassis/internal/capability"
	"github.com/everstacklabs/chassis/internal/registry"

	filecacheAdapter "github.com/everstacklabs/chassis/internal/adapters/filecache"
	_ "github.com/everstacklabs/chassis/internal/adapters/httpfetch"
	memcacheAdapter "github.com/everstacklabs/chassis/internal/adapters/memcache"
	sqlitestoreAdapter "github.com/everstacklabs/chassis/internal/adapters/sqlitestore"
	yamlconfigAdapter "github.com/everstacklabs/chassis/internal/adapters/yamlconfig"
)

// newRegistry registers everything the built-in adapters announced, pointing
// filesystem-backed adapters at temp locations.
func newRegistry(t *testing.T) *registry.Registry {
	t.Helper()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "app.yaml")
	if err := os.WriteFile(cfgPath, []byte("app:\n  name: e2e\n"), 0o644); err != nil {
		t.Fatalf("writing config file: %v", err)
	}

	memcacheAdapter.Configure(64)
	filecacheAdapter.Configure(filepath.Join(dir, "cache"), time.Hour)
	sqlitestoreAdapter.Configure(filepath.Join(dir, "store.db"))
	yamlconfigAdapter.Configure(cfgPath)

	r := registry.New() // default locator holds the built-in factories
	if err := r.RegisterAdapters(adapters.Announced()); err != nil {
		t.Fatalf("RegisterAdapters failed: %v", err)
	}
	t.Cleanup(func() { r.Reset("") })
	return r
}

func TestAnnouncedMetadataIsValid(t *testing.T) {
	metas := adapters.Announced()
	if len(metas) < 5 {
		t.Fatalf("expected at least 5 announced adapters, got %d", len(metas))
	}
	for _, m := range metas {
		if err := m.Validate(); err != nil {
			t.Errorf("announced metadata invalid: %v", err)
		}
		if !m.Compat.Contains(registry.Framework) {
			t.Errorf("%s compat range excludes framework %s", m.Identity, registry.Framework)
		}
	}
}

func TestResolveCacheCapability(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	instance, err := r.Get(ctx, capability.Cache)
	if err != nil {
		t.Fatalf("Get(cache) failed: %v", err)
	}
	c, ok := instance.(capability.Cacher)
	if !ok {
		t.Fatalf("cache instance %T does not implement capability.Cacher", instance)
	}

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, ok, err := c.Get(ctx, "k")
	if err != nil || !ok || string(got) != "v" {
		t.Errorf("Get = %q, %v, %v", got, ok, err)
	}

	// memcache (priority 10) must win over filecache (priority 5)
	if _, isMem := instance.(*memcacheAdapter.Cache); !isMem {
		t.Errorf("expected in-process cache to win by priority, got %T", instance)
	}
}

func TestPinFileCache(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	if err := r.PinOverride(capability.Cache, "cache.file"); err != nil {
		t.Fatalf("PinOverride failed: %v", err)
	}
	instance, err := r.Get(ctx, capability.Cache)
	if err != nil {
		t.Fatalf("Get(cache) failed: %v", err)
	}
	if _, isFile := instance.(*filecacheAdapter.Cache); !isFile {
		t.Errorf("expected pinned file cache, got %T", instance)
	}
}

func TestResolveStorageCapability(t *testing.T) {
	r := newRegistry(t)
	ctx := context.Background()

	instance, err := r.Get(ctx, capability.Storage)
	if err != nil {
		t.Fatalf("Get(storage) failed: %v", err)
	}
	s, ok := instance.(capability.Store)
	if !ok {
		t.Fatalf("storage instance %T does not implement capability.Store", instance)
	}

	if err := s.Put(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil || string(got) != "v" {
		t.Errorf("Get = %q, %v", got, err)
	}
}

func TestResolveConfigCapability(t *testing.T) {
	r := newRegistry(t)

	instance, err := r.Get(context.Background(), capability.Config)
	if err != nil {
		t.Fatalf("Get(config) failed: %v", err)
	}
	src, ok := instance.(capability.Source)
	if !ok {
		t.Fatalf("config instance %T does not implement capability.Source", instance)
	}

	if got, ok := src.Lookup("app.name"); !ok || got != "e2e" {
		t.Errorf("Lookup(app.name) = %q, %v", got, ok)
	}
}

func TestResolveFetchCapability(t *testing.T) {
	r := newRegistry(t)

	instance, err := r.Get(context.Background(), capability.Fetch)
	if err != nil {
		t.Fatalf("Get(fetch) failed: %v", err)
	}
	if _, ok := instance.(capability.Fetcher); !ok {
		t.Fatalf("fetch instance %T does not implement capability.Fetcher", instance)
	}
}
