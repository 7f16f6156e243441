// Package resolve locates adapter implementations. Factories register under
// canonical module paths, usually from an init function in the implementing
// package; the registry asks the locator to translate a metadata path chain
// into a factory at first use.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// ErrNotFound means no factory is registered under any of the attempted paths.
var ErrNotFound = errors.New("implementation not found")

// Factory constructs an adapter instance. It is invoked at most once per
// identity per process lifetime, on first resolution, unless the registry
// is reset.
type Factory func(ctx context.Context) (any, error)

// Locator maps module paths to factories. The zero value is not usable;
// use NewLocator, or the package default shared by built-in adapters.
type Locator struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewLocator creates an empty locator, independent of the package default.
func NewLocator() *Locator {
	return &Locator{factories: make(map[string]Factory)}
}

// Provide registers a factory under a canonical path. It panics on an empty
// path, nil factory, or duplicate registration: these are programmer errors
// at init time, the same contract database/sql applies to driver registration.
func (l *Locator) Provide(path string, f Factory) {
	if path == "" {
		panic("resolve: Provide called with empty path")
	}
	if f == nil {
		panic("resolve: Provide called with nil factory for " + path)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, dup := l.factories[path]; dup {
		panic("resolve: Provide called twice for " + path)
	}
	l.factories[path] = f
}

// Lookup returns the factory registered under exactly one path.
func (l *Locator) Lookup(path string) (Factory, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	f, ok := l.factories[path]
	return f, ok
}

// Locate tries the canonical module path first, then each legacy path in
// order, returning the first factory found. Legacy paths exist because
// adapters get relocated across framework versions while configuration keeps
// referencing the old location; resolution stays backward-compatible without
// a migration step. ErrNotFound is returned only after every path fails, and
// names all of them.
func (l *Locator) Locate(modulePath string, legacyPaths []string) (Factory, error) {
	if f, ok := l.Lookup(modulePath); ok {
		return f, nil
	}
	for _, p := range legacyPaths {
		if f, ok := l.Lookup(p); ok {
			return f, nil
		}
	}

	tried := append([]string{modulePath}, legacyPaths...)
	return nil, fmt.Errorf("%w: tried %s", ErrNotFound, strings.Join(tried, ", "))
}

// Paths returns all registered canonical paths, for diagnostics.
func (l *Locator) Paths() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	paths := make([]string, 0, len(l.factories))
	for p := range l.factories {
		paths = append(paths, p)
	}
	return paths
}

var defaultLocator = NewLocator()

// Default returns the process-wide locator that built-in adapters provide
// their factories to.
func Default() *Locator { return defaultLocator }

// Provide registers a factory with the default locator.
func Provide(path string, f Factory) { defaultLocator.Provide(path, f) }
