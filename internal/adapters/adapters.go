// Package adapters is the conventional discovery point for built-in adapter
// implementations. Each adapter package announces its metadata from init and
// provides its factory to the default locator; importing the package (usually
// blank-imported from main) is what makes an adapter discoverable. Startup
// feeds Announced into Registry.RegisterAdapters.
package adapters

import (
	"sync"

	"github.com/everstacklabs/chassis/internal/registry"
)

var (
	mu        sync.Mutex
	announced []registry.Metadata
)

// Announce records an adapter's metadata for startup registration.
func Announce(meta registry.Metadata) {
	mu.Lock()
	defer mu.Unlock()
	announced = append(announced, meta)
}

// Announced returns all announced metadata in announcement order.
func Announced() []registry.Metadata {
	mu.Lock()
	defer mu.Unlock()
	return append([]registry.Metadata(nil), announced...)
}
