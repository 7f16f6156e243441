package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/everstacklabs/chassis/internal/resolve"
)

// Registry is the process-wide adapter catalog: it holds metadata, tracks
// lifecycle status, resolves capabilities to concrete adapters, and caches
// instantiated adapters so each identity is constructed at most once until
// reset. Construct one explicitly with New; tests may hold several isolated
// registries.
type Registry struct {
	locator *resolve.Locator

	mu        sync.RWMutex
	entries   map[string]*entry
	index     capabilityIndex
	overrides map[string]string
	nextSeq   int
}

// entry is the per-identity slot. Its mutex serializes status transitions and
// instantiation for that identity only, so resolutions of distinct identities
// never contend with each other.
type entry struct {
	mu       sync.Mutex
	meta     Metadata
	seq      int
	status   Status
	instance any
	failure  error
}

// Option configures a Registry.
type Option func(*Registry)

// WithLocator sets the import resolver used to locate implementations.
func WithLocator(l *resolve.Locator) Option {
	return func(r *Registry) { r.locator = l }
}

// New creates an empty Registry. Without options it resolves implementations
// through the default locator, where built-in adapters provide their factories.
func New(opts ...Option) *Registry {
	r := &Registry{
		locator:   resolve.Default(),
		entries:   make(map[string]*entry),
		index:     make(capabilityIndex),
		overrides: make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds one adapter's metadata to the registry. Re-registering an
// identity with identical content is a no-op; differing content fails with
// ErrDuplicateIdentity. The identity is inserted into every capability bucket
// it declares.
func (r *Registry) Register(meta Metadata) error {
	if err := meta.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.entries[meta.Identity]; ok {
		if existing.meta.equal(meta) {
			return nil
		}
		return fmt.Errorf("%w: %q registered with different metadata", ErrDuplicateIdentity, meta.Identity)
	}

	seq := r.nextSeq
	r.nextSeq++
	r.entries[meta.Identity] = &entry{meta: meta, seq: seq, status: StatusRegistered}
	for _, capability := range meta.Capabilities {
		r.index.insert(capability, meta.Identity, meta.Priority, seq)
	}

	slog.Debug("adapter registered",
		"identity", meta.Identity,
		"capabilities", meta.Capabilities,
		"version", meta.Version.String(),
		"priority", meta.Priority)

	return nil
}

// RegisterAdapters bulk-registers metadata, failing fast on the first invalid
// or conflicting entry. A half-registered registry is unsafe to run, so
// registration errors are treated as fatal by callers at startup.
func (r *Registry) RegisterAdapters(metas []Metadata) error {
	for _, meta := range metas {
		if err := r.Register(meta); err != nil {
			return err
		}
	}
	return nil
}

// Unregister removes an identity's metadata, status, cached instance, and
// every capability index entry referencing it.
func (r *Registry) Unregister(identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[identity]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIdentity, identity)
	}
	e.mu.Lock()
	closeInstance(identity, e.instance)
	e.instance = nil
	e.mu.Unlock()

	delete(r.entries, identity)
	r.index.remove(identity)
	for capability, id := range r.overrides {
		if id == identity {
			delete(r.overrides, capability)
		}
	}
	return nil
}

// Candidates returns the identities registered for a capability in resolution
// order: priority descending, registration order breaking ties.
func (r *Registry) Candidates(capability string) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.index.candidates(capability)
	if ids == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCapability, capability)
	}
	return ids, nil
}

// PinOverride forces resolution of a capability to a specific identity,
// regardless of priority order, until cleared. The identity must be registered
// and must declare the capability. Overrides survive Reset; clearing them is a
// separate, deliberate operation.
func (r *Registry) PinOverride(capability, identity string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[identity]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownIdentity, identity)
	}
	declared := false
	for _, c := range e.meta.Capabilities {
		if c == capability {
			declared = true
			break
		}
	}
	if !declared {
		return fmt.Errorf("%w: adapter %q does not declare capability %q", ErrUnknownCapability, identity, capability)
	}

	r.overrides[capability] = identity
	slog.Info("capability override pinned", "capability", capability, "identity", identity)
	return nil
}

// ClearOverride removes the pin for one capability.
func (r *Registry) ClearOverride(capability string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.overrides, capability)
}

// ClearOverrides removes all pins.
func (r *Registry) ClearOverrides() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides = make(map[string]string)
}

// Get resolves a capability to an instantiated adapter. Selection is the
// pinned override if one exists, otherwise the head of the candidate order.
// The first call imports and instantiates the implementation; subsequent calls
// return the cached instance. A failed instantiation is sticky: every call
// returns the same ResolutionError until Reset, so a known-broken adapter is
// not retried implicitly.
func (r *Registry) Get(ctx context.Context, capability string) (any, error) {
	r.mu.RLock()
	identity, ok := r.overrides[capability]
	if !ok {
		if ids := r.index.candidates(capability); len(ids) > 0 {
			identity = ids[0]
			ok = true
		}
	}
	var e *entry
	if ok {
		e = r.entries[identity]
	}
	r.mu.RUnlock()

	if e == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCapability, capability)
	}
	return r.resolveEntry(ctx, capability, e)
}

// GetIdentity resolves a specific adapter by identity, bypassing capability
// selection. Caching and status discipline are identical to Get.
func (r *Registry) GetIdentity(ctx context.Context, identity string) (any, error) {
	r.mu.RLock()
	e := r.entries[identity]
	r.mu.RUnlock()

	if e == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownIdentity, identity)
	}
	return r.resolveEntry(ctx, "", e)
}

// resolveEntry performs the check-cache / import / instantiate / store sequence
// under the entry's own mutex. Holding the mutex across instantiation is what
// guarantees concurrent first callers observe exactly one instantiation and all
// receive the same instance.
func (r *Registry) resolveEntry(ctx context.Context, capability string, e *entry) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.status {
	case StatusActive:
		return e.instance, nil
	case StatusFailed:
		return nil, &ResolutionError{Capability: capability, Identity: e.meta.Identity, Err: e.failure}
	}

	e.status = StatusLoading
	slog.Debug("loading adapter", "identity", e.meta.Identity, "module_path", e.meta.ModulePath)

	factory, err := r.locator.Locate(e.meta.ModulePath, e.meta.LegacyPaths)
	if err != nil {
		e.status = StatusFailed
		e.failure = err
		return nil, &ResolutionError{Capability: capability, Identity: e.meta.Identity, Err: err}
	}

	instance, err := factory(ctx)
	if err != nil {
		e.status = StatusFailed
		e.failure = fmt.Errorf("instantiating: %w", err)
		return nil, &ResolutionError{Capability: capability, Identity: e.meta.Identity, Err: e.failure}
	}

	e.status = StatusActive
	e.instance = instance
	e.failure = nil
	slog.Info("adapter active", "identity", e.meta.Identity, "version", e.meta.Version.String())
	return instance, nil
}

// Status reports the lifecycle status of an identity.
func (r *Registry) Status(identity string) (Status, error) {
	r.mu.RLock()
	e := r.entries[identity]
	r.mu.RUnlock()

	if e == nil {
		return StatusRegistered, fmt.Errorf("%w: %q", ErrUnknownIdentity, identity)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status, nil
}

// Reset drops cached instances and returns status to Registered, forcing
// re-instantiation on next use. An empty target resets every identity;
// otherwise the target names an identity or a capability (resetting every
// identity in that capability's bucket). Metadata, index entries, and override
// pins are all retained. Instances implementing io.Closer are closed.
func (r *Registry) Reset(target string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if target == "" {
		for _, e := range r.entries {
			resetEntry(e)
		}
		return nil
	}

	if e, ok := r.entries[target]; ok {
		resetEntry(e)
		return nil
	}

	ids := r.index.candidates(target)
	if ids == nil {
		return fmt.Errorf("reset: no adapter or capability named %q", target)
	}
	for _, id := range ids {
		resetEntry(r.entries[id])
	}
	return nil
}

func resetEntry(e *entry) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.status == StatusRegistered {
		return
	}
	closeInstance(e.meta.Identity, e.instance)
	e.status = StatusRegistered
	e.instance = nil
	e.failure = nil
	slog.Debug("adapter reset", "identity", e.meta.Identity)
}

// closeInstance releases adapters holding external resources. Best effort:
// a close failure is logged, not surfaced, since the instance is discarded
// either way.
func closeInstance(identity string, instance any) {
	c, ok := instance.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		slog.Warn("closing adapter instance", "identity", identity, "error", err)
	}
}

// Info is a read-only snapshot of one registered adapter.
type Info struct {
	Identity     string   `json:"identity"`
	Capabilities []string `json:"capabilities"`
	Version      string   `json:"version"`
	Priority     int      `json:"priority"`
	Status       string   `json:"status"`
}

// List returns a snapshot of all registered adapters in registration order.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ordered := make([]*entry, 0, len(r.entries))
	for _, e := range r.entries {
		ordered = append(ordered, e)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].seq < ordered[j].seq })

	infos := make([]Info, 0, len(ordered))
	for _, e := range ordered {
		e.mu.Lock()
		infos = append(infos, Info{
			Identity:     e.meta.Identity,
			Capabilities: append([]string(nil), e.meta.Capabilities...),
			Version:      e.meta.Version.String(),
			Priority:     e.meta.Priority,
			Status:       e.status.String(),
		})
		e.mu.Unlock()
	}
	return infos
}

// Metadata returns the registered metadata for an identity.
func (r *Registry) Metadata(identity string) (Metadata, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[identity]
	if !ok {
		return Metadata{}, fmt.Errorf("%w: %q", ErrUnknownIdentity, identity)
	}
	return e.meta, nil
}
