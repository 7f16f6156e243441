package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidMetadata means metadata failed validation at registration.
	ErrInvalidMetadata = errors.New("invalid adapter metadata")
	// ErrDuplicateIdentity means identity already registered with different content.
	ErrDuplicateIdentity = errors.New("duplicate adapter identity")
	// ErrUnknownCapability means no adapter has ever registered the capability.
	ErrUnknownCapability = errors.New("unknown capability")
	// ErrUnknownIdentity means identity has no metadata in the registry.
	ErrUnknownIdentity = errors.New("unknown adapter identity")
)

// ResolutionError reports a failed resolution, naming the capability requested,
// the identity that was attempted, and the underlying cause. The registry never
// falls back to the next candidate on failure, so the error always identifies
// the exact adapter that broke.
type ResolutionError struct {
	Capability string
	Identity   string
	Err        error
}

func (e *ResolutionError) Error() string {
	if e.Capability == "" {
		return fmt.Sprintf("resolving adapter %q: %v", e.Identity, e.Err)
	}
	return fmt.Sprintf("resolving capability %q via adapter %q: %v", e.Capability, e.Identity, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }
