package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// Version is a semantic version tuple.
type Version struct {
	Major int
	Minor int
	Patch int
}

// ParseVersion parses "MAJOR.MINOR.PATCH" into a Version.
func ParseVersion(s string) (Version, error) {
	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("invalid version %q: want MAJOR.MINOR.PATCH", s)
	}

	var v Version
	for i, dst := range []*int{&v.Major, &v.Minor, &v.Patch} {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("invalid version %q: bad component %q", s, parts[i])
		}
		*dst = n
	}
	return v, nil
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare returns -1, 0, or 1 ordering v against o.
func (v Version) Compare(o Version) int {
	for _, d := range []int{v.Major - o.Major, v.Minor - o.Minor, v.Patch - o.Patch} {
		if d < 0 {
			return -1
		}
		if d > 0 {
			return 1
		}
	}
	return 0
}

// CompatRange declares the framework versions an adapter supports, inclusive.
type CompatRange struct {
	Min Version
	Max Version
}

// Contains reports whether v falls inside the range.
func (r CompatRange) Contains(v Version) bool {
	return r.Min.Compare(v) <= 0 && r.Max.Compare(v) >= 0
}

// Metadata is the immutable descriptor of an adapter implementation.
// Identity must be unique across a registry; Capabilities must be non-empty.
// ModulePath is the canonical location of the implementation; LegacyPaths are
// prior locations tried in order when the canonical path does not resolve.
type Metadata struct {
	Identity     string
	Capabilities []string
	Version      Version
	Compat       CompatRange
	Priority     int
	ModulePath   string
	LegacyPaths  []string
}

// Validate checks the metadata against the registration contract.
func (m Metadata) Validate() error {
	if m.Identity == "" {
		return fmt.Errorf("%w: empty identity", ErrInvalidMetadata)
	}
	if len(m.Capabilities) == 0 {
		return fmt.Errorf("%w: adapter %q declares no capabilities", ErrInvalidMetadata, m.Identity)
	}
	for _, c := range m.Capabilities {
		if c == "" {
			return fmt.Errorf("%w: adapter %q declares an empty capability name", ErrInvalidMetadata, m.Identity)
		}
	}
	if m.ModulePath == "" {
		return fmt.Errorf("%w: adapter %q has no module path", ErrInvalidMetadata, m.Identity)
	}
	if m.Compat.Min.Compare(m.Compat.Max) > 0 {
		return fmt.Errorf("%w: adapter %q compat range min %s > max %s",
			ErrInvalidMetadata, m.Identity, m.Compat.Min, m.Compat.Max)
	}
	return nil
}

// equal reports structural equality, used for idempotent re-registration.
func (m Metadata) equal(o Metadata) bool {
	if m.Identity != o.Identity ||
		m.Version != o.Version ||
		m.Compat != o.Compat ||
		m.Priority != o.Priority ||
		m.ModulePath != o.ModulePath {
		return false
	}
	return equalStrings(m.Capabilities, o.Capabilities) &&
		equalStrings(m.LegacyPaths, o.LegacyPaths)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
