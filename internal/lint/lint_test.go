package lint

import (
	"strings"
	"testing"

	"github.com/everstacklabs/chassis/internal/registry"
)

func goodMeta(identity string) registry.Metadata {
	return registry.Metadata{
		Identity:     identity,
		Capabilities: []string{"cache"},
		Version:      registry.Version{Major: 1},
		Compat: registry.CompatRange{
			Min: registry.Version{Major: 1},
			Max: registry.Version{Major: 1, Minor: 99},
		},
		Priority:   10,
		ModulePath: "chassis/adapters/" + identity,
	}
}

func TestCleanMetadataPasses(t *testing.T) {
	r := CheckMetadata(goodMeta("cache.memory"))
	if len(r.Issues) != 0 {
		t.Errorf("expected no issues, got %v", r.Issues)
	}
}

func TestErrorsMatchRegistration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*registry.Metadata)
		field  string
	}{
		{"empty identity", func(m *registry.Metadata) { m.Identity = "" }, "identity"},
		{"no capabilities", func(m *registry.Metadata) { m.Capabilities = nil }, "capabilities"},
		{"no module path", func(m *registry.Metadata) { m.ModulePath = "" }, "module_path"},
		{"inverted compat", func(m *registry.Metadata) {
			m.Compat = registry.CompatRange{Min: registry.Version{Major: 2}, Max: registry.Version{Major: 1}}
		}, "compat"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := goodMeta("cache.memory")
			tt.mutate(&m)

			r := CheckMetadata(m)
			if !r.HasErrors() {
				t.Fatal("expected a blocking error")
			}
			found := false
			for _, i := range r.Issues {
				if i.Severity == SeverityError && i.Field == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("expected error on field %s, got %v", tt.field, r.Issues)
			}
		})
	}
}

func TestWarnings(t *testing.T) {
	m := goodMeta("Cache Memory") // not canonical form
	m.Version = registry.Version{}
	m.Compat = registry.CompatRange{Min: registry.Version{Major: 9}, Max: registry.Version{Major: 10}}
	m.Capabilities = []string{"cache", "cache"}
	m.LegacyPaths = []string{m.ModulePath}

	r := CheckMetadata(m)
	if r.HasErrors() {
		t.Fatalf("none of these should block: %v", r.Issues)
	}

	fields := map[string]bool{}
	for _, i := range r.Issues {
		fields[i.Field] = true
	}
	for _, f := range []string{"identity", "version", "compat", "capabilities", "legacy_paths"} {
		if !fields[f] {
			t.Errorf("expected warning on %s, got %v", f, r.Issues)
		}
	}
}

func TestCheckSetDuplicateIdentity(t *testing.T) {
	r := CheckSet([]registry.Metadata{goodMeta("cache.memory"), goodMeta("cache.memory")})
	if !r.HasErrors() {
		t.Fatal("expected duplicate announcement to be an error")
	}
}

func TestCheckSetPriorityTie(t *testing.T) {
	a := goodMeta("cache.memory")
	b := goodMeta("cache.redis")
	// Same capability, same priority
	r := CheckSet([]registry.Metadata{a, b})

	if r.HasErrors() {
		t.Fatalf("ties are not blocking: %v", r.Issues)
	}
	found := false
	for _, i := range r.Issues {
		if i.Field == "priority" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a priority tie warning, got %v", r.Issues)
	}
}

func TestFormatResult(t *testing.T) {
	if got := FormatResult(&Result{}); got != "all adapter metadata ok" {
		t.Errorf("empty result rendering = %q", got)
	}

	m := goodMeta("cache.memory")
	m.ModulePath = ""
	out := FormatResult(CheckMetadata(m))
	if !strings.Contains(out, "[ERROR]") || !strings.Contains(out, "module_path") {
		t.Errorf("unexpected rendering:\n%s", out)
	}
	if !strings.Contains(out, "1 blocking") {
		t.Errorf("expected blocking count:\n%s", out)
	}
}
