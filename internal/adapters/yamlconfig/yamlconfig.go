// Package yamlconfig provides the YAML-file implementation of the "config"
// capability. The file is read once at instantiation; a registry reset forces
// a re-read, which is the supported way to pick up file changes.
package yamlconfig

import (
	"context"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/everstacklabs/chassis/internal/adapters"
	"github.com/everstacklabs/chassis/internal/capability"
	"github.com/everstacklabs/chassis/internal/registry"
	"github.com/everstacklabs/chassis/internal/resolve"
)

// ModulePath is the canonical resolution path for this adapter.
const ModulePath = "chassis/adapters/yamlconfig"

var filePath = "chassis.yaml" // set via Configure before resolution

func init() {
	resolve.Provide(ModulePath, func(ctx context.Context) (any, error) {
		return Load(filePath)
	})
	adapters.Announce(registry.Metadata{
		Identity:     "config.yaml",
		Capabilities: []string{capability.Config},
		Version:      registry.Version{Major: 1, Minor: 0, Patch: 3},
		Compat: registry.CompatRange{
			Min: registry.Version{Major: 1},
			Max: registry.Version{Major: 1, Minor: 99},
		},
		Priority:   10,
		ModulePath: ModulePath,
	})
}

// Configure sets the file read by instances created after this call.
func Configure(path string) { filePath = path }

// Source holds a flattened view of one YAML document. Nested maps become
// dotted keys; scalars are kept as their string form.
type Source struct {
	values map[string]string
}

// Load reads and flattens a YAML file.
func Load(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	s := &Source{values: make(map[string]string)}
	flatten("", doc, s.values)
	return s, nil
}

func flatten(prefix string, node map[string]any, out map[string]string) {
	for k, v := range node {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		switch val := v.(type) {
		case map[string]any:
			flatten(key, val, out)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprintf("%v", val)
		}
	}
}

// Lookup returns the value for a dotted key and whether it exists.
func (s *Source) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns all known keys, sorted.
func (s *Source) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
