// Package lint checks announced adapter metadata before it reaches a
// registry, catching problems that would either fail registration outright or
// produce surprising resolution behavior at runtime. Used by the check
// command as a CI gate.
package lint

import (
	"fmt"
	"strings"

	"github.com/everstacklabs/chassis/internal/actions"
	"github.com/everstacklabs/chassis/internal/registry"
)

// Severity classifies lint issues.
type Severity int

const (
	SeverityError   Severity = iota // Would fail registration
	SeverityWarning                 // Registers fine but deserves a look
)

// Issue represents a single metadata problem.
type Issue struct {
	Severity Severity
	Identity string
	Field    string
	Message  string
}

func (i Issue) String() string {
	sev := "ERROR"
	if i.Severity == SeverityWarning {
		sev = "WARN"
	}
	return fmt.Sprintf("[%s] %s: %s: %s", sev, i.Identity, i.Field, i.Message)
}

// Result holds all lint issues.
type Result struct {
	Issues []Issue
}

// HasErrors returns true if there are any blocking errors.
func (r *Result) HasErrors() bool {
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CheckMetadata lints one adapter's metadata.
func CheckMetadata(m registry.Metadata) *Result {
	r := &Result{}

	// Everything Registry.Register would reject
	if m.Identity == "" {
		r.Issues = append(r.Issues, Issue{SeverityError, m.Identity, "identity", "required field is empty"})
	}
	if len(m.Capabilities) == 0 {
		r.Issues = append(r.Issues, Issue{SeverityError, m.Identity, "capabilities", "at least one capability required"})
	}
	if m.ModulePath == "" {
		r.Issues = append(r.Issues, Issue{SeverityError, m.Identity, "module_path", "required field is empty"})
	}
	if m.Compat.Min.Compare(m.Compat.Max) > 0 {
		r.Issues = append(r.Issues, Issue{SeverityError, m.Identity, "compat",
			fmt.Sprintf("min %s exceeds max %s", m.Compat.Min, m.Compat.Max)})
	}

	// Identity shape: resolution works regardless, but derived names
	// (tables, files) will differ from the identity
	if m.Identity != "" && actions.Sanitize(m.Identity) != m.Identity {
		r.Issues = append(r.Issues, Issue{SeverityWarning, m.Identity, "identity",
			fmt.Sprintf("not in canonical form, would sanitize to %q", actions.Sanitize(m.Identity))})
	}

	if (m.Version == registry.Version{}) {
		r.Issues = append(r.Issues, Issue{SeverityWarning, m.Identity, "version", "version is 0.0.0"})
	}

	if !m.Compat.Contains(registry.Framework) {
		r.Issues = append(r.Issues, Issue{SeverityWarning, m.Identity, "compat",
			fmt.Sprintf("range [%s, %s] excludes framework %s", m.Compat.Min, m.Compat.Max, registry.Framework)})
	}

	seen := map[string]bool{}
	for _, c := range m.Capabilities {
		if c == "" {
			r.Issues = append(r.Issues, Issue{SeverityError, m.Identity, "capabilities", "empty capability name"})
			continue
		}
		if seen[c] {
			r.Issues = append(r.Issues, Issue{SeverityWarning, m.Identity, "capabilities",
				fmt.Sprintf("capability %q declared more than once", c)})
		}
		seen[c] = true
	}

	for _, p := range m.LegacyPaths {
		if p == m.ModulePath {
			r.Issues = append(r.Issues, Issue{SeverityWarning, m.Identity, "legacy_paths",
				fmt.Sprintf("legacy path %q duplicates the canonical module path", p)})
		}
	}

	return r
}

// CheckSet lints a whole announcement set, adding cross-adapter checks on top
// of the per-metadata ones.
func CheckSet(metas []registry.Metadata) *Result {
	r := &Result{}

	byIdentity := map[string]int{}
	for _, m := range metas {
		r.Issues = append(r.Issues, CheckMetadata(m).Issues...)
		byIdentity[m.Identity]++
	}
	for identity, n := range byIdentity {
		if n > 1 {
			r.Issues = append(r.Issues, Issue{SeverityError, identity, "identity",
				fmt.Sprintf("announced %d times", n)})
		}
	}

	// Equal priorities within a capability are legal (registration order
	// breaks the tie) but usually unintentional across distinct adapters.
	byPriority := map[string][]string{}
	for _, m := range metas {
		for _, c := range m.Capabilities {
			key := fmt.Sprintf("%s/%d", c, m.Priority)
			byPriority[key] = append(byPriority[key], m.Identity)
		}
	}
	for key, ids := range byPriority {
		if len(ids) > 1 {
			capability := key[:strings.LastIndex(key, "/")]
			r.Issues = append(r.Issues, Issue{SeverityWarning, strings.Join(ids, ", "), "priority",
				fmt.Sprintf("equal priority for capability %q, ties break by registration order", capability)})
		}
	}

	return r
}

// FormatResult renders issues for terminal output.
func FormatResult(r *Result) string {
	if len(r.Issues) == 0 {
		return "all adapter metadata ok"
	}
	var b strings.Builder
	for _, i := range r.Issues {
		b.WriteString(i.String())
		b.WriteByte('\n')
	}
	errs := 0
	for _, i := range r.Issues {
		if i.Severity == SeverityError {
			errs++
		}
	}
	fmt.Fprintf(&b, "%d issue(s), %d blocking", len(r.Issues), errs)
	return b.String()
}
