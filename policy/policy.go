// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"sort"
	"strings"
)

// Policy is the immutable record of enabled restrictions and their
// exceptions for one launcher run. It is assembled once by Build and
// never mutated afterward; guards copy the fields they need at
// install time.
type Policy struct {
	// NoNetwork denies outbound connections and name resolution.
	NoNetwork bool

	// NoSubprocess denies spawning child processes.
	NoSubprocess bool

	// FSReadonly denies filesystem mutation. When FSRoot is also set,
	// reads are confined to paths under that root.
	FSReadonly bool

	// FSRoot is the read scope for FSReadonly. Empty means reads are
	// unrestricted.
	FSRoot string

	// StrictImports denies loading native code and known FFI bridges.
	StrictImports bool

	// AllowLocalhost permits loopback connections even under
	// NoNetwork.
	AllowLocalhost bool

	// AllowDomains holds lowercase substring patterns that unlock
	// matching hosts under NoNetwork. Order is preserved; entries are
	// deduplicated at build time.
	AllowDomains []string

	// Trace enables one diagnostic line per denied operation.
	Trace bool
}

// Clone returns a deep copy of the policy. Guards that retain a
// policy snapshot clone it so later slice mutations by the caller
// cannot reach them.
func (p Policy) Clone() Policy {
	clone := p
	if p.AllowDomains != nil {
		clone.AllowDomains = make([]string, len(p.AllowDomains))
		copy(clone.AllowDomains, p.AllowDomains)
	}
	return clone
}

// Restriction names as they appear in trace lines, violation errors,
// and profile definitions.
const (
	RestrictionNetwork    = "no-network"
	RestrictionSubprocess = "no-subprocess"
	RestrictionFilesystem = "fs-readonly"
	RestrictionImports    = "strict-imports"
)

// Active returns the names of the restrictions this policy enables,
// in a fixed order. Used for startup logging and the resolve
// subcommand.
func (p Policy) Active() []string {
	var active []string
	if p.NoNetwork {
		active = append(active, RestrictionNetwork)
	}
	if p.NoSubprocess {
		active = append(active, RestrictionSubprocess)
	}
	if p.FSReadonly {
		active = append(active, RestrictionFilesystem)
	}
	if p.StrictImports {
		active = append(active, RestrictionImports)
	}
	return active
}

// String renders the policy as a single human-readable line.
func (p Policy) String() string {
	parts := p.Active()
	if len(parts) == 0 {
		parts = []string{"unrestricted"}
	}
	var extras []string
	if p.AllowLocalhost {
		extras = append(extras, "allow-localhost")
	}
	if len(p.AllowDomains) > 0 {
		extras = append(extras, "allow-domains="+strings.Join(p.AllowDomains, ","))
	}
	if p.FSRoot != "" {
		extras = append(extras, "fs-root="+p.FSRoot)
	}
	return strings.Join(append(parts, extras...), " ")
}

// normalizeDomains lowercases allow patterns and drops duplicates and
// empty entries while preserving first-occurrence order.
func normalizeDomains(domains []string) []string {
	if len(domains) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(domains))
	result := make([]string, 0, len(domains))
	for _, domain := range domains {
		normalized := strings.ToLower(strings.TrimSpace(domain))
		if normalized == "" || seen[normalized] {
			continue
		}
		seen[normalized] = true
		result = append(result, normalized)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

// sortedNames returns map keys in sorted order. Shared by profile
// listing and error reporting.
func sortedNames[V any](m map[string]V) []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
