// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package policy

// Overlay is one source's partial view of a policy. Nil pointer
// fields mean "this source does not speak to that field"; the
// distinction from a false/empty value is what makes field-by-field
// precedence work. AllowDomains replaces the accumulated list when
// non-nil, matching the other fields' override semantics.
type Overlay struct {
	NoNetwork      *bool    `yaml:"no_network,omitempty"`
	NoSubprocess   *bool    `yaml:"no_subprocess,omitempty"`
	FSReadonly     *bool    `yaml:"fs_readonly,omitempty"`
	FSRoot         *string  `yaml:"fs_root,omitempty"`
	StrictImports  *bool    `yaml:"strict_imports,omitempty"`
	AllowLocalhost *bool    `yaml:"allow_localhost,omitempty"`
	AllowDomains   []string `yaml:"allow_domains,omitempty"`
	Trace          *bool    `yaml:"trace,omitempty"`
}

// Apply writes the overlay's set fields onto p, leaving unset fields
// untouched.
func (o Overlay) Apply(p *Policy) {
	if o.NoNetwork != nil {
		p.NoNetwork = *o.NoNetwork
	}
	if o.NoSubprocess != nil {
		p.NoSubprocess = *o.NoSubprocess
	}
	if o.FSReadonly != nil {
		p.FSReadonly = *o.FSReadonly
	}
	if o.FSRoot != nil {
		p.FSRoot = *o.FSRoot
	}
	if o.StrictImports != nil {
		p.StrictImports = *o.StrictImports
	}
	if o.AllowLocalhost != nil {
		p.AllowLocalhost = *o.AllowLocalhost
	}
	if o.AllowDomains != nil {
		p.AllowDomains = normalizeDomains(o.AllowDomains)
	}
	if o.Trace != nil {
		p.Trace = *o.Trace
	}
}

// IsZero reports whether the overlay sets no fields at all.
func (o Overlay) IsZero() bool {
	return o.NoNetwork == nil &&
		o.NoSubprocess == nil &&
		o.FSReadonly == nil &&
		o.FSRoot == nil &&
		o.StrictImports == nil &&
		o.AllowLocalhost == nil &&
		o.AllowDomains == nil &&
		o.Trace == nil
}

// Clone returns a deep copy of the overlay.
func (o Overlay) Clone() Overlay {
	clone := o
	clone.NoNetwork = cloneBool(o.NoNetwork)
	clone.NoSubprocess = cloneBool(o.NoSubprocess)
	clone.FSReadonly = cloneBool(o.FSReadonly)
	clone.FSRoot = cloneString(o.FSRoot)
	clone.StrictImports = cloneBool(o.StrictImports)
	clone.AllowLocalhost = cloneBool(o.AllowLocalhost)
	clone.Trace = cloneBool(o.Trace)
	if o.AllowDomains != nil {
		clone.AllowDomains = make([]string, len(o.AllowDomains))
		copy(clone.AllowDomains, o.AllowDomains)
	}
	return clone
}

// mergeOverlays merges child onto parent: fields the child sets win,
// fields it leaves nil fall through to the parent.
func mergeOverlays(parent, child Overlay) Overlay {
	result := parent.Clone()
	if child.NoNetwork != nil {
		result.NoNetwork = cloneBool(child.NoNetwork)
	}
	if child.NoSubprocess != nil {
		result.NoSubprocess = cloneBool(child.NoSubprocess)
	}
	if child.FSReadonly != nil {
		result.FSReadonly = cloneBool(child.FSReadonly)
	}
	if child.FSRoot != nil {
		result.FSRoot = cloneString(child.FSRoot)
	}
	if child.StrictImports != nil {
		result.StrictImports = cloneBool(child.StrictImports)
	}
	if child.AllowLocalhost != nil {
		result.AllowLocalhost = cloneBool(child.AllowLocalhost)
	}
	if child.AllowDomains != nil {
		result.AllowDomains = make([]string, len(child.AllowDomains))
		copy(result.AllowDomains, child.AllowDomains)
	}
	if child.Trace != nil {
		result.Trace = cloneBool(child.Trace)
	}
	return result
}

func cloneBool(b *bool) *bool {
	if b == nil {
		return nil
	}
	value := *b
	return &value
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	value := *s
	return &value
}

// boolPtr and stringPtr build overlay fields from literals. Used by
// flag and environment parsing.
func boolPtr(b bool) *bool       { return &b }
func stringPtr(s string) *string { return &s }
