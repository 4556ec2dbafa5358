// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"testing"

	"github.com/matthewdeanmartin/hermetic/policy"
)

func TestNativeLoadGuardOpen(t *testing.T) {
	strict := NewNativeLoadGuard(policy.Policy{StrictImports: true})
	open := NewNativeLoadGuard(policy.Policy{})

	if d := strict.CheckOpen("/usr/lib/anything.so"); d.Allowed {
		t.Error("plugin open allowed under strict-imports")
	}
	if d := strict.CheckOpen("/usr/lib/no-extension"); d.Allowed {
		t.Error("extensionless plugin open allowed under strict-imports")
	}
	if d := open.CheckOpen("/usr/lib/anything.so"); !d.Allowed {
		t.Errorf("plugin open denied without strict-imports: rule %q", d.Rule)
	}
}

func TestNativeLoadGuardImport(t *testing.T) {
	tests := []struct {
		name    string
		strict  bool
		module  string
		allowed bool
	}{
		{"ctypes denied when strict", true, "ctypes", false},
		{"cffi denied when strict", true, "cffi", false},
		{"denylist is case insensitive", true, "CTypes", false},
		{"shared object suffix denied", true, "fastmath.so", false},
		{"dylib suffix denied", true, "fastmath.dylib", false},
		{"dll suffix denied", true, "fastmath.DLL", false},
		{"pure module allowed when strict", true, "json", true},
		{"module containing ctypes substring allowed", true, "myctypeshelper", true},
		{"ctypes allowed when not strict", false, "ctypes", true},
		{"shared object allowed when not strict", false, "fastmath.so", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewNativeLoadGuard(policy.Policy{StrictImports: tt.strict})
			d := g.CheckImport(tt.module)
			if d.Allowed != tt.allowed {
				t.Errorf("CheckImport(%q) allowed = %v, want %v", tt.module, d.Allowed, tt.allowed)
			}
			if !d.Allowed && d.Rule != policy.RestrictionImports {
				t.Errorf("CheckImport(%q) rule = %q, want %q", tt.module, d.Rule, policy.RestrictionImports)
			}
		})
	}
}
