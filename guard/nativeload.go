// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"path/filepath"
	"strings"

	"github.com/matthewdeanmartin/hermetic/policy"
)

// ffiBridgeModules are import names that expose arbitrary foreign
// function calls. The list is fixed; there is no allowlist for it.
var ffiBridgeModules = map[string]bool{
	"ctypes": true,
	"cffi":   true,
}

// nativeSuffixes classify a load target as a compiled binary module.
var nativeSuffixes = map[string]bool{
	".so":    true,
	".dylib": true,
	".dll":   true,
}

// NativeLoadGuard decides native code load operations. Open covers
// direct binary loads; Import covers import-machinery names that can
// reach native code indirectly.
type NativeLoadGuard struct {
	strict bool
}

// NewNativeLoadGuard freezes the import restriction of p into a guard.
func NewNativeLoadGuard(p policy.Policy) *NativeLoadGuard {
	return &NativeLoadGuard{strict: p.StrictImports}
}

// CheckOpen decides a direct load of a compiled module at path. Every
// direct load is by definition native, so strict mode refuses all of
// them regardless of extension.
func (g *NativeLoadGuard) CheckOpen(path string) Decision {
	if g.strict {
		return deny(policy.RestrictionImports)
	}
	return allow("nativeload-unrestricted")
}

// CheckImport decides an import by name. Strict mode refuses names on
// the FFI-bridge denylist and names carrying a native binary suffix;
// everything else stays allowed even in strict mode.
func (g *NativeLoadGuard) CheckImport(name string) Decision {
	if !g.strict {
		return allow("nativeload-unrestricted")
	}
	base := strings.ToLower(strings.TrimSpace(name))
	if ffiBridgeModules[base] {
		return deny(policy.RestrictionImports)
	}
	if nativeSuffixes[strings.ToLower(filepath.Ext(base))] {
		return deny(policy.RestrictionImports)
	}
	return allow("import-allowed")
}
