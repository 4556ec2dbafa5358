// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"path/filepath"
	"strings"

	"github.com/matthewdeanmartin/hermetic/policy"
)

// writeOps classifies the operations the readonly flag refuses.
// Everything else on the filesystem surface is a read.
var writeOps = map[string]bool{
	OpFSWrite:  true,
	OpFSCreate: true,
	OpFSRemove: true,
	OpFSRename: true,
	OpFSMkdir:  true,
}

// FilesystemGuard decides read and write operations. The root, when
// set, confines reads: a path must canonicalize under it after
// symlink resolution. Symlinks pointing outside the root therefore
// do not grant access to their targets.
type FilesystemGuard struct {
	readonly bool
	root     string
}

// NewFilesystemGuard freezes the filesystem fields of p into a
// guard, resolving the confinement root up front.
func NewFilesystemGuard(p policy.Policy) *FilesystemGuard {
	g := &FilesystemGuard{readonly: p.FSReadonly}
	if p.FSRoot != "" {
		g.root = canonicalRoot(p.FSRoot)
	}
	return g
}

// Check decides one filesystem operation on path.
func (g *FilesystemGuard) Check(op, path string) Decision {
	if !g.readonly {
		return allow("filesystem-unrestricted")
	}
	if writeOps[op] {
		return deny(policy.RestrictionFilesystem)
	}
	if g.root == "" {
		return allow("fs-read")
	}
	resolved, ok := canonicalPath(path)
	if !ok {
		// Unresolvable paths cannot be proven to live under the
		// root, and the underlying open would fail regardless.
		return deny(policy.RestrictionFilesystem)
	}
	if isWithin(resolved, g.root) {
		return allow("fs-root-read")
	}
	return deny(policy.RestrictionFilesystem)
}

// canonicalRoot resolves the confinement root once at construction.
// The root is validated to exist before a policy reaches the guards,
// so resolution failure here degrades to the cleaned absolute path.
func canonicalRoot(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Clean(root)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return filepath.Clean(abs)
	}
	return filepath.Clean(resolved)
}

// canonicalPath resolves path to its symlink-free absolute form. A
// path that does not exist yet resolves through its parent directory,
// so a pending create under a real directory still canonicalizes.
func canonicalPath(path string) (string, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		parent, parentErr := filepath.EvalSymlinks(filepath.Dir(abs))
		if parentErr != nil {
			return "", false
		}
		resolved = filepath.Join(parent, filepath.Base(abs))
	}
	return filepath.Clean(resolved), true
}

// isWithin reports whether path equals root or sits below it. Both
// arguments must already be canonical.
func isWithin(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}
