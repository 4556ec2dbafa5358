// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"github.com/matthewdeanmartin/hermetic/policy"
)

// SubprocessGuard decides process spawn operations. There is no
// allowlist: when no-subprocess is set every spawn is refused.
type SubprocessGuard struct {
	noSubprocess bool
}

// NewSubprocessGuard freezes the spawn restriction of p into a guard.
func NewSubprocessGuard(p policy.Policy) *SubprocessGuard {
	return &SubprocessGuard{noSubprocess: p.NoSubprocess}
}

// Check decides a spawn of argv0. The argument is carried into the
// decision detail by the caller; the guard itself needs only the flag.
func (g *SubprocessGuard) Check(op, argv0 string) Decision {
	if g.noSubprocess {
		return deny(policy.RestrictionSubprocess)
	}
	return allow("subprocess-unrestricted")
}
