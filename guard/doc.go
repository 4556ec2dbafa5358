// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package guard enforces capability restrictions at the points where
// guest code reaches for the outside world.
//
// The central type is [Context], built by [InstallAll] from a frozen
// [policy.Policy]. Every operation a restricted target may perform
// goes through a Context method (DialContext, Run, ReadFile, and so
// on); the method consults the owning guard, and on a Deny it emits
// one trace record and returns a [*Violation] instead of touching the
// real implementation. Decisions are pure functions of the frozen
// policy and the call arguments, so a Context is safe for concurrent
// use and two Contexts never share state.
//
// Four guards cover four surfaces. [NetworkGuard] decides connect and
// resolve by host, with a fixed cloud metadata endpoint denylist that
// applies under every policy and is unlocked only by an exact
// allowlist entry. [SubprocessGuard] refuses every spawn when the
// restriction is on; there is no spawn allowlist. [FilesystemGuard]
// refuses write-class operations under fs-readonly and, when a root
// is configured, confines reads to paths that canonicalize under it
// after symlink resolution. [NativeLoadGuard] refuses compiled module
// loads and FFI bridge imports under strict-imports.
//
// This is a policy net for cooperative or buggy code, not a kernel
// boundary: code that bypasses the Context bypasses the guards.
// [ProbeRunner] verifies the net by running a battery of operations
// that the guards must refuse ([ProbeTests]) and confirming each one
// comes back as a Violation.
//
// [With] is the embedding entry point: it installs a Context for a
// policy and runs a function against it, with no global state and no
// reference counting.
package guard
