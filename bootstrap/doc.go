// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap carries enforcement across the exec boundary
// into foreign interpreters.
//
// A foreign target cannot be guarded in this process, so the
// [Injector] arranges for the target's own runtime to guard itself:
// it writes a self-contained sitecustomize.py hook into an ephemeral
// directory, prepends that directory to PYTHONPATH, encodes the
// policy into the transport environment variable, and replaces this
// process with the target executable. The interpreter runs the hook
// before any target code, so all four capability surfaces are
// guarded strictly before the first target instruction.
//
// The executable's BLAKE3 digest, recorded at resolution time, is
// re-checked immediately before the handoff; a mismatch aborts the
// launch. Failures before replacement remove the hook directory and
// leave nothing running.
package bootstrap
