// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package policy assembles the immutable restriction record that
// drives every guard decision in a launcher run.
//
// The central type is [Policy]: which of the four restrictions are
// enabled (network, subprocess, filesystem write, native code load)
// and their exceptions (loopback allowance, domain allowlist, read
// root). A Policy is built exactly once per run by [Build] and frozen
// from then on; guards copy what they need at install time.
//
// Inputs arrive as precedence levels ([Level]), merged field by field
// in strictly increasing precedence: built-in defaults, then the
// configuration file ([FileConfig]), then the environment
// ([FromEnvironment]: POLICY_FLAGS, POLICY_PROFILE, POLICY_FS_ROOT),
// then explicit command-line flags ([RegisterFlags]). POLICY_FLAGS is
// parsed with the same flag definitions as the command line, so the
// two surfaces can never drift apart. A later source overrides only
// the fields it actually sets; [Overlay] keeps "unset" distinct from
// "set to the zero value" with pointer fields.
//
// Profiles are named field bundles ([Profile], [ProfileLoader]) with
// single inheritance, loaded from built-in definitions plus optional
// YAML files. Within one precedence level, profiles expand first and
// the level's explicit fields win over what the profiles implied.
//
// [EncodeTransport] and [DecodeTransport] carry a finished policy
// across the exec boundary as JSON for the bootstrap hook injected
// into foreign runtimes.
//
// Building a policy has no side effects. Validation ([Validate])
// rejects a filesystem read root that does not name an existing
// directory, before any guard is constructed.
package policy
