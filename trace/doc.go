// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package trace renders guard denials for humans and for the record.
//
// [Tracer] is the single sink for every denied operation. With
// tracing enabled it writes one line per denial to stderr in a fixed,
// greppable shape:
//
//	[hermetic] blocked network.connect host=example.com reason=no-network
//
// The shape after the prefix is a contract ([FormatLine]); tooling
// built on it must not break across releases.
//
// Detail strings pass through [Redact] before reaching any output:
// values under credential-suggesting keys, authorization scheme
// payloads, and standalone token-shaped strings are replaced with a
// fixed marker, while hosts and paths survive for debuggability.
//
// [AuditWriter] optionally persists each denial as a deterministic
// CBOR [Record], with zstd compression when the path carries a .zst
// suffix. The sink is observational: encoding failures never abort
// the guarded run, and decisions never consult it.
package trace
