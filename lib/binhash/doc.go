// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package binhash provides BLAKE3 content hashing for executable files.
//
// Hermetic records the digest of a foreign target executable when the
// target is resolved, and verifies it again immediately before the
// process image is replaced. The window between "inspected" and
// "executed" is where a swapped file would otherwise go unnoticed;
// comparing content digests closes it. Digests also appear in resolved
// target output and audit records so a run can be tied to the exact
// binary that was launched.
//
// The API surface:
//
//   - [HashFile] -- streams a file through BLAKE3, returning a [32]byte
//     digest with constant memory usage regardless of file size
//   - [HashBytes] -- digest of an in-memory buffer
//   - [FormatDigest] / [ParseDigest] -- canonical hex string form
//   - [VerifyFile] -- recompute-and-compare, returning a refusal error
//     on mismatch
//
// This package has no dependencies on other hermetic packages.
package binhash
