// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides hermetic's standard CBOR encoding
// configuration.
//
// Hermetic uses two serialization formats with a clear boundary:
//
//   - JSON for the cross-runtime policy handoff: the encoded policy a
//     foreign interpreter's bootstrap hook reads from its environment,
//     and the registry manifest. JSON is the contract there because the
//     consumer is not Go.
//   - CBOR for the audit sink: violation records appended to disk by
//     the tracer and read back by the audit subcommand.
//
// This package provides the shared CBOR encoding and decoding modes so
// that the writer and the reader encode identically without duplicating
// configuration. The encoder uses Core Deterministic Encoding (RFC 8949
// §4.2): sorted map keys, smallest integer encoding, no
// indefinite-length items. Same logical data always produces identical
// bytes, which keeps audit files diffable across runs.
//
// For buffer-oriented operations:
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// For stream-oriented operations (audit files):
//
//	encoder := codec.NewEncoder(w)
//	decoder := codec.NewDecoder(r)
package codec
