// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers for the hermetic
// launcher:
//
//   - Fatal error reporting to stderr when the structured logger may
//     not be initialized (pre-logger).
//   - [ExitError], the error type that carries a target's exit status
//     from a tool callable or a spawned process back to the final
//     os.Exit in main().
//
// The launcher's exit-code contract reserves 2 for policy violations;
// ExitError exists so a permitted target's own status travels the
// error path without being reclassified.
package process
