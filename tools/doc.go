// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package tools provides the probe tools compiled into the launcher.
// Each tool is a small in-process program exercising one guarded
// capability surface, which makes enforcement observable end to end:
// run a tool under a restrictive policy and the denial surfaces as a
// policy violation with exit code 2.
//
// The tools contain no capability logic of their own. Every sensitive
// operation goes through the [guard.Context] handed to them by the
// launcher; a tool never holds a second route to the network, the
// process table, the filesystem, or the native loader.
package tools
