// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"log/slog"
	"os"

	"golang.org/x/term"
)

// newLogger creates the launcher's structured logger. When stderr is
// a terminal, slog.TextHandler gives human-readable output; when
// stderr is piped or redirected, slog.JSONHandler gives
// machine-parseable output. Debug level is enabled by --verbose or
// HERMETIC_DEBUG. Denial trace lines do not go through this logger;
// they have their own fixed shape on stderr.
func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose || os.Getenv("HERMETIC_DEBUG") != "" {
		level = slog.LevelDebug
	}
	options := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler)
}
