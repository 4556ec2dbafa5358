// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"

	"github.com/matthewdeanmartin/hermetic/guard"
	"github.com/matthewdeanmartin/hermetic/target"
)

// spawnModule is the subprocess probe: exec a child directly or run a
// shell command line. Under a no-subprocess policy the spawn is
// denied before any child process exists. A permitted child's exit
// status propagates unchanged through the launcher.
func spawnModule() target.Module {
	return target.Module{
		Name:  "spawn-tool",
		Entry: spawnRun,
		Callables: map[string]target.ToolFunc{
			"run":   spawnRun,
			"shell": spawnShell,
		},
	}
}

func spawnRun(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) < 2 {
		return fmt.Errorf("usage: %s <command> [args...]", argv[0])
	}
	return rt.Run(ctx, argv[1], argv[2:]...)
}

func spawnShell(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) != 2 {
		return fmt.Errorf("usage: %s <command-line>", argv[0])
	}
	return rt.Shell(ctx, argv[1])
}
