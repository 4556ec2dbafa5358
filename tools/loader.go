// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"

	"github.com/matthewdeanmartin/hermetic/guard"
	"github.com/matthewdeanmartin/hermetic/target"
)

// loaderModule is the native code probe: open a plugin object or
// check import names against the loader policy. Under strict imports
// the open is denied before the object is mapped into the process.
func loaderModule() target.Module {
	return target.Module{
		Name:  "loader-tool",
		Entry: loadPlugin,
		Callables: map[string]target.ToolFunc{
			"open":  loadPlugin,
			"check": checkImports,
		},
	}
}

func loadPlugin(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) != 2 {
		return fmt.Errorf("usage: %s <plugin.so>", argv[0])
	}
	if _, err := rt.OpenPlugin(argv[1]); err != nil {
		return fmt.Errorf("loading %s: %w", argv[1], err)
	}
	fmt.Fprintf(rt.Stdout(), "loaded %s\n", argv[1])
	return nil
}

// checkImports probes the import policy for each name without
// loading anything.
func checkImports(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) < 2 {
		return fmt.Errorf("usage: %s <module>...", argv[0])
	}
	for _, name := range argv[1:] {
		if err := rt.CheckImport(name); err != nil {
			return err
		}
		fmt.Fprintf(rt.Stdout(), "allowed %s\n", name)
	}
	return nil
}
