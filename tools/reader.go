// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"

	"github.com/matthewdeanmartin/hermetic/guard"
	"github.com/matthewdeanmartin/hermetic/target"
)

// readerModule is the filesystem read probe: copy files to stdout or
// list a directory. Under a rooted read-only policy a path that
// canonicalizes outside the root is denied before the file is opened.
func readerModule() target.Module {
	return target.Module{
		Name:  "reader-tool",
		Entry: readFiles,
		Callables: map[string]target.ToolFunc{
			"cat":  readFiles,
			"list": listDir,
		},
	}
}

func readFiles(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) < 2 {
		return fmt.Errorf("usage: %s <file>...", argv[0])
	}
	for _, name := range argv[1:] {
		data, err := rt.ReadFile(name)
		if err != nil {
			return fmt.Errorf("reading %s: %w", name, err)
		}
		if _, err := rt.Stdout().Write(data); err != nil {
			return err
		}
	}
	return nil
}

func listDir(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) != 2 {
		return fmt.Errorf("usage: %s <directory>", argv[0])
	}
	entries, err := rt.ReadDir(argv[1])
	if err != nil {
		return fmt.Errorf("listing %s: %w", argv[1], err)
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() {
			name += "/"
		}
		fmt.Fprintln(rt.Stdout(), name)
	}
	return nil
}
