// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/matthewdeanmartin/hermetic/guard"
	"github.com/matthewdeanmartin/hermetic/target"
)

// writerModule is the filesystem write probe. Writes, directory
// creation, and removal are denied wholesale under a read-only
// policy regardless of path.
func writerModule() target.Module {
	return target.Module{
		Name:  "writer-tool",
		Entry: writeFile,
		Callables: map[string]target.ToolFunc{
			"write":  writeFile,
			"mkdir":  makeDir,
			"remove": removePath,
		},
	}
}

// writeFile writes its trailing arguments to the named file, or
// copies stdin when no text is given.
func writeFile(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) < 2 {
		return fmt.Errorf("usage: %s <file> [text...]", argv[0])
	}
	name := argv[1]

	if len(argv) > 2 {
		line := strings.Join(argv[2:], " ") + "\n"
		if err := rt.WriteFile(name, []byte(line), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		return nil
	}

	f, err := rt.Create(name)
	if err != nil {
		return fmt.Errorf("creating %s: %w", name, err)
	}
	if _, err := io.Copy(f, rt.Stdin()); err != nil {
		f.Close()
		return fmt.Errorf("copying stdin to %s: %w", name, err)
	}
	return f.Close()
}

func makeDir(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) != 2 {
		return fmt.Errorf("usage: %s <directory>", argv[0])
	}
	if err := rt.MkdirAll(argv[1], 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", argv[1], err)
	}
	return nil
}

func removePath(ctx context.Context, rt *guard.Context, argv []string) error {
	if len(argv) != 2 {
		return fmt.Errorf("usage: %s <path>", argv[0])
	}
	if err := rt.Remove(argv[1]); err != nil {
		return fmt.Errorf("removing %s: %w", argv[1], err)
	}
	return nil
}
