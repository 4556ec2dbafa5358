// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

//go:build !unix

package bootstrap

import (
	"errors"
	"os"
	"os/exec"

	"github.com/matthewdeanmartin/hermetic/lib/process"
)

// execProcess approximates process replacement on platforms without
// exec semantics: the child runs to completion with inherited stdio
// and its exit code comes back as a process.ExitError, so the
// caller's exit code propagation matches the exec path.
func execProcess(argv0 string, argv []string, env []string) error {
	var args []string
	if len(argv) > 1 {
		args = argv[1:]
	}
	cmd := exec.Command(argv0, args...)
	cmd.Env = env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &process.ExitError{Code: exitErr.ExitCode()}
	}
	return err
}
