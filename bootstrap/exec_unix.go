// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

//go:build unix

package bootstrap

import "golang.org/x/sys/unix"

// execProcess replaces the current process image. It returns only on
// failure.
func execProcess(argv0 string, argv []string, env []string) error {
	return unix.Exec(argv0, argv, env)
}
