// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import "github.com/matthewdeanmartin/hermetic/target"

// Register installs the built-in tool modules into reg. The launcher
// calls this once at startup before loading any registry manifest, so
// manifest entries can redirect a built-in name.
func Register(reg *target.Registry) error {
	for _, module := range []target.Module{
		echoNetModule(),
		readerModule(),
		writerModule(),
		spawnModule(),
		loaderModule(),
	} {
		if err := reg.RegisterModule(module); err != nil {
			return err
		}
	}
	return nil
}
