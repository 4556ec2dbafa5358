// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"strings"
)

// Environment variables read at the environment precedence level.
const (
	// EnvFlags carries space-separated launcher flags, parsed with
	// the same parser as the command line.
	EnvFlags = "POLICY_FLAGS"

	// EnvProfile carries comma-separated profile names.
	EnvProfile = "POLICY_PROFILE"

	// EnvFSRoot enables the filesystem restriction with the given
	// read root.
	EnvFSRoot = "POLICY_FS_ROOT"
)

// FromEnvironment builds the environment precedence level. lookup is
// os.LookupEnv in production and a map lookup in tests. Within the
// level, POLICY_FLAGS is read first, then POLICY_PROFILE appends
// profiles, then POLICY_FS_ROOT overrides the filesystem fields.
func FromEnvironment(lookup func(string) (string, bool)) (Level, error) {
	var level Level

	if value, ok := lookup(EnvFlags); ok && strings.TrimSpace(value) != "" {
		parsed, err := ParseFlagString(value)
		if err != nil {
			return Level{}, err
		}
		level = parsed
	}

	if value, ok := lookup(EnvProfile); ok {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				level.Profiles = append(level.Profiles, name)
			}
		}
	}

	if value, ok := lookup(EnvFSRoot); ok && value != "" {
		level.Overlay.FSReadonly = boolPtr(true)
		level.Overlay.FSRoot = stringPtr(value)
	}

	return level, nil
}
