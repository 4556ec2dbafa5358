// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// FileConfig is the on-disk launcher configuration. The policy
// section participates in the precedence merge; the remaining keys
// point the launcher at auxiliary files.
type FileConfig struct {
	Policy FileSection `yaml:"policy"`

	// ProfilesFile names an additional profiles YAML file to load on
	// top of the built-ins.
	ProfilesFile string `yaml:"profiles_file,omitempty"`

	// RegistryFile names a JSONC manifest of entry-point names.
	RegistryFile string `yaml:"registry_file,omitempty"`

	// AuditFile names a CBOR audit sink for violation records. A
	// .zst suffix selects zstd compression.
	AuditFile string `yaml:"audit_file,omitempty"`
}

// FileSection is the policy portion of a configuration file: profile
// names plus the same fields the flags expose.
type FileSection struct {
	Profiles []string `yaml:"profiles,omitempty"`
	Overlay  `yaml:",inline"`
}

// Level converts the file's policy section into a precedence level.
func (c *FileConfig) Level() Level {
	if c == nil {
		return Level{}
	}
	return Level{Profiles: c.Policy.Profiles, Overlay: c.Policy.Overlay}
}

// ParseFileConfig parses a configuration file from YAML bytes.
func ParseFileConfig(data []byte) (*FileConfig, error) {
	var config FileConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &config, nil
}

// LoadFileConfig reads and parses a configuration file.
func LoadFileConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	config, err := ParseFileConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// ConfigSearchPaths returns the paths searched for a configuration
// file when none is named explicitly.
func ConfigSearchPaths() []string {
	var paths []string

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "hermetic", "config.yaml"))
	}

	paths = append(paths, "/etc/hermetic/config.yaml")
	return paths
}

// FindConfig loads the configuration file. An explicit path must
// exist; otherwise the search paths are tried in order and a missing
// file is not an error. Returns the config (nil when none found) and
// the path it was loaded from.
func FindConfig(explicit string) (*FileConfig, string, error) {
	if explicit != "" {
		config, err := LoadFileConfig(explicit)
		if err != nil {
			return nil, "", err
		}
		return config, explicit, nil
	}

	for _, path := range ConfigSearchPaths() {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		config, err := LoadFileConfig(path)
		if err != nil {
			return nil, "", err
		}
		return config, path, nil
	}

	return nil, "", nil
}
