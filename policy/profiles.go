// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Profile is a named bundle of policy fields. Profiles support single
// inheritance: a child's set fields override the parent's, field by
// field.
type Profile struct {
	Description string `yaml:"description,omitempty"`
	Inherit     string `yaml:"inherit,omitempty"`
	Overlay     `yaml:",inline"`
}

// ProfilesConfig is the on-disk shape of a profiles file.
type ProfilesConfig struct {
	Profiles map[string]*Profile `yaml:"profiles"`
}

// ParseProfilesConfig parses profiles from YAML bytes.
func ParseProfilesConfig(data []byte) (*ProfilesConfig, error) {
	var config ProfilesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing profiles: %w", err)
	}
	return &config, nil
}

// LoadProfilesConfig reads and parses a profiles file.
func LoadProfilesConfig(path string) (*ProfilesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profiles file: %w", err)
	}
	config, err := ParseProfilesConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return config, nil
}

// ProfileLoader loads and resolves policy profiles.
type ProfileLoader struct {
	configs  []*ProfilesConfig
	resolved map[string]Overlay
	logger   *slog.Logger
}

// NewProfileLoader creates a new profile loader.
func NewProfileLoader() *ProfileLoader {
	return &ProfileLoader{
		resolved: make(map[string]Overlay),
	}
}

// SetLogger enables verbose logging during profile loading and
// resolution.
func (l *ProfileLoader) SetLogger(logger *slog.Logger) {
	l.logger = logger
}

func (l *ProfileLoader) log(msg string, args ...any) {
	if l.logger != nil {
		l.logger.Debug(msg, args...)
	}
}

// LoadDefaults loads the built-in profiles.
func (l *ProfileLoader) LoadDefaults() error {
	config, err := ParseProfilesConfig([]byte(defaultProfilesYAML))
	if err != nil {
		return fmt.Errorf("parsing built-in profiles: %w", err)
	}
	l.configs = append(l.configs, config)
	l.log("loaded built-in profiles", "count", len(config.Profiles))
	return nil
}

// LoadFile loads profiles from a YAML file. Later-loaded files
// override earlier ones name-by-name.
func (l *ProfileLoader) LoadFile(path string) error {
	config, err := LoadProfilesConfig(path)
	if err != nil {
		return err
	}
	l.configs = append(l.configs, config)
	l.log("loaded profiles from file", "path", path, "count", len(config.Profiles))
	return nil
}

// Resolve resolves a profile by name into the overlay it denotes,
// applying inheritance. Later-loaded configs override earlier ones.
func (l *ProfileLoader) Resolve(name string) (Overlay, error) {
	return l.resolve(name, make(map[string]bool))
}

func (l *ProfileLoader) resolve(name string, visiting map[string]bool) (Overlay, error) {
	if overlay, ok := l.resolved[name]; ok {
		return overlay.Clone(), nil
	}
	if visiting[name] {
		return Overlay{}, fmt.Errorf("profile inheritance cycle at %q", name)
	}
	visiting[name] = true

	// Find the profile definition (last config wins).
	var profile *Profile
	for _, config := range l.configs {
		if candidate, ok := config.Profiles[name]; ok {
			profile = candidate
		}
	}
	if profile == nil {
		return Overlay{}, fmt.Errorf("unknown profile: %s", name)
	}

	overlay := profile.Overlay.Clone()
	if profile.Inherit != "" {
		l.log("resolving parent profile", "child", name, "parent", profile.Inherit)
		parent, err := l.resolve(profile.Inherit, visiting)
		if err != nil {
			return Overlay{}, fmt.Errorf("resolving parent of %q: %w", name, err)
		}
		overlay = mergeOverlays(parent, overlay)
	}

	l.resolved[name] = overlay
	l.log("profile resolved", "name", name)
	return overlay.Clone(), nil
}

// List returns all available profile names, sorted.
func (l *ProfileLoader) List() []string {
	names := make(map[string]*Profile)
	for _, config := range l.configs {
		for name, profile := range config.Profiles {
			names[name] = profile
		}
	}
	return sortedNames(names)
}

// Describe returns the description of a profile, or "" when the
// profile is unknown or undescribed.
func (l *ProfileLoader) Describe(name string) string {
	description := ""
	for _, config := range l.configs {
		if profile, ok := config.Profiles[name]; ok && profile.Description != "" {
			description = profile.Description
		}
	}
	return description
}

// ProfilesSearchPaths returns the paths searched for a user profiles
// file, in load order.
func ProfilesSearchPaths() []string {
	var paths []string

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "hermetic", "profiles.yaml"))
	}

	paths = append(paths, "/etc/hermetic/profiles.yaml")
	return paths
}

// LoadFromSearchPaths creates a loader with the built-in profiles
// plus any profiles files found at the standard locations and the
// explicit path (when non-empty, the file must exist).
func LoadFromSearchPaths(explicit string, logger *slog.Logger) (*ProfileLoader, error) {
	loader := NewProfileLoader()
	loader.SetLogger(logger)

	if err := loader.LoadDefaults(); err != nil {
		return nil, err
	}

	for _, path := range ProfilesSearchPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := loader.LoadFile(path); err != nil {
				return nil, err
			}
		} else {
			loader.log("profiles file not found", "path", path)
		}
	}

	if explicit != "" {
		if err := loader.LoadFile(explicit); err != nil {
			return nil, err
		}
	}

	return loader, nil
}

// defaultProfilesYAML contains the built-in profile definitions.
const defaultProfilesYAML = `
profiles:
  net-hermetic:
    description: "Deny outbound network, loopback stays open"
    no_network: true
    allow_localhost: true

  exec-deny:
    description: "Deny child process creation"
    no_subprocess: true

  fs-sealed:
    description: "Deny filesystem mutation"
    fs_readonly: true

  hermetic:
    description: "All four restrictions"
    inherit: net-hermetic
    no_subprocess: true
    fs_readonly: true
    strict_imports: true
`
