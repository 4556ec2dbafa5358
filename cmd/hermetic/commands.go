// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/matthewdeanmartin/hermetic/guard"
	"github.com/matthewdeanmartin/hermetic/policy"
	"github.com/matthewdeanmartin/hermetic/target"
	"github.com/matthewdeanmartin/hermetic/tools"
	"github.com/matthewdeanmartin/hermetic/trace"
)

// findConfig loads the launcher configuration. The path comes from
// the flag or the HERMETIC_CONFIG environment variable; with neither
// set the standard search paths are tried and a missing file is fine.
func findConfig(explicit string) (*policy.FileConfig, string, error) {
	if explicit == "" {
		explicit = os.Getenv("HERMETIC_CONFIG")
	}
	return policy.FindConfig(explicit)
}

// buildRegistry assembles the entry-point registry: compiled-in tools
// first, then an optional manifest that may redirect built-in names.
// The manifest path comes from the flag, the HERMETIC_REGISTRY
// environment variable, or the configuration file, in that order.
func buildRegistry(explicit string, fileConfig *policy.FileConfig) (*target.Registry, error) {
	registry := target.NewRegistry()
	if err := tools.Register(registry); err != nil {
		return nil, err
	}

	manifest := explicit
	if manifest == "" {
		manifest = os.Getenv("HERMETIC_REGISTRY")
	}
	if manifest == "" && fileConfig != nil {
		manifest = fileConfig.RegistryFile
	}
	if manifest != "" {
		if err := registry.LoadManifest(manifest); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

// profilesCmd lists the policy profiles visible to this invocation.
func profilesCmd(args []string) error {
	set := pflag.NewFlagSet("profiles", pflag.ContinueOnError)
	set.SetOutput(io.Discard)
	configPath := set.String("config", "", "launcher configuration file")
	if err := set.Parse(args); err != nil {
		return fmt.Errorf("usage error: %w", err)
	}

	fileConfig, _, err := findConfig(*configPath)
	if err != nil {
		return err
	}
	var profilesFile string
	if fileConfig != nil {
		profilesFile = fileConfig.ProfilesFile
	}
	loader, err := policy.LoadFromSearchPaths(profilesFile, nil)
	if err != nil {
		return err
	}

	fmt.Println("Available profiles:")
	for _, name := range loader.List() {
		if description := loader.Describe(name); description != "" {
			fmt.Printf("  %s - %s\n", name, description)
		} else {
			fmt.Printf("  %s\n", name)
		}
	}
	return nil
}

// resolveCmd prints the resolution of a target token without running
// anything.
func resolveCmd(args []string) error {
	set := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
	set.SetOutput(io.Discard)
	registryPath := set.String("registry", "", "entry-point registry manifest (JSONC)")
	configPath := set.String("config", "", "launcher configuration file")
	if err := set.Parse(args); err != nil {
		return fmt.Errorf("usage error: %w", err)
	}
	rest := set.Args()
	if len(rest) == 0 {
		return errors.New("usage: hermetic resolve <target> [target-args...]")
	}

	fileConfig, _, err := findConfig(*configPath)
	if err != nil {
		return err
	}
	registry, err := buildRegistry(*registryPath, fileConfig)
	if err != nil {
		return err
	}

	spec, err := target.NewResolver(registry).Resolve(rest[0], rest[1:])
	if err != nil {
		return err
	}
	printSpec(os.Stdout, spec)
	return nil
}

func printSpec(w io.Writer, spec *target.Spec) {
	fmt.Fprintf(w, "kind: %s\n", spec.Kind)
	fmt.Fprintf(w, "name: %s\n", spec.Name)
	if spec.Module != "" {
		fmt.Fprintf(w, "module: %s\n", spec.Module)
	}
	if spec.Callable != "" {
		fmt.Fprintf(w, "callable: %s\n", spec.Callable)
	}
	if spec.Path != "" {
		fmt.Fprintf(w, "path: %s\n", spec.Path)
	}
	if spec.Interpreter != "" {
		fmt.Fprintf(w, "interpreter: %s\n", spec.Interpreter)
	}
	if spec.Digest != "" {
		fmt.Fprintf(w, "digest: %s\n", spec.Digest)
	}
	if len(spec.Args) > 0 {
		fmt.Fprintf(w, "args: %s\n", strings.Join(spec.Args, " "))
	}
}

// selfTestCmd runs the guard probe battery: each probe installs
// guards from a restrictive policy and verifies the denial actually
// fires.
func selfTestCmd(args []string) error {
	set := pflag.NewFlagSet("self-test", pflag.ContinueOnError)
	set.SetOutput(io.Discard)
	category := set.String("category", "", "run only probes in this category")
	if err := set.Parse(args); err != nil {
		return fmt.Errorf("usage error: %w", err)
	}

	runner := guard.NewProbeRunner()
	ctx := context.Background()
	if *category != "" {
		runner.RunCategory(ctx, *category)
	} else {
		runner.RunAll(ctx)
	}
	runner.PrintResults(os.Stdout)

	if runner.HasFailures() {
		return errors.New("self-test failed")
	}
	return nil
}

// auditCmd decodes an audit record file and prints one denial line
// per record, timestamp first.
func auditCmd(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: hermetic audit <file>")
	}
	records, err := trace.ReadAuditFile(args[0])
	if err != nil {
		return err
	}
	for _, record := range records {
		fmt.Println(record.Line())
	}
	return nil
}
