// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Hermetic launches a target inside a capability policy envelope.
//
// Usage:
//
//	hermetic [options] -- <target> [target-args...]
//	hermetic profiles
//	hermetic resolve <target> [target-args...]
//	hermetic self-test [flags]
//	hermetic audit <file>
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/matthewdeanmartin/hermetic/guard"
	"github.com/matthewdeanmartin/hermetic/launch"
	"github.com/matthewdeanmartin/hermetic/lib/process"
	"github.com/matthewdeanmartin/hermetic/lib/version"
	"github.com/matthewdeanmartin/hermetic/policy"
	"github.com/matthewdeanmartin/hermetic/trace"
)

// errUsage reports a malformed invocation. The separator is mandatory
// so flag ownership is never ambiguous.
var errUsage = errors.New("usage error: separate hermetic and target args with `--`")

func main() {
	if err := dispatch(os.Args[1:]); err != nil {
		os.Exit(exitStatus(err, os.Stderr))
	}
}

// exitStatus maps a dispatch error onto the exit code contract: 2 is
// reserved for policy denials, a permitted target's own exit status
// passes through unchanged, and everything else is 1.
func exitStatus(err error, stderr io.Writer) int {
	var violation *guard.Violation
	if errors.As(err, &violation) {
		fmt.Fprintf(stderr, "hermetic: %s\n", violation.Error())
		return 2
	}
	if code, ok := process.ExitCode(err); ok {
		return code
	}
	fmt.Fprintf(stderr, "error: %v\n", err)
	return 1
}

// dispatch routes the word subcommands; everything else is the
// launch form.
func dispatch(args []string) error {
	if len(args) == 0 {
		printUsage(os.Stderr)
		return errUsage
	}

	switch args[0] {
	case "profiles":
		return profilesCmd(args[1:])
	case "resolve":
		return resolveCmd(args[1:])
	case "self-test":
		return selfTestCmd(args[1:])
	case "audit":
		return auditCmd(args[1:])
	case "version", "--version", "-v":
		fmt.Printf("hermetic %s\n", version.Info())
		return nil
	case "help", "--help", "-h":
		printUsage(os.Stdout)
		return nil
	}
	return launchCmd(args)
}

// launchCmd implements the primary invocation: parse launcher flags,
// assemble the policy, and hand the post-separator argument vector to
// the launcher untouched.
func launchCmd(args []string) error {
	launcherArgs, targetArgs, found := splitArgs(args)
	if !found {
		return errUsage
	}
	if len(targetArgs) == 0 {
		return errors.New("usage error: no target named after `--`")
	}

	set := pflag.NewFlagSet("hermetic", pflag.ContinueOnError)
	set.SetOutput(io.Discard)
	flags := policy.RegisterFlags(set)
	configPath := set.String("config", "", "launcher configuration file")
	auditPath := set.String("audit", "", "append denial records to this file (.zst compresses)")
	registryPath := set.String("registry", "", "entry-point registry manifest (JSONC)")
	verbose := set.Bool("verbose", false, "enable debug logging")

	if err := set.Parse(launcherArgs); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(os.Stdout)
			return nil
		}
		return fmt.Errorf("usage error: %w", err)
	}
	if rest := set.Args(); len(rest) > 0 {
		return fmt.Errorf("usage error: unexpected argument %q before the separator", rest[0])
	}

	logger := newLogger(*verbose)

	fileConfig, configSource, err := findConfig(*configPath)
	if err != nil {
		return err
	}
	if configSource != "" {
		logger.Debug("configuration loaded", "path", configSource)
	}

	var profilesFile string
	if fileConfig != nil {
		profilesFile = fileConfig.ProfilesFile
	}
	loader, err := policy.LoadFromSearchPaths(profilesFile, logger)
	if err != nil {
		return err
	}

	envLevel, err := policy.FromEnvironment(os.LookupEnv)
	if err != nil {
		return err
	}

	pol, err := policy.Build(loader, fileConfig.Level(), envLevel, flags.Level())
	if err != nil {
		return err
	}
	logger.Debug("policy assembled", "policy", pol.String())

	tracer := trace.New(os.Stderr, pol.Trace)
	auditFile := *auditPath
	if auditFile == "" && fileConfig != nil {
		auditFile = fileConfig.AuditFile
	}
	if auditFile != "" {
		audit, err := trace.NewAuditWriter(auditFile)
		if err != nil {
			return err
		}
		tracer.SetAudit(audit)
		defer tracer.Close()
	}

	registry, err := buildRegistry(*registryPath, fileConfig)
	if err != nil {
		return err
	}

	launcher, err := launch.New(launch.Config{
		Registry: registry,
		Tracer:   tracer,
		Logger:   logger,
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return launcher.Run(ctx, pol, targetArgs)
}

// splitArgs partitions argv at the first separator token. The
// partition depends only on the separator position, never on which
// flags surround it.
func splitArgs(args []string) (launcherArgs, targetArgs []string, found bool) {
	for i, arg := range args {
		if arg == "--" {
			return args[:i], args[i+1:], true
		}
	}
	return args, nil, false
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `hermetic - run a program inside a capability policy envelope

USAGE
    hermetic [options] -- <target> [target-args...]
    hermetic <command> [args...]

COMMANDS
    profiles      List available policy profiles
    resolve       Print how a target resolves, without running it
    self-test     Run the guard probe battery
    audit         Decode an audit record file
    version       Show version
    help          Show this help

OPTIONS
    --no-network           Deny outbound connections and name resolution
    --allow-localhost      Permit loopback connections under --no-network
    --allow-domain=SUBSTR  Permit hosts matching SUBSTR (repeatable)
    --no-subprocess        Deny child process creation
    --fs-readonly[=ROOT]   Deny filesystem writes; ROOT also confines reads
    --strict-imports       Deny native code loading and FFI bridges
    --profile=NAME         Apply a named policy profile (repeatable)
    --trace                Emit one diagnostic line per denied operation
    --config=PATH          Launcher configuration file
    --audit=PATH           Append denial records to PATH (.zst compresses)
    --registry=PATH        Entry-point registry manifest (JSONC)
    --verbose              Enable debug logging

EXAMPLES
    # Deny all outbound network for a built-in tool
    hermetic --no-network -- echo-net-tool https://example.com

    # Confine reads to a directory and seal all writes
    hermetic --fs-readonly=./sandbox -- reader-tool ./sandbox/a.txt

    # Full lockdown for a foreign interpreter script
    hermetic --profile=hermetic --trace -- ./fetch.py

ENVIRONMENT
    POLICY_FLAGS       Space-separated launcher flags
    POLICY_PROFILE     Comma-separated profile names
    POLICY_FS_ROOT     Enable --fs-readonly with this read root
    HERMETIC_CONFIG    Launcher configuration file path
    HERMETIC_REGISTRY  Entry-point registry manifest path
    HERMETIC_DEBUG     Enable debug logging
`)
}
