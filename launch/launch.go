// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Package launch wires resolution, guard installation, and the
// foreign handoff into the single run path behind the command line.
//
// The ordering guarantee lives here: for in-process targets all four
// guards are installed before the target function is looked at, and
// foreign targets never execute in this process at all.
package launch

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/matthewdeanmartin/hermetic/bootstrap"
	"github.com/matthewdeanmartin/hermetic/guard"
	"github.com/matthewdeanmartin/hermetic/policy"
	"github.com/matthewdeanmartin/hermetic/target"
	"github.com/matthewdeanmartin/hermetic/trace"
)

// ForeignLauncher hands a resolved foreign target to its own
// runtime. Satisfied by *bootstrap.Injector.
type ForeignLauncher interface {
	Launch(spec *target.Spec, pol policy.Policy) error
}

// Config assembles a Launcher.
type Config struct {
	// Registry is the entry-point table resolution consults.
	Registry *target.Registry

	// Resolver overrides the default resolver over Registry.
	Resolver *target.Resolver

	// Injector overrides the bootstrap injector.
	Injector ForeignLauncher

	// Tracer receives blocked-operation records. Nil selects the
	// guard package's default stderr tracer.
	Tracer *trace.Tracer

	// Logger for launch diagnostics.
	Logger *slog.Logger

	// Stdin, Stdout, Stderr are wired through to in-process targets.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// Launcher executes resolved targets under a policy.
type Launcher struct {
	registry *target.Registry
	resolver *target.Resolver
	injector ForeignLauncher
	tracer   *trace.Tracer
	logger   *slog.Logger
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
}

// New creates a Launcher.
func New(config Config) (*Launcher, error) {
	if config.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}

	resolver := config.Resolver
	if resolver == nil {
		resolver = target.NewResolver(config.Registry)
	}

	injector := config.Injector
	if injector == nil {
		injector = bootstrap.NewInjector()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Launcher{
		registry: config.Registry,
		resolver: resolver,
		injector: injector,
		tracer:   config.Tracer,
		logger:   logger,
		stdin:    config.Stdin,
		stdout:   config.Stdout,
		stderr:   config.Stderr,
	}, nil
}

// Resolve resolves a target token without executing anything.
func (l *Launcher) Resolve(token string, args []string) (*target.Spec, error) {
	return l.resolver.Resolve(token, args)
}

// Run resolves targetArgv[0] and executes it under pol. The result
// is nil when the target finished with code 0; a *guard.Violation
// when a capability was denied; a *process.ExitError carrying the
// target's own exit code; any other error is launcher-internal.
func (l *Launcher) Run(ctx context.Context, pol policy.Policy, targetArgv []string) error {
	if len(targetArgv) == 0 {
		return fmt.Errorf("no target specified")
	}

	spec, err := l.resolver.Resolve(targetArgv[0], targetArgv[1:])
	if err != nil {
		return err
	}

	l.logger.Debug("target resolved",
		"kind", spec.Kind.String(),
		"name", spec.Name,
		"module", spec.Module,
		"path", spec.Path,
	)

	if spec.Kind == target.KindForeignExecutable {
		return l.injector.Launch(spec, pol)
	}

	// Guards are in place before the target function is even looked up.
	opts := []guard.Option{guard.WithStdio(l.stdin, l.stdout, l.stderr)}
	if l.tracer != nil {
		opts = append(opts, guard.WithTracer(l.tracer))
	}
	rt := guard.InstallAll(pol, opts...)

	fn, err := l.registry.Lookup(spec.Module, spec.Callable)
	if err != nil {
		return err
	}

	argv := append([]string{spec.Name}, spec.Args...)
	return fn(ctx, rt, argv)
}
