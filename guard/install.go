// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"io"
	"os"

	"github.com/matthewdeanmartin/hermetic/policy"
	"github.com/matthewdeanmartin/hermetic/trace"
)

// Option adjusts a Context during InstallAll.
type Option func(*Context)

// WithTracer routes blocked-operation records through t instead of
// the default stderr tracer.
func WithTracer(t *trace.Tracer) Option {
	return func(c *Context) { c.tracer = t }
}

// WithStdio wires the target's standard streams. Nil arguments keep
// the process defaults.
func WithStdio(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(c *Context) {
		c.stdin = stdin
		c.stdout = stdout
		c.stderr = stderr
	}
}

// InstallAll freezes p into a Context with all four guards active.
// Guards with no restriction set still run their decision functions,
// so metadata endpoint hardening applies even to permissive policies.
func InstallAll(p policy.Policy, opts ...Option) *Context {
	c := &Context{
		network:    NewNetworkGuard(p),
		subprocess: NewSubprocessGuard(p),
		filesystem: NewFilesystemGuard(p),
		nativeload: NewNativeLoadGuard(p),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = trace.New(os.Stderr, p.Trace)
	}
	return c
}

// With runs fn against a freshly installed Context for p. Each call
// owns its Context outright; nothing is shared or reference counted,
// so nested and concurrent calls cannot observe each other's policy.
func With(p policy.Policy, fn func(*Context) error) error {
	return fn(InstallAll(p))
}
