// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package bootstrap

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/matthewdeanmartin/hermetic/lib/binhash"
	"github.com/matthewdeanmartin/hermetic/lib/process"
	"github.com/matthewdeanmartin/hermetic/policy"
	"github.com/matthewdeanmartin/hermetic/target"
)

// Injector hands a foreign-interpreter target off to its own runtime
// with enforcement hooks installed ahead of the target's startup.
type Injector struct {
	// execFunc replaces the process image; swapped in tests. Nil
	// selects the platform implementation.
	execFunc func(argv0 string, argv []string, env []string) error
}

// NewInjector returns an injector using the platform exec.
func NewInjector() *Injector {
	return &Injector{}
}

// Prepare materializes the ephemeral hook directory containing
// sitecustomize.py. The caller owns cleanup on every path that does
// not end in a successful process replacement.
func (in *Injector) Prepare() (string, error) {
	dir, err := os.MkdirTemp("", "hermetic_site_")
	if err != nil {
		return "", fmt.Errorf("bootstrap: creating hook directory: %w", err)
	}
	hookPath := filepath.Join(dir, "sitecustomize.py")
	if err := os.WriteFile(hookPath, []byte(siteCustomize), 0o644); err != nil {
		os.RemoveAll(dir)
		return "", fmt.Errorf("bootstrap: writing %s: %w", hookPath, err)
	}
	return dir, nil
}

// BuildEnv derives the child environment from base: the hook
// directory is prepended to PYTHONPATH (preserving any existing
// value), and the encoded policy replaces any inherited transport
// variable so a nested launch cannot smuggle a stale policy through.
func BuildEnv(base []string, encodedPolicy, siteDir string) []string {
	pythonPath := siteDir

	env := make([]string, 0, len(base)+2)
	for _, kv := range base {
		switch {
		case strings.HasPrefix(kv, policy.TransportEnv+"="):
			continue
		case strings.HasPrefix(kv, "PYTHONPATH="):
			if existing := strings.TrimPrefix(kv, "PYTHONPATH="); existing != "" {
				pythonPath = siteDir + string(os.PathListSeparator) + existing
			}
			continue
		}
		env = append(env, kv)
	}

	env = append(env, "PYTHONPATH="+pythonPath)
	env = append(env, policy.TransportEnv+"="+encodedPolicy)
	return env
}

// Launch replaces this process with the foreign target under the
// encoded policy. On platforms with exec semantics a successful
// launch never returns; elsewhere the fallback runs the child to
// completion and the returned error carries its exit code. Any
// failure before the handoff removes the hook directory and reports
// a bootstrap error.
func (in *Injector) Launch(spec *target.Spec, p policy.Policy) error {
	if spec.Kind != target.KindForeignExecutable {
		return fmt.Errorf("bootstrap: target %s is not a foreign executable", spec.Name)
	}
	if spec.Digest == "" {
		return fmt.Errorf("bootstrap: foreign target %s carries no integrity digest", spec.Name)
	}

	encoded, err := policy.EncodeTransport(p)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}

	siteDir, err := in.Prepare()
	if err != nil {
		return err
	}

	env := BuildEnv(os.Environ(), encoded, siteDir)
	argv := append([]string{spec.Path}, spec.Args...)

	// The digest recorded at resolution is re-checked here, directly
	// before the handoff, so a file swapped in between is refused.
	if err := binhash.VerifyFile(spec.Path, spec.Digest); err != nil {
		os.RemoveAll(siteDir)
		return fmt.Errorf("bootstrap: %w", err)
	}

	execFunction := in.execFunc
	if execFunction == nil {
		execFunction = execProcess
	}

	err = execFunction(spec.Path, argv, env)

	// Reaching this point means the process was not replaced: either
	// exec failed or a non-exec platform ran the child to completion.
	// Either way the hook directory has no further consumer.
	os.RemoveAll(siteDir)

	if err != nil {
		return wrapExecError(spec.Path, err)
	}
	return nil
}

// wrapExecError classifies a handoff failure. A child exit code from
// the non-exec fallback is the target's own result and passes
// through; anything else is a bootstrap failure.
func wrapExecError(path string, err error) error {
	var exitErr *process.ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	return fmt.Errorf("bootstrap: replacing process with %s: %w", path, err)
}
