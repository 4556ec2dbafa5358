// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package tools

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matthewdeanmartin/hermetic/guard"
	"github.com/matthewdeanmartin/hermetic/lib/process"
	"github.com/matthewdeanmartin/hermetic/policy"
	"github.com/matthewdeanmartin/hermetic/target"
	"github.com/matthewdeanmartin/hermetic/trace"
)

// runTool invokes module:callable under pol with captured stdio and
// tracing, returning the tool's stdout, the trace output, and the
// tool error.
func runTool(t *testing.T, pol policy.Policy, module, callable string, argv ...string) (stdout, traced string, err error) {
	t.Helper()

	reg := target.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	fn, err := reg.Lookup(module, callable)
	if err != nil {
		t.Fatal(err)
	}

	var out, trc bytes.Buffer
	rt := guard.InstallAll(pol,
		guard.WithStdio(strings.NewReader(""), &out, &out),
		guard.WithTracer(trace.New(&trc, true)),
	)
	err = fn(context.Background(), rt, argv)
	return out.String(), trc.String(), err
}

func TestRegisterInstallsAllModules(t *testing.T) {
	reg := target.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{
		"echo-net-tool", "reader-tool", "writer-tool", "spawn-tool", "loader-tool",
	} {
		if _, ok := reg.Module(name); !ok {
			t.Errorf("module %s not registered", name)
		}
		if _, ok := reg.Entry(name); !ok {
			t.Errorf("entry alias %s not registered", name)
		}
	}

	for _, ref := range []struct{ module, callable string }{
		{"echo-net-tool", "fetch"},
		{"echo-net-tool", "resolve"},
		{"reader-tool", "cat"},
		{"reader-tool", "list"},
		{"writer-tool", "write"},
		{"writer-tool", "mkdir"},
		{"writer-tool", "remove"},
		{"spawn-tool", "run"},
		{"spawn-tool", "shell"},
		{"loader-tool", "open"},
		{"loader-tool", "check"},
	} {
		if _, err := reg.Lookup(ref.module, ref.callable); err != nil {
			t.Errorf("Lookup(%s, %s): %v", ref.module, ref.callable, err)
		}
	}
}

func TestRegisterTwiceFails(t *testing.T) {
	reg := target.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatal(err)
	}
	if err := Register(reg); err == nil {
		t.Error("double registration accepted")
	}
}

func TestEchoNetDeniedWithoutNetwork(t *testing.T) {
	_, traced, err := runTool(t, policy.Policy{NoNetwork: true},
		"echo-net-tool", "", "echo-net-tool", "https://example.com")
	if !guard.IsViolation(err) {
		t.Fatalf("error = %v, want violation", err)
	}
	want := "[hermetic] blocked network.connect host=example.com reason=no-network\n"
	if traced != want {
		t.Errorf("trace = %q, want %q", traced, want)
	}
}

func TestEchoNetSchemePrepended(t *testing.T) {
	// A bare hostname argument still reaches the dialer as that host.
	_, traced, err := runTool(t, policy.Policy{NoNetwork: true},
		"echo-net-tool", "fetch", "echo-net-tool", "example.com")
	if !guard.IsViolation(err) {
		t.Fatalf("error = %v, want violation", err)
	}
	if !strings.Contains(traced, "host=example.com") {
		t.Errorf("trace = %q, want host=example.com", traced)
	}
}

func TestEchoNetResolveDenied(t *testing.T) {
	_, traced, err := runTool(t, policy.Policy{NoNetwork: true},
		"echo-net-tool", "resolve", "echo-net-tool", "example.com")
	if !guard.IsViolation(err) {
		t.Fatalf("error = %v, want violation", err)
	}
	if !strings.Contains(traced, "blocked network.resolve") {
		t.Errorf("trace = %q, want network.resolve denial", traced)
	}
}

func TestReaderReadsUnderRoot(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	pol := policy.Policy{FSReadonly: true, FSRoot: root}
	stdout, _, err := runTool(t, pol, "reader-tool", "", "reader-tool", path)
	if err != nil {
		t.Fatalf("read under root: %v", err)
	}
	if stdout != "hello\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestReaderDeniedOutsideRoot(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(t.TempDir(), "b.txt")
	if err := os.WriteFile(outside, []byte("secret"), 0o644); err != nil {
		t.Fatal(err)
	}

	pol := policy.Policy{FSReadonly: true, FSRoot: root}
	_, traced, err := runTool(t, pol, "reader-tool", "", "reader-tool", outside)
	if !guard.IsViolation(err) {
		t.Fatalf("error = %v, want violation", err)
	}
	if !strings.Contains(traced, "reason=fs-readonly") {
		t.Errorf("trace = %q, want fs-readonly denial", traced)
	}
}

func TestReaderListsDirectory(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "file.txt"), nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(filepath.Join(root, "sub"), 0o755); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runTool(t, policy.Policy{}, "reader-tool", "list", "reader-tool", root)
	if err != nil {
		t.Fatal(err)
	}
	if stdout != "file.txt\nsub/\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestWriterWritesArguments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if _, _, err := runTool(t, policy.Policy{}, "writer-tool", "", "writer-tool", path, "one", "two"); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one two\n" {
		t.Errorf("file = %q", data)
	}
}

func TestWriterMutationsDeniedReadonly(t *testing.T) {
	pol := policy.Policy{FSReadonly: true}
	dir := t.TempDir()

	tests := []struct {
		name     string
		callable string
		argv     []string
		op       string
	}{
		{"write", "write", []string{"writer-tool", filepath.Join(dir, "f"), "x"}, "filesystem.write"},
		{"mkdir", "mkdir", []string{"writer-tool", filepath.Join(dir, "d")}, "filesystem.mkdir"},
		{"remove", "remove", []string{"writer-tool", filepath.Join(dir, "f")}, "filesystem.remove"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, traced, err := runTool(t, pol, "writer-tool", tt.callable, tt.argv...)
			if !guard.IsViolation(err) {
				t.Fatalf("error = %v, want violation", err)
			}
			if !strings.Contains(traced, "blocked "+tt.op) {
				t.Errorf("trace = %q, want %s denial", traced, tt.op)
			}
		})
	}
}

func TestWriterMkdirAndRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "made", "deep")
	if _, _, err := runTool(t, policy.Policy{}, "writer-tool", "mkdir", "writer-tool", dir); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("directory not created: %v", err)
	}

	if _, _, err := runTool(t, policy.Policy{}, "writer-tool", "remove", "writer-tool", dir); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("directory not removed: %v", err)
	}
}

func TestSpawnDenied(t *testing.T) {
	pol := policy.Policy{NoSubprocess: true}

	_, traced, err := runTool(t, pol, "spawn-tool", "", "spawn-tool", "true")
	if !guard.IsViolation(err) {
		t.Fatalf("run error = %v, want violation", err)
	}
	if !strings.Contains(traced, "blocked subprocess.exec argv0=true reason=no-subprocess") {
		t.Errorf("trace = %q", traced)
	}

	_, traced, err = runTool(t, pol, "spawn-tool", "shell", "spawn-tool", "echo hi")
	if !guard.IsViolation(err) {
		t.Fatalf("shell error = %v, want violation", err)
	}
	if strings.Contains(traced, "echo hi") {
		t.Errorf("trace leaked the command line: %q", traced)
	}
}

func TestSpawnPropagatesExitCode(t *testing.T) {
	_, _, err := runTool(t, policy.Policy{}, "spawn-tool", "", "spawn-tool", "sh", "-c", "exit 4")
	code, ok := process.ExitCode(err)
	if !ok || code != 4 {
		t.Errorf("error = %v, want exit code 4", err)
	}
}

func TestSpawnRunsChild(t *testing.T) {
	stdout, _, err := runTool(t, policy.Policy{}, "spawn-tool", "", "spawn-tool", "sh", "-c", "echo spawned")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(stdout) != "spawned" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestLoaderOpenDeniedStrict(t *testing.T) {
	// The denial fires before the loader touches the path, so the
	// plugin file does not need to exist.
	_, traced, err := runTool(t, policy.Policy{StrictImports: true},
		"loader-tool", "", "loader-tool", "/nonexistent/ext.so")
	if !guard.IsViolation(err) {
		t.Fatalf("error = %v, want violation", err)
	}
	if !strings.Contains(traced, "blocked nativeload.open") {
		t.Errorf("trace = %q", traced)
	}
}

func TestLoaderCheckImports(t *testing.T) {
	pol := policy.Policy{StrictImports: true}

	if _, _, err := runTool(t, pol, "loader-tool", "check", "loader-tool", "ctypes"); !guard.IsViolation(err) {
		t.Fatalf("ctypes error = %v, want violation", err)
	}

	stdout, _, err := runTool(t, pol, "loader-tool", "check", "loader-tool", "json")
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	if stdout != "allowed json\n" {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestUsageErrorsAreNotViolations(t *testing.T) {
	tests := []struct {
		module   string
		callable string
	}{
		{"echo-net-tool", ""},
		{"echo-net-tool", "resolve"},
		{"reader-tool", ""},
		{"reader-tool", "list"},
		{"writer-tool", ""},
		{"writer-tool", "mkdir"},
		{"spawn-tool", ""},
		{"spawn-tool", "shell"},
		{"loader-tool", ""},
		{"loader-tool", "check"},
	}
	for _, tt := range tests {
		name := tt.module
		if tt.callable != "" {
			name += ":" + tt.callable
		}
		t.Run(name, func(t *testing.T) {
			_, _, err := runTool(t, policy.Policy{}, tt.module, tt.callable, tt.module)
			if err == nil {
				t.Fatal("missing arguments accepted")
			}
			if guard.IsViolation(err) {
				t.Errorf("usage error classified as violation: %v", err)
			}
			if !strings.Contains(err.Error(), "usage:") {
				t.Errorf("error = %v, want usage message", err)
			}
		})
	}
}
