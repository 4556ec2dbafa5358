// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/matthewdeanmartin/hermetic/policy"
)

// ProbeTest attempts an operation through a guarded Context and
// checks that the guards decide it correctly. Most probes expect the
// operation to be refused; a few are inverted and verify that an
// allowed operation stays allowed.
type ProbeTest struct {
	Name        string
	Description string
	Category    string // "network", "subprocess", "filesystem", "imports"
	Policy      policy.Policy
	Run         func(ctx context.Context, rt *Context) error
}

// ProbeResult holds the outcome of one probe.
type ProbeResult struct {
	Probe  *ProbeTest
	Passed bool
	Error  string // When the probe failed, describes the gap.
}

// expectBlocked reports nil when err is a Violation and a describing
// error otherwise. A nil err means the operation went through; a
// non-Violation error means the guard let the real implementation
// run and it failed on its own.
func expectBlocked(op string, err error) error {
	if err == nil {
		return fmt.Errorf("%s succeeded", op)
	}
	if !IsViolation(err) {
		return fmt.Errorf("%s reached the real implementation: %v", op, err)
	}
	return nil
}

// ProbeTests contains the guard verification battery.
var ProbeTests = []ProbeTest{
	// Network guard probes.
	{
		Name:        "network-external",
		Description: "Dial an external host under no-network",
		Category:    "network",
		Policy:      policy.Policy{NoNetwork: true},
		Run: func(ctx context.Context, rt *Context) error {
			conn, err := rt.DialContext(ctx, "tcp", "203.0.113.7:80")
			if conn != nil {
				conn.Close()
			}
			return expectBlocked("external dial", err)
		},
	},
	{
		Name:        "network-resolve",
		Description: "Resolve a hostname under no-network",
		Category:    "network",
		Policy:      policy.Policy{NoNetwork: true},
		Run: func(ctx context.Context, rt *Context) error {
			_, err := rt.LookupHost(ctx, "example.com")
			return expectBlocked("name resolution", err)
		},
	},
	{
		Name:        "network-metadata",
		Description: "Dial a cloud metadata endpoint under a permissive policy",
		Category:    "network",
		Policy:      policy.Policy{},
		Run: func(ctx context.Context, rt *Context) error {
			conn, err := rt.DialContext(ctx, "tcp", "169.254.169.254:80")
			if conn != nil {
				conn.Close()
			}
			return expectBlocked("metadata endpoint dial", err)
		},
	},
	{
		Name:        "network-metadata-allowlist",
		Description: "Substring allowlist entries must not unlock metadata endpoints",
		Category:    "network",
		Policy:      policy.Policy{AllowLocalhost: true, AllowDomains: []string{"169.254"}},
		Run: func(ctx context.Context, rt *Context) error {
			conn, err := rt.DialContext(ctx, "tcp", "169.254.169.254:80")
			if conn != nil {
				conn.Close()
			}
			return expectBlocked("metadata endpoint dial", err)
		},
	},
	{
		Name:        "network-loopback-denied",
		Description: "Dial loopback under no-network without allow-localhost",
		Category:    "network",
		Policy:      policy.Policy{NoNetwork: true},
		Run: func(ctx context.Context, rt *Context) error {
			conn, err := rt.DialContext(ctx, "tcp", "127.0.0.1:9")
			if conn != nil {
				conn.Close()
			}
			return expectBlocked("loopback dial", err)
		},
	},
	{
		Name:        "network-loopback-allowed",
		Description: "Loopback dials pass the guard when allow-localhost is set",
		Category:    "network",
		Policy:      policy.Policy{NoNetwork: true, AllowLocalhost: true},
		Run: func(ctx context.Context, rt *Context) error {
			conn, err := rt.DialContext(ctx, "tcp", "127.0.0.1:9")
			if conn != nil {
				conn.Close()
			}
			if IsViolation(err) {
				return fmt.Errorf("loopback dial refused despite allow-localhost: %v", err)
			}
			return nil
		},
	},

	// Subprocess guard probes.
	{
		Name:        "subprocess-exec",
		Description: "Spawn a child process under no-subprocess",
		Category:    "subprocess",
		Policy:      policy.Policy{NoSubprocess: true},
		Run: func(ctx context.Context, rt *Context) error {
			return expectBlocked("process spawn", rt.Run(ctx, "/bin/true"))
		},
	},
	{
		Name:        "subprocess-shell",
		Description: "Spawn a shell command under no-subprocess",
		Category:    "subprocess",
		Policy:      policy.Policy{NoSubprocess: true},
		Run: func(ctx context.Context, rt *Context) error {
			return expectBlocked("shell spawn", rt.Shell(ctx, "true"))
		},
	},

	// Filesystem guard probes.
	{
		Name:        "filesystem-write",
		Description: "Write a file under fs-readonly",
		Category:    "filesystem",
		Policy:      policy.Policy{FSReadonly: true},
		Run: func(ctx context.Context, rt *Context) error {
			path := filepath.Join(os.TempDir(), ".hermetic-selftest-write")
			err := rt.WriteFile(path, []byte("probe"), 0o600)
			if err == nil {
				os.Remove(path)
			}
			return expectBlocked("file write", err)
		},
	},
	{
		Name:        "filesystem-remove",
		Description: "Remove a file under fs-readonly",
		Category:    "filesystem",
		Policy:      policy.Policy{FSReadonly: true},
		Run: func(ctx context.Context, rt *Context) error {
			path := filepath.Join(os.TempDir(), ".hermetic-selftest-remove")
			return expectBlocked("file removal", rt.Remove(path))
		},
	},
	{
		Name:        "filesystem-root-escape",
		Description: "Read a path outside the confinement root",
		Category:    "filesystem",
		Policy:      policy.Policy{FSReadonly: true, FSRoot: os.TempDir()},
		Run: func(ctx context.Context, rt *Context) error {
			_, err := rt.ReadFile("/etc/passwd")
			return expectBlocked("read outside root", err)
		},
	},
	{
		Name:        "filesystem-root-read",
		Description: "Reads under the confinement root keep working",
		Category:    "filesystem",
		Policy:      policy.Policy{FSReadonly: true, FSRoot: os.TempDir()},
		Run: func(ctx context.Context, rt *Context) error {
			f, err := os.CreateTemp("", "hermetic-selftest-*")
			if err != nil {
				return fmt.Errorf("probe setup: %v", err)
			}
			f.Close()
			defer os.Remove(f.Name())
			if _, err := rt.ReadFile(f.Name()); err != nil {
				return fmt.Errorf("read under root refused: %v", err)
			}
			return nil
		},
	},

	// Native load guard probes.
	{
		Name:        "imports-plugin",
		Description: "Load a compiled plugin under strict-imports",
		Category:    "imports",
		Policy:      policy.Policy{StrictImports: true},
		Run: func(ctx context.Context, rt *Context) error {
			_, err := rt.OpenPlugin("/nonexistent/probe.so")
			return expectBlocked("plugin load", err)
		},
	},
	{
		Name:        "imports-ffi-name",
		Description: "Import an FFI bridge module under strict-imports",
		Category:    "imports",
		Policy:      policy.Policy{StrictImports: true},
		Run: func(ctx context.Context, rt *Context) error {
			return expectBlocked("ffi import", rt.CheckImport("ctypes"))
		},
	},
	{
		Name:        "imports-pure-name",
		Description: "Pure module imports stay allowed under strict-imports",
		Category:    "imports",
		Policy:      policy.Policy{StrictImports: true},
		Run: func(ctx context.Context, rt *Context) error {
			if err := rt.CheckImport("json"); err != nil {
				return fmt.Errorf("pure import refused: %v", err)
			}
			return nil
		},
	},
}

// ProbeRunner runs the guard verification battery.
type ProbeRunner struct {
	tests   []ProbeTest
	results []ProbeResult
}

// NewProbeRunner creates a runner over the full battery.
func NewProbeRunner() *ProbeRunner {
	return &ProbeRunner{
		tests:   ProbeTests,
		results: make([]ProbeResult, 0),
	}
}

// RunAll runs every probe, each against its own freshly installed
// Context, and returns the results.
func (r *ProbeRunner) RunAll(ctx context.Context) []ProbeResult {
	r.results = make([]ProbeResult, 0, len(r.tests))

	for i := range r.tests {
		test := &r.tests[i]
		result := ProbeResult{
			Probe:  test,
			Passed: true,
		}

		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := test.Run(probeCtx, InstallAll(test.Policy))
		cancel()

		if err != nil {
			result.Passed = false
			result.Error = err.Error()
		}

		r.results = append(r.results, result)
	}

	return r.results
}

// RunCategory runs only the probes in category.
func (r *ProbeRunner) RunCategory(ctx context.Context, category string) []ProbeResult {
	r.results = make([]ProbeResult, 0)

	for i := range r.tests {
		test := &r.tests[i]
		if test.Category != category {
			continue
		}

		result := ProbeResult{
			Probe:  test,
			Passed: true,
		}

		probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := test.Run(probeCtx, InstallAll(test.Policy))
		cancel()

		if err != nil {
			result.Passed = false
			result.Error = err.Error()
		}

		r.results = append(r.results, result)
	}

	return r.results
}

// Summary returns the pass and fail counts.
func (r *ProbeRunner) Summary() (passed, failed int) {
	for _, result := range r.results {
		if result.Passed {
			passed++
		} else {
			failed++
		}
	}
	return
}

// PrintResults writes probe results to a writer.
func (r *ProbeRunner) PrintResults(w io.Writer) {
	fmt.Fprintf(w, "Running capability guard self-test...\n\n")

	for _, result := range r.results {
		var status string
		if result.Passed {
			status = "[PASS]"
		} else {
			status = "[FAIL]"
		}

		fmt.Fprintf(w, "%s %s: %s\n", status, result.Probe.Name, result.Probe.Description)
		if !result.Passed {
			fmt.Fprintf(w, "       Guard gap: %s\n", result.Error)
		}
	}

	passed, failed := r.Summary()
	fmt.Fprintf(w, "\n%d/%d probes passed", passed, passed+failed)
	if failed == 0 {
		fmt.Fprintf(w, " - capability guards verified\n")
	} else {
		fmt.Fprintf(w, " - %d guard gaps detected!\n", failed)
	}
}

// HasFailures reports whether any probe detected a gap.
func (r *ProbeRunner) HasFailures() bool {
	_, failed := r.Summary()
	return failed > 0
}
