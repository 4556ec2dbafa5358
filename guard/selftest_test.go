// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestProbeBatteryPasses(t *testing.T) {
	r := NewProbeRunner()
	results := r.RunAll(context.Background())

	if len(results) != len(ProbeTests) {
		t.Fatalf("ran %d probes, want %d", len(results), len(ProbeTests))
	}
	for _, res := range results {
		if !res.Passed {
			t.Errorf("probe %s failed: %s", res.Probe.Name, res.Error)
		}
	}
	if r.HasFailures() {
		t.Error("HasFailures reported a gap")
	}
}

func TestProbeRunnerPrintResults(t *testing.T) {
	r := NewProbeRunner()
	r.RunAll(context.Background())

	var buf bytes.Buffer
	r.PrintResults(&buf)

	out := buf.String()
	if !strings.Contains(out, "[PASS] network-metadata:") {
		t.Errorf("output missing metadata probe line:\n%s", out)
	}
	if !strings.Contains(out, "capability guards verified") {
		t.Errorf("output missing pass summary:\n%s", out)
	}
	if strings.Contains(out, "[FAIL]") {
		t.Errorf("unexpected failure in output:\n%s", out)
	}
}

func TestProbeRunnerRunCategory(t *testing.T) {
	r := NewProbeRunner()
	results := r.RunCategory(context.Background(), "subprocess")

	if len(results) == 0 {
		t.Fatal("no subprocess probes ran")
	}
	for _, res := range results {
		if res.Probe.Category != "subprocess" {
			t.Errorf("probe %s has category %q", res.Probe.Name, res.Probe.Category)
		}
		if !res.Passed {
			t.Errorf("probe %s failed: %s", res.Probe.Name, res.Error)
		}
	}
}

func TestProbeNamesAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, p := range ProbeTests {
		if seen[p.Name] {
			t.Errorf("duplicate probe name %q", p.Name)
		}
		seen[p.Name] = true
		if p.Category == "" || p.Description == "" {
			t.Errorf("probe %q missing category or description", p.Name)
		}
	}
}
