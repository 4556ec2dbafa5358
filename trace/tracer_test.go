// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"bytes"
	"strings"
	"testing"
)

func TestBlockedLineShape(t *testing.T) {
	var buffer bytes.Buffer
	tracer := New(&buffer, true)

	tracer.Blocked("network", "network.connect", "host=example.com", "no-network")

	got := buffer.String()
	want := "[hermetic] blocked network.connect host=example.com reason=no-network\n"
	if got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestBlockedWithoutDetail(t *testing.T) {
	var buffer bytes.Buffer
	tracer := New(&buffer, true)

	tracer.Blocked("subprocess", "subprocess.shell", "", "no-subprocess")

	got := buffer.String()
	want := "[hermetic] blocked subprocess.shell reason=no-subprocess\n"
	if got != want {
		t.Errorf("line = %q, want %q", got, want)
	}
}

func TestDisabledTracerStaysSilent(t *testing.T) {
	var buffer bytes.Buffer
	tracer := New(&buffer, false)

	tracer.Blocked("network", "network.connect", "host=example.com", "no-network")

	if buffer.Len() != 0 {
		t.Errorf("disabled tracer wrote %q", buffer.String())
	}
}

func TestBlockedRedactsDetail(t *testing.T) {
	var buffer bytes.Buffer
	tracer := New(&buffer, true)

	tracer.Blocked("network", "network.connect", "host=example.com,token=sk-abc123def456", "no-network")

	line := buffer.String()
	if strings.Contains(line, "sk-abc123def456") {
		t.Errorf("credential survived into trace output: %q", line)
	}
	if !strings.Contains(line, "host=example.com") {
		t.Errorf("host should survive redaction: %q", line)
	}
}

func TestFormatLine(t *testing.T) {
	tests := []struct {
		name   string
		op     string
		detail string
		rule   string
		want   string
	}{
		{
			"with detail",
			"filesystem.write", "path=/etc/passwd,mode=w", "fs-readonly",
			"blocked filesystem.write path=/etc/passwd,mode=w reason=fs-readonly",
		},
		{
			"without detail",
			"nativeload.import", "", "strict-imports",
			"blocked nativeload.import reason=strict-imports",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := FormatLine(test.op, test.detail, test.rule); got != test.want {
				t.Errorf("FormatLine = %q, want %q", got, test.want)
			}
		})
	}
}

func TestCloseWithoutAudit(t *testing.T) {
	tracer := New(&bytes.Buffer{}, true)
	if err := tracer.Close(); err != nil {
		t.Errorf("Close without audit sink: %v", err)
	}
}
