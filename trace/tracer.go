// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// linePrefix marks launcher diagnostics so they cannot be mistaken
// for target output on a shared stderr.
const linePrefix = "[hermetic] "

// Tracer renders denied operations as diagnostic lines and, when an
// audit sink is attached, as durable records. It is a pure observer:
// nothing here influences a guard decision, and a tracer failure
// never aborts the run.
type Tracer struct {
	mu      sync.Mutex
	w       io.Writer
	enabled bool
	audit   *AuditWriter
	now     func() time.Time
}

// New creates a tracer writing to w. When enabled is false the tracer
// stays silent on w but still feeds an attached audit sink.
func New(w io.Writer, enabled bool) *Tracer {
	return &Tracer{w: w, enabled: enabled, now: time.Now}
}

// SetAudit attaches an audit sink. Every subsequent denial is
// appended there regardless of the enabled flag.
func (t *Tracer) SetAudit(audit *AuditWriter) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.audit = audit
}

// Enabled reports whether denial lines are rendered.
func (t *Tracer) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Blocked records one denied operation. op is the guarded surface and
// operation ("network.connect"), detail is a preformatted key=value
// list ("host=example.com"), rule names the restriction that fired.
// The detail is redacted before it reaches any output.
func (t *Tracer) Blocked(guard, op, detail, rule string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.enabled && t.audit == nil {
		return
	}

	redacted := Redact(detail)

	if t.enabled {
		fmt.Fprintf(t.w, "%s%s\n", linePrefix, FormatLine(op, redacted, rule))
	}

	if t.audit != nil {
		// Best effort: a full disk must not turn a denial into a
		// launcher crash. Close surfaces the write error.
		_ = t.audit.Write(Record{
			Time:   t.now(),
			Guard:  guard,
			Op:     op,
			Detail: redacted,
			Rule:   rule,
		})
	}
}

// FormatLine renders the fixed denial line shape:
//
//	blocked <surface>.<operation> <key=value,...> reason=<restriction>
//
// The shape is a contract: operators grep for it, and tests pin it.
func FormatLine(op, detail, rule string) string {
	if detail == "" {
		return fmt.Sprintf("blocked %s reason=%s", op, rule)
	}
	return fmt.Sprintf("blocked %s %s reason=%s", op, detail, rule)
}

// Close flushes and closes the attached audit sink, if any.
func (t *Tracer) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.audit == nil {
		return nil
	}
	err := t.audit.Close()
	t.audit = nil
	return err
}
