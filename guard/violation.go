// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"errors"

	"github.com/matthewdeanmartin/hermetic/trace"
)

// Violation is the error returned when a guard denies an operation.
// It is the only error class the launcher maps to exit code 2; no
// other failure may masquerade as one. Detail is stored
// post-redaction.
type Violation struct {
	// Guard labels the guard that fired (GuardNetwork, ...).
	Guard string

	// Op is the denied operation (OpNetConnect, ...).
	Op string

	// Detail is the redacted key=value description of the call.
	Detail string

	// Rule names the restriction that fired.
	Rule string
}

func (v *Violation) Error() string {
	return trace.FormatLine(v.Op, v.Detail, v.Rule)
}

// IsViolation reports whether err wraps a policy violation.
func IsViolation(err error) bool {
	var violation *Violation
	return errors.As(err, &violation)
}
