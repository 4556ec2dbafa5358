// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

// Guarded operations, as they appear in trace lines and audit
// records. The <surface>.<operation> form is part of the denial line
// contract.
const (
	OpNetConnect = "network.connect"
	OpNetResolve = "network.resolve"

	OpSubExec  = "subprocess.exec"
	OpSubShell = "subprocess.shell"

	OpFSRead   = "filesystem.read"
	OpFSWrite  = "filesystem.write"
	OpFSCreate = "filesystem.create"
	OpFSRemove = "filesystem.remove"
	OpFSRename = "filesystem.rename"
	OpFSMkdir  = "filesystem.mkdir"

	OpNativeOpen   = "nativeload.open"
	OpNativeImport = "nativeload.import"
)

// Guard labels for violation errors and audit records.
const (
	GuardNetwork    = "network"
	GuardSubprocess = "subprocess"
	GuardFilesystem = "filesystem"
	GuardImports    = "imports"
)

// RuleMetadata names the always-on refusal of cloud metadata
// endpoints. It is not tied to any policy flag, so it carries its own
// rule name in trace output.
const RuleMetadata = "metadata-endpoint"

// Decision is the outcome of one guard check: whether the operation
// may proceed and which rule decided it. Decisions are pure functions
// of the frozen policy and the call arguments; they are created per
// call and never stored.
type Decision struct {
	Allowed bool
	Rule    string
}

func allow(rule string) Decision {
	return Decision{Allowed: true, Rule: rule}
}

func deny(rule string) Decision {
	return Decision{Allowed: false, Rule: rule}
}
