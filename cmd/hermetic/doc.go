// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

// Hermetic launches an existing program inside a capability policy
// envelope: outbound network, subprocess creation, filesystem writes,
// and native code loading can each be denied without modifying the
// target. In-process targets run behind guards installed before their
// first instruction; foreign interpreter targets are re-executed with
// an injected startup hook that installs the same guards inside the
// foreign runtime.
package main
