// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"encoding/json"
	"fmt"
)

// TransportEnv is the environment variable carrying the encoded
// policy across the exec boundary. The bootstrap hook inside a
// foreign runtime decodes it before the target's own startup runs.
const TransportEnv = "HERMETIC_FLAGS_JSON"

// transportPolicy is the wire form of a policy. The consumer is not
// Go, so the contract is JSON with fixed snake_case keys; renaming a
// key here breaks every injected hook in the field.
type transportPolicy struct {
	NoNetwork      bool     `json:"no_network"`
	NoSubprocess   bool     `json:"no_subprocess"`
	FSReadonly     bool     `json:"fs_readonly"`
	FSRoot         string   `json:"fs_root,omitempty"`
	StrictImports  bool     `json:"strict_imports"`
	AllowLocalhost bool     `json:"allow_localhost"`
	AllowDomains   []string `json:"allow_domains,omitempty"`
	Trace          bool     `json:"trace"`
}

// EncodeTransport renders the policy in the wire form read by the
// bootstrap hook.
func EncodeTransport(p Policy) (string, error) {
	data, err := json.Marshal(transportPolicy{
		NoNetwork:      p.NoNetwork,
		NoSubprocess:   p.NoSubprocess,
		FSReadonly:     p.FSReadonly,
		FSRoot:         p.FSRoot,
		StrictImports:  p.StrictImports,
		AllowLocalhost: p.AllowLocalhost,
		AllowDomains:   p.AllowDomains,
		Trace:          p.Trace,
	})
	if err != nil {
		return "", fmt.Errorf("encoding policy: %w", err)
	}
	return string(data), nil
}

// DecodeTransport parses the wire form back into a policy. Unknown
// keys are ignored so an older launcher can read records written by a
// newer one.
func DecodeTransport(encoded string) (Policy, error) {
	var wire transportPolicy
	if err := json.Unmarshal([]byte(encoded), &wire); err != nil {
		return Policy{}, fmt.Errorf("decoding policy: %w", err)
	}
	return Policy{
		NoNetwork:      wire.NoNetwork,
		NoSubprocess:   wire.NoSubprocess,
		FSReadonly:     wire.FSReadonly,
		FSRoot:         wire.FSRoot,
		StrictImports:  wire.StrictImports,
		AllowLocalhost: wire.AllowLocalhost,
		AllowDomains:   normalizeDomains(wire.AllowDomains),
		Trace:          wire.Trace,
	}, nil
}
