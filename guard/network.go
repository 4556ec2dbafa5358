// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package guard

import (
	"strings"

	"github.com/matthewdeanmartin/hermetic/policy"
)

// metadataHosts are cloud metadata endpoints refused by every
// network decision, independent of the no-network flag. Substring
// allowlist matches never unlock them; only the exact name does.
var metadataHosts = map[string]bool{
	"169.254.169.254":          true,
	"metadata.google.internal": true,
	"fd00:ec2::254":            true,
}

// loopbackHosts are the names and addresses the allow-localhost
// exception covers.
var loopbackHosts = map[string]bool{
	"127.0.0.1": true,
	"::1":       true,
	"localhost": true,
	"0.0.0.0":   true,
}

// NetworkGuard decides connect and resolve operations. It holds only
// a frozen snapshot of the policy fields it needs; concurrent checks
// share nothing mutable.
type NetworkGuard struct {
	noNetwork      bool
	allowLocalhost bool
	allowDomains   []string
}

// NewNetworkGuard freezes the network fields of p into a guard.
func NewNetworkGuard(p policy.Policy) *NetworkGuard {
	return &NetworkGuard{
		noNetwork:      p.NoNetwork,
		allowLocalhost: p.AllowLocalhost,
		allowDomains:   append([]string(nil), p.AllowDomains...),
	}
}

// Check decides one network operation against host. The order is
// fixed: metadata hardening first, then the loopback exception, then
// the domain allowlist, then the restriction flag.
func (g *NetworkGuard) Check(op, host string) Decision {
	normalized := normalizeHost(host)

	if metadataHosts[normalized] {
		if g.exactAllowed(normalized) {
			return allow("allow-domain-exact")
		}
		return deny(RuleMetadata)
	}

	if g.allowLocalhost && loopbackHosts[normalized] {
		return allow("allow-localhost")
	}

	if g.substringAllowed(normalized) {
		return allow("allow-domain")
	}

	if !g.noNetwork {
		return allow("network-unrestricted")
	}

	return deny(policy.RestrictionNetwork)
}

// exactAllowed requires the pattern to equal the host verbatim. This
// is the only way to unlock a metadata endpoint.
func (g *NetworkGuard) exactAllowed(host string) bool {
	for _, pattern := range g.allowDomains {
		if pattern == host {
			return true
		}
	}
	return false
}

// substringAllowed matches allowlist patterns by containment, so
// "example.com" unlocks api.example.com and example.com alike.
func (g *NetworkGuard) substringAllowed(host string) bool {
	for _, pattern := range g.allowDomains {
		if strings.Contains(host, pattern) {
			return true
		}
	}
	return false
}

// normalizeHost lowercases the host and strips IPv6 brackets so
// "[::1]" and "::1" decide identically.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	return host
}
