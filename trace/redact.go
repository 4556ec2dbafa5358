// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package trace

import (
	"regexp"
	"strings"
)

const redactedMark = "[redacted]"

var (
	// Credentials as key=value or key:value pairs where the key name
	// suggests a secret. The key and separator survive; only the
	// value is replaced.
	credKVRe = regexp.MustCompile(`(?i)((?:password|passwd|secret|token|api_key|apikey|auth(?:orization)?)[ \t]*[=:][ \t]*)(\S+)`)

	// HTTP-style authorization schemes followed by their payload.
	schemeRe = regexp.MustCompile(`(?i)\b(bearer|basic)[ \t]+[A-Za-z0-9+/_.\-]{8,}={0,2}`)

	// Standalone token-shaped strings: long runs of the usual API
	// key alphabet, no path separators. Candidates still need mixed
	// letters and digits (checked in code; RE2 has no lookahead).
	tokenRe = regexp.MustCompile(`\b[A-Za-z0-9_\-]{32,}\b`)
)

// Redact replaces credential-looking substrings in a detail string
// with a fixed marker. Hosts, paths, and short identifiers pass
// through untouched so trace lines stay useful for debugging.
func Redact(s string) string {
	if s == "" {
		return s
	}

	s = credKVRe.ReplaceAllString(s, "${1}"+redactedMark)
	s = schemeRe.ReplaceAllString(s, "${1} "+redactedMark)
	s = tokenRe.ReplaceAllStringFunc(s, func(match string) string {
		if looksLikeToken(match) {
			return redactedMark
		}
		return match
	})
	return s
}

// looksLikeToken requires both letters and digits so long plain words
// and long decimal numbers survive redaction.
func looksLikeToken(s string) bool {
	hasLetter := strings.ContainsFunc(s, func(r rune) bool {
		return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
	})
	hasDigit := strings.ContainsAny(s, "0123456789")
	return hasLetter && hasDigit
}
