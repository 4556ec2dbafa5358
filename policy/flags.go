// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// bareReadonly is the NoOptDefVal sentinel for --fs-readonly given
// without a root. NUL cannot appear in a Unix path, so it can never
// collide with a real value.
const bareReadonly = "\x00"

// Flags holds the launcher's policy flag values for one parse. Only
// flags the user actually set participate in the precedence merge;
// Level consults the flag set's Changed state to tell "left at
// default" apart from "explicitly set to the default".
type Flags struct {
	noNetwork      bool
	noSubprocess   bool
	fsReadonly     string
	strictImports  bool
	allowLocalhost bool
	allowDomains   []string
	profiles       []string
	trace          bool

	set *pflag.FlagSet
}

// RegisterFlags binds the policy flags onto set and returns the value
// holder. The launcher and the POLICY_FLAGS environment parser share
// this binding so both surfaces accept identical syntax.
func RegisterFlags(set *pflag.FlagSet) *Flags {
	f := &Flags{set: set}
	set.BoolVar(&f.noNetwork, "no-network", false, "deny outbound connections and name resolution")
	set.BoolVar(&f.noSubprocess, "no-subprocess", false, "deny child process creation")
	set.StringVar(&f.fsReadonly, "fs-readonly", "", "deny filesystem writes; =ROOT also confines reads under ROOT")
	set.Lookup("fs-readonly").NoOptDefVal = bareReadonly
	set.BoolVar(&f.strictImports, "strict-imports", false, "deny native code loading and FFI bridges")
	set.BoolVar(&f.allowLocalhost, "allow-localhost", false, "permit loopback connections under --no-network")
	set.StringArrayVar(&f.allowDomains, "allow-domain", nil, "permit hosts matching this substring (repeatable)")
	set.StringArrayVar(&f.profiles, "profile", nil, "apply a named policy profile (repeatable)")
	set.BoolVar(&f.trace, "trace", false, "emit one diagnostic line per denied operation")
	return f
}

// Level converts the parsed flags into a precedence level: profile
// names first, explicit field overrides on top.
func (f *Flags) Level() Level {
	level := Level{Profiles: f.profiles}
	o := &level.Overlay

	if f.set.Changed("no-network") {
		o.NoNetwork = boolPtr(f.noNetwork)
	}
	if f.set.Changed("no-subprocess") {
		o.NoSubprocess = boolPtr(f.noSubprocess)
	}
	if f.set.Changed("fs-readonly") {
		o.FSReadonly = boolPtr(true)
		if f.fsReadonly != bareReadonly && f.fsReadonly != "" {
			o.FSRoot = stringPtr(f.fsReadonly)
		}
	}
	if f.set.Changed("strict-imports") {
		o.StrictImports = boolPtr(f.strictImports)
	}
	if f.set.Changed("allow-localhost") {
		o.AllowLocalhost = boolPtr(f.allowLocalhost)
	}
	if f.set.Changed("allow-domain") {
		o.AllowDomains = append([]string(nil), f.allowDomains...)
	}
	if f.set.Changed("trace") {
		o.Trace = boolPtr(f.trace)
	}
	return level
}

// Level is one precedence level of policy input: profile names to
// expand plus explicit field overrides. Within a level the explicit
// fields win over profile-implied ones.
type Level struct {
	Profiles []string
	Overlay  Overlay
}

// ParseFlagString parses a space-separated launcher flag string (the
// POLICY_FLAGS environment syntax) into a precedence level using the
// same flag definitions as the command line.
func ParseFlagString(value string) (Level, error) {
	set := pflag.NewFlagSet("policy-flags", pflag.ContinueOnError)
	set.Usage = func() {}
	flags := RegisterFlags(set)
	if err := set.Parse(strings.Fields(value)); err != nil {
		return Level{}, fmt.Errorf("parsing policy flags %q: %w", value, err)
	}
	if rest := set.Args(); len(rest) > 0 {
		return Level{}, fmt.Errorf("unexpected argument %q in policy flags", rest[0])
	}
	return flags.Level(), nil
}
