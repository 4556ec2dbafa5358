// Copyright 2026 The Hermetic Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"errors"
	"fmt"
	"os"
)

// Build assembles the effective policy from precedence levels, lowest
// first. Each level expands its profiles in listed order, then applies
// its explicit fields on top. The result is normalized and validated;
// a Build error means no guard construction should happen.
func Build(loader *ProfileLoader, levels ...Level) (Policy, error) {
	var p Policy
	for _, level := range levels {
		for _, name := range level.Profiles {
			overlay, err := loader.Resolve(name)
			if err != nil {
				return Policy{}, err
			}
			overlay.Apply(&p)
		}
		level.Overlay.Apply(&p)
	}

	p.AllowDomains = normalizeDomains(p.AllowDomains)

	if err := Validate(p); err != nil {
		return Policy{}, err
	}
	return p, nil
}

// Validate checks the semantic constraints flag parsing cannot see.
// The filesystem read root must exist and be a directory so a typo
// cannot silently seal every read.
func Validate(p Policy) error {
	var errs []error

	if p.FSRoot != "" {
		info, err := os.Stat(p.FSRoot)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("fs root %s: %w", p.FSRoot, err))
		case !info.IsDir():
			errs = append(errs, fmt.Errorf("fs root %s is not a directory", p.FSRoot))
		}
	}

	if p.FSRoot != "" && !p.FSReadonly {
		errs = append(errs, errors.New("fs_root requires fs_readonly"))
	}

	return errors.Join(errs...)
}
