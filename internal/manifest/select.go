// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownPackage is returned when a requested package is not in the recipe.
var ErrUnknownPackage = errors.New("package not in recipe")

// Selection controls which recipe packages are installed.
type Selection struct {
	// Only restricts the selection to these names, in recipe order.
	Only []string
	// IncludeInstalled keeps packages that are already installed.
	IncludeInstalled bool
}

// Select picks packages from pkgs. By default packages already installed are skipped.
func Select(pkgs []Package, installed []string, sel Selection) ([]Package, error) {
	have := toSet(installed)

	var only map[string]bool

	if len(sel.Only) > 0 {
		only = toSet(sel.Only)

		known := toSet(Names(pkgs))

		var missing []string

		for _, n := range sel.Only {
			if !known[n] {
				missing = append(missing, n)
			}
		}

		if len(missing) > 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownPackage, strings.Join(missing, ", "))
		}
	}

	var out []Package

	for _, p := range pkgs {
		if only != nil && !only[p.Name] {
			continue
		}

		if have[p.Name] && !sel.IncludeInstalled {
			continue
		}

		out = append(out, p)
	}

	return out, nil
}

// Plan compares a recipe with what is installed.
type Plan struct {
	// InSync are recipe packages that are installed.
	InSync []Package
	// ToInstall are recipe packages that are missing.
	ToInstall []Package
	// Extra are installed packages the recipe does not mention.
	Extra []string
}

// InSyncAll reports whether nothing needs installing and nothing is extra.
func (p Plan) InSyncAll() bool {
	return len(p.ToInstall) == 0 && len(p.Extra) == 0
}

// Diff builds a Plan. Names are matched exactly.
func Diff(installed []string, recipe []Package) Plan {
	have := toSet(installed)
	wanted := toSet(Names(recipe))

	var plan Plan

	for _, p := range recipe {
		if have[p.Name] {
			plan.InSync = append(plan.InSync, p)
			continue
		}

		plan.ToInstall = append(plan.ToInstall, p)
	}

	for _, n := range installed {
		if !wanted[n] {
			plan.Extra = append(plan.Extra, n)
		}
	}

	return plan
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}

	return set
}
