// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package manifest

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/go-version"
)

var (
	// ErrInvalidPackage is returned when a recipe contains an unusable package entry.
	ErrInvalidPackage = errors.New("invalid package")
	// ErrEmptyName is returned for a package without a name.
	ErrEmptyName = errors.New("package name is empty")
	// ErrBadName is returned for names that brew would read as something other than a package.
	ErrBadName = errors.New("package name must not start with '-' or contain whitespace")
	// ErrBadVersion is returned when the version is neither a version nor a constraint.
	ErrBadVersion = errors.New("version is not a valid version constraint")
)

// Package is one recipe entry.
type Package struct {
	Name     string `json:"name" yaml:"name"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	URL      string `json:"url,omitempty" yaml:"url,omitempty"`
	Cask     bool   `json:"cask,omitempty" yaml:"cask,omitempty"`
	// Version is informational. It may be an exact version or a constraint such as ">= 1.7".
	Version string `json:"version,omitempty" yaml:"version,omitempty"`
}

// Validate checks a single entry.
func (p Package) Validate() error {
	var result error

	switch {
	case p.Name == "":
		result = multierror.Append(result, ErrEmptyName)
	case strings.HasPrefix(p.Name, "-") || strings.ContainsFunc(p.Name, isSpace):
		result = multierror.Append(result, fmt.Errorf("%w: %q", ErrBadName, p.Name))
	}

	if p.Version != "" {
		if _, err := version.NewConstraint(p.Version); err != nil {
			result = multierror.Append(result, fmt.Errorf("%w: %q: %w", ErrBadVersion, p.Version, err))
		}
	}

	return result
}

// Kind is "cask" or "formula".
func (p Package) Kind() string {
	if p.Cask {
		return "cask"
	}

	return "formula"
}

// Validate checks every entry and reports all problems at once.
func Validate(source string, pkgs []Package) error {
	var result *multierror.Error

	for i, p := range pkgs {
		if err := p.Validate(); err != nil {
			result = multierror.Append(result, fmt.Errorf("%s: entry %d: %w", source, i+1, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		return errors.Join(ErrInvalidPackage, err)
	}

	return nil
}

// Names returns the package names in order.
func Names(pkgs []Package) []string {
	out := make([]string, len(pkgs))
	for i, p := range pkgs {
		out[i] = p.Name
	}

	return out
}

// CaskLookup reports, by name, whether a package is a cask.
func CaskLookup(pkgs []Package) func(string) bool {
	casks := make(map[string]bool, len(pkgs))
	for _, p := range pkgs {
		casks[p.Name] = p.Cask
	}

	return func(name string) bool {
		return casks[name]
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
