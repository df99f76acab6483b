// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"fmt"
	"time"

	"github.com/matt-FFFFFF/brim/internal/progress"
)

// Kind is the action an Operation performs.
type Kind int

const (
	// KindInstall installs a package.
	KindInstall Kind = iota
	// KindRemove removes a package and then cleans up unused dependencies.
	KindRemove
	// KindFetch only downloads a package. It is the first phase of FetchThenApplyBatch.
	KindFetch
	// kindAutoremove is the dependency clean-up that follows a successful removal.
	kindAutoremove
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case KindInstall:
		return "install"
	case KindRemove:
		return "remove"
	case KindFetch:
		return "fetch"
	case kindAutoremove:
		return "autoremove"
	default:
		return "unknown"
	}
}

// noun is used in timeout messages.
func (k Kind) noun() string {
	switch k {
	case KindInstall:
		return "Installation"
	case KindRemove:
		return "Removal"
	case KindFetch:
		return "Download"
	case kindAutoremove:
		return "Dependency clean-up"
	default:
		return "Operation"
	}
}

// activeState is the state an entry takes while this kind runs.
func (k Kind) activeState() progress.State {
	switch k {
	case KindFetch:
		return progress.StateDownloading
	case KindRemove, kindAutoremove:
		return progress.StateRemoving
	default:
		return progress.StateInstalling
	}
}

func (k Kind) startMessage() string {
	switch k {
	case KindFetch:
		return "Fetching..."
	case KindRemove:
		return "Removing..."
	default:
		return "Starting..."
	}
}

func (k Kind) failedMessage() string {
	switch k {
	case KindFetch:
		return "Download failed"
	case KindRemove:
		return "Removal failed"
	default:
		return "Installation failed"
	}
}

// Operation is one requested action on one package. It is never modified after creation.
type Operation struct {
	Name string
	Kind Kind
	// Cask marks a macOS application rather than a formula. It only affects install and fetch.
	Cask bool
}

// String implements fmt.Stringer.
func (o Operation) String() string {
	if o.Cask {
		return fmt.Sprintf("%s %s (cask)", o.Kind, o.Name)
	}

	return fmt.Sprintf("%s %s", o.Kind, o.Name)
}

// Args returns the package manager arguments, without the program name.
func (o Operation) Args() []string {
	switch o.Kind {
	case KindRemove:
		return []string{"remove", "-f", o.Name}
	case kindAutoremove:
		return []string{"autoremove"}
	}

	args := []string{o.Kind.String()}
	if o.Cask {
		args = append(args, "--cask")
	}

	return append(args, o.Name)
}

// Timeouts is the wall clock ceiling per kind. The Runner converts them to poll ticks.
type Timeouts struct {
	Install    time.Duration
	Remove     time.Duration
	Fetch      time.Duration
	Autoremove time.Duration
}

// DefaultTimeouts returns 3m for installs, 2m for removals and fetches and 1m for autoremove.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Install:    3 * time.Minute,
		Remove:     2 * time.Minute,
		Fetch:      2 * time.Minute,
		Autoremove: time.Minute,
	}
}

func (t Timeouts) forKind(k Kind) time.Duration {
	switch k {
	case KindRemove:
		return t.Remove
	case KindFetch:
		return t.Fetch
	case kindAutoremove:
		return t.Autoremove
	default:
		return t.Install
	}
}

// Installs builds install operations in order.
func Installs(names []string, cask func(string) bool) []Operation {
	ops := make([]Operation, len(names))
	for i, n := range names {
		ops[i] = Operation{Name: n, Kind: KindInstall, Cask: cask != nil && cask(n)}
	}

	return ops
}

// Removals builds remove operations in order.
func Removals(names []string) []Operation {
	ops := make([]Operation, len(names))
	for i, n := range names {
		ops[i] = Operation{Name: n, Kind: KindRemove}
	}

	return ops
}
