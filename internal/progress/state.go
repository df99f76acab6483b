// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

// State is the lifecycle position of one package.
type State int

const (
	// StatePending means the package has not been started.
	StatePending State = iota
	// StateDownloading means a fetch is running or has finished successfully.
	StateDownloading
	// StateInstalling means an install is running.
	StateInstalling
	// StateRemoving means a removal, or the dependency clean-up after it, is running.
	StateRemoving
	// StateCompleted is terminal.
	StateCompleted
	// StateFailed is terminal.
	StateFailed
)

// String returns the display label, also used as the result status.
func (s State) String() string {
	switch s {
	case StatePending:
		return "Pending"
	case StateDownloading:
		return "Downloading"
	case StateInstalling:
		return "Installing"
	case StateRemoving:
		return "Removing"
	case StateCompleted:
		return "Completed"
	case StateFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// IsTerminal reports whether s is Completed or Failed.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// IsActive reports whether a subprocess may be working on the entry.
func (s State) IsActive() bool {
	return s == StateDownloading || s == StateInstalling || s == StateRemoving
}
