// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

// UpdateOption sets one field of an Entry.
type UpdateOption func(*Entry)

// WithState sets the state.
func WithState(s State) UpdateOption {
	return func(e *Entry) {
		e.State = s
	}
}

// WithPercent sets the percentage, clamped to [0, 100].
func WithPercent(p int) UpdateOption {
	return func(e *Entry) {
		e.Percent = ClampPercent(p)
	}
}

// WithMessage sets the status message.
func WithMessage(m string) UpdateOption {
	return func(e *Entry) {
		e.Message = m
	}
}

// ClampPercent limits p to [0, 100].
func ClampPercent(p int) int {
	return min(max(p, 0), 100)
}
