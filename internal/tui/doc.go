// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui renders a running batch.
//
// The full-screen Runner polls a progress.Store every TickInterval and never writes to it.
// It has a live screen with one bar per package and an optional summary screen.
// PlainRenderer prints one line per state change for terminals that cannot host the full screen.
package tui
