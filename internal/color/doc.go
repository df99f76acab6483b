// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package color wraps strings in ANSI SGR sequences for the plain console output
// (lists, dry runs, sync reports and the pretty log handler).
// Output honours NO_COLOR and FORCE_COLOR and is otherwise enabled only when stdout is a terminal.
package color
