// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package ctxlog carries a *slog.Logger in a context.Context.
//
// The default is a pretty console handler on stderr. The level comes from BRIM_LOG_LEVEL
// and can be changed at runtime through LevelVar.
package ctxlog
