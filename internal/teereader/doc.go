// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package teereader splits a subprocess output stream into lines as it is read,
// so the latest line can be shown while the process is still running.
package teereader
