// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package progress holds the live state of a package batch.
//
// A Store is an ordered list of entries, one per package, guarded by a single mutex.
// Workers write to it by index while the renderer reads whole snapshots.
// Entries only move forward: once Completed or Failed they ignore further writes.
package progress
