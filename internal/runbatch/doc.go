// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs a batch of package operations against the package manager.
//
// A Runner drives one subprocess and mirrors its progress into a progress.Store.
// SerialBatch runs operations one at a time. FetchThenApplyBatch downloads every package
// in parallel first, then installs the successful downloads one at a time.
// Orchestrator ties a batch to a renderer and turns the final store into Results.
//
// Cancellation is cooperative: a shared atomic flag is checked by every batch loop and on
// every poll tick of a running subprocess.
package runbatch
