// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"strings"

	"github.com/matt-FFFFFF/brim/internal/progress"
)

// Result is the final outcome of one operation.
type Result struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}

// Results is the ordered outcome of a batch, one per operation.
// An empty Results for a non-empty batch means the batch was abandoned.
type Results []Result

// Collect reads the final state of store. It does not modify the store.
func Collect(store *progress.Store) Results {
	return FromEntries(store.Snapshot())
}

// FromEntries converts entries to results. The status is the lower case state label,
// so entries that never finished report "pending" or their active state.
func FromEntries(entries []progress.Entry) Results {
	res := make(Results, len(entries))
	for i, e := range entries {
		res[i] = Result{Name: e.Name, Status: status(e.State)}
	}

	return res
}

// Completed reports whether the operation finished successfully.
func (r Result) Completed() bool {
	return r.Status == status(progress.StateCompleted)
}

// Failed reports whether the operation finished unsuccessfully.
func (r Result) Failed() bool {
	return r.Status == status(progress.StateFailed)
}

// Counts returns the number of completed and failed results.
func (r Results) Counts() (completed, failed int) {
	for _, res := range r {
		switch {
		case res.Completed():
			completed++
		case res.Failed():
			failed++
		}
	}

	return completed, failed
}

// HasError reports whether any operation failed.
func (r Results) HasError() bool {
	_, failed := r.Counts()
	return failed > 0
}

// Aborted reports whether these are the results of an abandoned batch of n operations.
func (r Results) Aborted(n int) bool {
	return n > 0 && len(r) == 0
}

func status(s progress.State) string {
	return strings.ToLower(s.String())
}
