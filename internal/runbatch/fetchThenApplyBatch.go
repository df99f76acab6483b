// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/progress"
)

// ErrUnsupportedKind is returned when a batch is given an operation kind it cannot run.
var ErrUnsupportedKind = errors.New("unsupported operation kind")

var _ Batch = (*FetchThenApplyBatch)(nil)

// FetchThenApplyBatch downloads every package at once, then installs the ones that downloaded
// successfully, one at a time. Installs are serialised because the package manager holds a global lock.
type FetchThenApplyBatch struct {
	background
	Runner    OperationRunner
	Ops       []Operation
	Store     *progress.Store
	Cancelled *atomic.Bool
}

// NewFetchThenApplyBatch creates the batch. Every operation must be an install.
func NewFetchThenApplyBatch(
	runner OperationRunner,
	ops []Operation,
	store *progress.Store,
	cancelled *atomic.Bool,
) (*FetchThenApplyBatch, error) {
	for _, op := range ops {
		if op.Kind != KindInstall {
			return nil, fmt.Errorf("%w: %s in a fetch-then-apply batch", ErrUnsupportedKind, op)
		}
	}

	return &FetchThenApplyBatch{
		Runner:    runner,
		Ops:       ops,
		Store:     store,
		Cancelled: cancelled,
	}, nil
}

// Start implements Batch.
func (b *FetchThenApplyBatch) Start(ctx context.Context) {
	b.start(func() { b.run(ctx) })
}

func (b *FetchThenApplyBatch) run(ctx context.Context) {
	logger := ctxlog.Logger(ctx).With("batchType", "fetchThenApply")

	logger.Debug("starting downloads", "operations", len(b.Ops))

	fetches := &sync.WaitGroup{}

	for i, op := range b.Ops {
		fetches.Add(1)

		go func() {
			defer fetches.Done()

			if b.Cancelled.Load() {
				return
			}

			b.Runner.Run(ctx, i, Operation{Name: op.Name, Kind: KindFetch, Cask: op.Cask}, b.Store, b.Cancelled)
		}()
	}

	fetches.Wait()

	if b.Cancelled.Load() {
		logger.Info("batch cancelled after downloads")
		return
	}

	apply := NewSerialBatch(b.Runner, b.Ops, b.Store, b.Cancelled)
	apply.Skip = func(i int) bool {
		e, ok := b.Store.Entry(i)
		return !ok || e.State == progress.StateFailed
	}

	apply.Run(ctx)
}
