// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"sync/atomic"

	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/progress"
)

var _ Batch = (*SerialBatch)(nil)

// SerialBatch runs its operations one after another, in order.
// Once the cancel flag is set no further operation is started; their entries stay Pending.
type SerialBatch struct {
	background
	Runner    OperationRunner
	Ops       []Operation
	Store     *progress.Store
	Cancelled *atomic.Bool
	// Skip, when set, leaves entry i untouched.
	Skip func(i int) bool
}

// NewSerialBatch creates a SerialBatch. Operation i reports into store entry i.
func NewSerialBatch(runner OperationRunner, ops []Operation, store *progress.Store, cancelled *atomic.Bool) *SerialBatch {
	return &SerialBatch{
		Runner:    runner,
		Ops:       ops,
		Store:     store,
		Cancelled: cancelled,
	}
}

// Start implements Batch.
func (b *SerialBatch) Start(ctx context.Context) {
	b.start(func() { b.Run(ctx) })
}

// Run executes the batch on the calling goroutine.
func (b *SerialBatch) Run(ctx context.Context) {
	logger := ctxlog.Logger(ctx).With("batchType", "serial")

	for i, op := range b.Ops {
		if b.Cancelled.Load() {
			logger.Info("batch cancelled, not starting remaining operations", "remaining", len(b.Ops)-i)
			return
		}

		if b.Skip != nil && b.Skip(i) {
			logger.Debug("skipping operation", "package", op.Name)
			continue
		}

		b.Runner.Run(ctx, i, op, b.Store, b.Cancelled)
	}

	logger.Debug("batch finished", "operations", len(b.Ops))
}
