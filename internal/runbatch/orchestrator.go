// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/progress"
)

// DefaultCancelGrace is how long in-flight operations get to notice the cancel flag
// before the orchestrator joins the batch.
const DefaultCancelGrace = 200 * time.Millisecond

// ErrTerminalInit is returned when the renderer could not take over the terminal.
// No operation has been started when it is returned.
var ErrTerminalInit = errors.New("could not initialise terminal")

// Renderer displays a store until the batch is done and the user dismisses it, or the user gives up.
type Renderer interface {
	// Render blocks while drawing store. done reports whether the batch has finished.
	// forceQuit is true when the user abandoned the batch before it finished.
	Render(ctx context.Context, store *progress.Store, done func() bool) (forceQuit bool, err error)
}

// RendererFactory acquires the display for one batch.
type RendererFactory func(ctx context.Context) (Renderer, error)

// Orchestrator runs a batch of operations under a renderer and collects the results.
type Orchestrator struct {
	Runner      OperationRunner
	NewRenderer RendererFactory
	CancelGrace time.Duration
}

// NewOrchestrator creates an Orchestrator with the default cancel grace period.
func NewOrchestrator(runner OperationRunner, newRenderer RendererFactory) *Orchestrator {
	return &Orchestrator{
		Runner:      runner,
		NewRenderer: newRenderer,
		CancelGrace: DefaultCancelGrace,
	}
}

// Run executes ops and returns one Result per operation, in order.
//
// With parallel set and only install operations, every package is downloaded concurrently
// before the installs run one by one; otherwise operations run one by one.
//
// If the user abandons the batch, or ctx is cancelled before it finishes, the in-flight
// operation is stopped, no new one is started, and Run returns empty Results with ErrCancelled.
// Leaving or cancelling after the batch has finished keeps its results.
// If the renderer cannot be created it returns empty Results with ErrTerminalInit.
func (o *Orchestrator) Run(ctx context.Context, ops []Operation, parallel bool) (Results, error) {
	logger := ctxlog.Logger(ctx).With("batchSize", len(ops)).With("parallel", parallel)

	if len(ops) == 0 {
		return Results{}, nil
	}

	renderer, err := o.NewRenderer(ctx)
	if err != nil {
		logger.Error("renderer initialisation failed", "error", err)
		return Results{}, errors.Join(ErrTerminalInit, err)
	}

	names := make([]string, len(ops))
	for i, op := range ops {
		names[i] = op.Name
	}

	store := progress.NewStore(names, progress.WithObserver(logTransitions(logger)))
	cancelled := &atomic.Bool{}

	batch := o.newBatch(logger, ops, parallel, store, cancelled)

	stopWatching := context.AfterFunc(ctx, func() {
		cancelled.Store(true)
	})
	defer stopWatching()

	start := time.Now()

	batch.Start(ctx)

	forceQuit, renderErr := renderer.Render(ctx, store, batch.Done)
	if renderErr != nil {
		logger.Error("renderer failed", "error", renderErr)
	}

	// once the batch is done its results stand, however the display ended
	if !batch.Done() && (forceQuit || renderErr != nil || ctx.Err() != nil) {
		logger.Warn("batch abandoned, stopping in-flight operations")
		cancelled.Store(true)
		time.Sleep(o.CancelGrace)
		batch.Wait()

		return Results{}, errors.Join(ErrCancelled, renderErr)
	}

	batch.Wait()

	// cancelled after the last check but before every operation ran
	if cancelled.Load() && !store.AllTerminal() {
		logger.Warn("batch cancelled before every operation ran")
		return Results{}, ErrCancelled
	}

	res := Collect(store)
	completed, failed := res.Counts()
	logger.Info("batch finished", "completed", completed, "failed", failed, "elapsed", time.Since(start).String())

	return res, nil
}

func (o *Orchestrator) newBatch(
	logger *slog.Logger,
	ops []Operation,
	parallel bool,
	store *progress.Store,
	cancelled *atomic.Bool,
) Batch {
	if parallel {
		b, err := NewFetchThenApplyBatch(o.Runner, ops, store, cancelled)
		if err == nil {
			return b
		}

		logger.Warn("parallel downloads only apply to installs, running serially", "error", err)
	}

	return NewSerialBatch(o.Runner, ops, store, cancelled)
}

func logTransitions(logger *slog.Logger) progress.Observer {
	return func(index int, from progress.State, to progress.Entry) {
		logger.Info("package state changed",
			"index", index,
			"package", to.Name,
			"from", from.String(),
			"to", to.State.String(),
			"message", to.Message,
		)
	}
}
