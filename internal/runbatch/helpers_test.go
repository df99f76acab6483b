// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matt-FFFFFF/brim/internal/progress"
	"github.com/stretchr/testify/require"
)

// fakeRunner stands in for the package manager in batch and orchestrator tests.
type fakeRunner struct {
	mu        sync.Mutex
	calls     []Operation
	fail      map[string]bool
	failFetch map[string]bool
	delay     time.Duration
	// delays overrides delay per package name.
	delays map[string]time.Duration
	// onRun is called before the operation does anything.
	onRun func(i int, op Operation)
}

var _ OperationRunner = (*fakeRunner)(nil)

func (f *fakeRunner) Run(_ context.Context, i int, op Operation, store *progress.Store, cancelled *atomic.Bool) bool {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	f.mu.Unlock()

	if f.onRun != nil {
		f.onRun(i, op)
	}

	store.Update(i, progress.WithState(op.Kind.activeState()), progress.WithMessage(op.Kind.startMessage()))

	delay := f.delay
	if d, ok := f.delays[op.Name]; ok {
		delay = d
	}

	deadline := time.Now().Add(delay)
	for time.Now().Before(deadline) {
		if cancelled.Load() {
			store.Update(i, progress.WithState(progress.StateFailed), progress.WithMessage("Cancelled"))
			return false
		}

		time.Sleep(time.Millisecond)
	}

	if (op.Kind == KindFetch && f.failFetch[op.Name]) || (op.Kind != KindFetch && f.fail[op.Name]) {
		store.Update(i, progress.WithState(progress.StateFailed), progress.WithMessage(op.Kind.failedMessage()))
		return false
	}

	if op.Kind == KindFetch {
		store.Update(i, progress.WithPercent(100), progress.WithMessage("Downloaded"))
		return true
	}

	store.Update(i, progress.WithState(progress.StateCompleted), progress.WithPercent(100), progress.WithMessage("Done"))

	return true
}

func (f *fakeRunner) Calls() []Operation {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Operation, len(f.calls))
	copy(out, f.calls)

	return out
}

// fakeRenderer polls done like the terminal UI would.
type fakeRenderer struct {
	forceQuitAfter time.Duration
	// forceQuitWhen quits as soon as it reports true for the store.
	forceQuitWhen func(*progress.Store) bool
	// onDone runs once done reports true; its result is returned as forceQuit.
	onDone  func() bool
	err     error
	renders atomic.Int32
}

func (r *fakeRenderer) Render(ctx context.Context, store *progress.Store, done func() bool) (bool, error) {
	r.renders.Add(1)

	if r.err != nil {
		return false, r.err
	}

	start := time.Now()

	for {
		if done() {
			if r.onDone != nil {
				return r.onDone(), nil
			}

			return false, nil
		}

		if r.forceQuitWhen != nil && r.forceQuitWhen(store) {
			return true, nil
		}

		if ctx.Err() != nil {
			return true, nil
		}

		if r.forceQuitAfter > 0 && time.Since(start) >= r.forceQuitAfter {
			return true, nil
		}

		time.Sleep(5 * time.Millisecond)
	}
}

func (r *fakeRenderer) factory() RendererFactory {
	return func(context.Context) (Renderer, error) {
		return r, nil
	}
}

// fakeBrew writes an executable shell script standing in for the package manager.
func fakeBrew(t *testing.T, body string) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("shell script package manager needs a POSIX shell")
	}

	p := filepath.Join(t.TempDir(), "fakebrew")
	require.NoError(t, os.WriteFile(p, []byte("#!/bin/sh\n"+body+"\n"), 0o755))

	return p
}

func names(ops []Operation) []string {
	out := make([]string, len(ops))
	for i, op := range ops {
		out[i] = op.Name
	}

	return out
}
