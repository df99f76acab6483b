// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/matt-FFFFFF/brim/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestOrchestrator_AllSucceed(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{}
	renderer := &fakeRenderer{}
	o := NewOrchestrator(runner, renderer.factory())

	res, err := o.Run(context.Background(), Installs([]string{"a", "b", "c"}, nil), false)
	require.NoError(t, err)

	assert.Equal(t, Results{
		{Name: "a", Status: "completed"},
		{Name: "b", Status: "completed"},
		{Name: "c", Status: "completed"},
	}, res)
	assert.Equal(t, int32(1), renderer.renders.Load())
}

func TestOrchestrator_MixedOutcome(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{fail: map[string]bool{"b": true}}
	o := NewOrchestrator(runner, (&fakeRenderer{}).factory())

	res, err := o.Run(context.Background(), Installs([]string{"a", "b", "c"}, nil), false)
	require.NoError(t, err)

	completed, failed := res.Counts()
	assert.Equal(t, 2, completed)
	assert.Equal(t, 1, failed)
	assert.Equal(t, "failed", res[1].Status)
	assert.True(t, res.HasError())
}

func TestOrchestrator_ParallelFetchFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{failFetch: map[string]bool{"b": true}}
	o := NewOrchestrator(runner, (&fakeRenderer{}).factory())

	res, err := o.Run(context.Background(), Installs([]string{"a", "b", "c"}, nil), true)
	require.NoError(t, err)

	assert.Equal(t, Results{
		{Name: "a", Status: "completed"},
		{Name: "b", Status: "failed"},
		{Name: "c", Status: "completed"},
	}, res)
}

func TestOrchestrator_ParallelRemovalsRunSerially(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{}
	o := NewOrchestrator(runner, (&fakeRenderer{}).factory())

	res, err := o.Run(context.Background(), Removals([]string{"a", "b"}), true)
	require.NoError(t, err)
	assert.Len(t, res, 2)

	for _, c := range runner.Calls() {
		assert.Equal(t, KindRemove, c.Kind)
	}
}

func TestOrchestrator_ForceQuitAbandons(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{delay: 10 * time.Second}
	o := NewOrchestrator(runner, (&fakeRenderer{forceQuitAfter: 50 * time.Millisecond}).factory())

	start := time.Now()
	res, err := o.Run(context.Background(), Installs([]string{"a", "b", "c"}, nil), false)

	require.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, res)
	assert.True(t, res.Aborted(3))
	assert.Less(t, time.Since(start), 5*time.Second, "the in-flight operation observes the flag")
	assert.Len(t, runner.Calls(), 1, "no operation starts after the user quits")
}

func TestOrchestrator_ForceQuitAfterOneCompleted(t *testing.T) {
	defer goleak.VerifyNone(t)

	runner := &fakeRunner{delay: 10 * time.Second, delays: map[string]time.Duration{"a": 0}}
	renderer := &fakeRenderer{
		forceQuitWhen: func(store *progress.Store) bool {
			return store.Snapshot()[0].State == progress.StateCompleted
		},
	}
	o := NewOrchestrator(runner, renderer.factory())

	res, err := o.Run(context.Background(), Installs([]string{"a", "b", "c", "d", "e"}, nil), false)

	require.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, res, "a partly finished batch is still abandoned")
	assert.True(t, res.Aborted(5))
	assert.LessOrEqual(t, len(runner.Calls()), 2, "nothing starts after the in-flight operation")
}

func TestOrchestrator_QuitAfterDoneKeepsResults(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	renderer := &fakeRenderer{
		onDone: func() bool {
			// a signal while the summary is shown
			cancel()
			return true
		},
	}
	o := NewOrchestrator(&fakeRunner{}, renderer.factory())

	res, err := o.Run(ctx, Installs([]string{"a", "b"}, nil), false)

	require.NoError(t, err)
	assert.Equal(t, Results{
		{Name: "a", Status: "completed"},
		{Name: "b", Status: "completed"},
	}, res)
}

func TestOrchestrator_ContextCancelAbandons(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	runner := &fakeRunner{delay: 10 * time.Second}
	o := NewOrchestrator(runner, (&fakeRenderer{}).factory())

	time.AfterFunc(50*time.Millisecond, cancel)

	res, err := o.Run(ctx, Installs([]string{"a", "b"}, nil), false)

	require.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, res)
}

func TestOrchestrator_RendererInitFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("not a terminal")
	runner := &fakeRunner{}
	o := NewOrchestrator(runner, func(context.Context) (Renderer, error) { return nil, boom })

	res, err := o.Run(context.Background(), Installs([]string{"a"}, nil), false)

	require.ErrorIs(t, err, ErrTerminalInit)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, res)
	assert.Empty(t, runner.Calls(), "nothing runs without a display")
}

func TestOrchestrator_RendererErrorAbandons(t *testing.T) {
	defer goleak.VerifyNone(t)

	boom := errors.New("terminal went away")
	runner := &fakeRunner{delay: 10 * time.Second}
	o := NewOrchestrator(runner, (&fakeRenderer{err: boom}).factory())

	res, err := o.Run(context.Background(), Installs([]string{"a"}, nil), false)

	require.ErrorIs(t, err, ErrCancelled)
	require.ErrorIs(t, err, boom)
	assert.Empty(t, res)
}

func TestOrchestrator_EmptyBatch(t *testing.T) {
	defer goleak.VerifyNone(t)

	renderer := &fakeRenderer{}
	o := NewOrchestrator(&fakeRunner{}, renderer.factory())

	res, err := o.Run(context.Background(), nil, false)

	require.NoError(t, err)
	assert.Empty(t, res)
	assert.False(t, res.Aborted(0))
	assert.Equal(t, int32(0), renderer.renders.Load(), "no display for nothing to do")
}

func TestOrchestrator_CancelledBeforeStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := &fakeRunner{}
	o := NewOrchestrator(runner, (&fakeRenderer{}).factory())

	res, err := o.Run(ctx, Installs([]string{"a", "b", "c"}, nil), false)

	require.ErrorIs(t, err, ErrCancelled)
	assert.Empty(t, res, "skipped operations make the batch abandoned, not partial")
	assert.Empty(t, runner.Calls())
}
