// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func testRunner(program string, opts ...RunnerOption) *Runner {
	return NewRunner(program, append([]RunnerOption{
		WithPollInterval(10 * time.Millisecond),
		WithReaderGrace(200 * time.Millisecond),
	}, opts...)...)
}

func testCtx() context.Context {
	ctxlog.LevelVar.Set(slog.LevelDebug)
	return ctxlog.New(context.Background(), ctxlog.DefaultLogger)
}

func runOne(t *testing.T, r *Runner, op Operation, cancelled *atomic.Bool) (bool, progress.Entry) {
	t.Helper()

	store := progress.NewStore([]string{op.Name})
	if cancelled == nil {
		cancelled = &atomic.Bool{}
	}

	ok := r.Run(testCtx(), 0, op, store, cancelled)
	e, found := store.Entry(0)
	require.True(t, found)

	return ok, e
}

func TestOperationArgs(t *testing.T) {
	tests := []struct {
		op   Operation
		want []string
	}{
		{Operation{Name: "wget", Kind: KindInstall}, []string{"install", "wget"}},
		{Operation{Name: "firefox", Kind: KindInstall, Cask: true}, []string{"install", "--cask", "firefox"}},
		{Operation{Name: "firefox", Kind: KindFetch, Cask: true}, []string{"fetch", "--cask", "firefox"}},
		{Operation{Name: "jq", Kind: KindFetch}, []string{"fetch", "jq"}},
		{Operation{Name: "firefox", Kind: KindRemove, Cask: true}, []string{"remove", "-f", "firefox"}},
		{Operation{Kind: kindAutoremove}, []string{"autoremove"}},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.Args())
		})
	}
}

func TestRunner_InstallSuccess(t *testing.T) {
	defer goleak.VerifyNone(t)

	brew := fakeBrew(t, `echo "==> Downloading $3"; echo "==> Pouring $2"; exit 0`)

	ok, e := runOne(t, testRunner(brew), Operation{Name: "wget", Kind: KindInstall}, nil)

	assert.True(t, ok)
	assert.Equal(t, progress.StateCompleted, e.State)
	assert.Equal(t, 100, e.Percent)
	assert.Equal(t, "Done", e.Message)
}

func TestRunner_InstallNonZeroExit(t *testing.T) {
	defer goleak.VerifyNone(t)

	brew := fakeBrew(t, `echo "Error: No available formula with the name \"nope\"" >&2; exit 1`)

	ok, e := runOne(t, testRunner(brew), Operation{Name: "nope", Kind: KindInstall}, nil)

	assert.False(t, ok)
	assert.Equal(t, progress.StateFailed, e.State)
	assert.Equal(t, 0, e.Percent)
	assert.Equal(t, "Installation failed", e.Message)
}

func TestRunner_SpawnFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	missing := filepath.Join(t.TempDir(), "no-such-brew")

	ok, e := runOne(t, testRunner(missing), Operation{Name: "wget", Kind: KindInstall}, nil)

	assert.False(t, ok)
	assert.Equal(t, progress.StateFailed, e.State)
	assert.Equal(t, 0, e.Percent)
	assert.Contains(t, e.Message, "could not start process")
	assert.Contains(t, e.Message, missing, "message carries the underlying error")
}

func TestRunner_Timeout(t *testing.T) {
	defer goleak.VerifyNone(t)

	brew := fakeBrew(t, `echo "==> Installing $2"; exec sleep 10`)
	r := testRunner(brew, WithTimeouts(Timeouts{Install: 200 * time.Millisecond}))

	start := time.Now()
	ok, e := runOne(t, r, Operation{Name: "slow", Kind: KindInstall}, nil)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second, "process must be killed at the ceiling")
	assert.Equal(t, progress.StateFailed, e.State)
	assert.Equal(t, "Installation timed out after 200ms", e.Message)
}

func TestRunner_CancelledBeforeStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	brew := fakeBrew(t, `exec sleep 10`)

	cancelled := &atomic.Bool{}
	cancelled.Store(true)

	start := time.Now()
	ok, e := runOne(t, testRunner(brew), Operation{Name: "wget", Kind: KindInstall}, cancelled)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation is observed at the next tick")
	assert.Equal(t, progress.StateFailed, e.State)
	assert.Equal(t, "Cancelled", e.Message)
}

func TestRunner_CancelKillsChildren(t *testing.T) {
	defer goleak.VerifyNone(t)

	// the child of the package manager keeps stdout open; killing the group must release it
	brew := fakeBrew(t, `sleep 10 & wait`)
	r := testRunner(brew, WithReaderGrace(5*time.Second))

	cancelled := &atomic.Bool{}
	time.AfterFunc(100*time.Millisecond, func() { cancelled.Store(true) })

	start := time.Now()
	ok, e := runOne(t, r, Operation{Name: "wget", Kind: KindInstall}, cancelled)

	assert.False(t, ok)
	assert.Less(t, time.Since(start), 4*time.Second, "readers must not wait for the grace period")
	assert.Equal(t, "Cancelled", e.Message)
}

func TestRunner_GrandchildHoldingPipe(t *testing.T) {
	defer goleak.VerifyNone(t)

	brew := fakeBrew(t, `sleep 3 & echo "==> Pouring $2"; exit 0`)

	start := time.Now()
	ok, e := runOne(t, testRunner(brew), Operation{Name: "wget", Kind: KindInstall}, nil)

	assert.True(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second, "reader grace bounds the join")
	assert.Equal(t, progress.StateCompleted, e.State)
}

func TestRunner_StreamsMessagesAndPercent(t *testing.T) {
	defer goleak.VerifyNone(t)

	long := strings.Repeat("x", MaxMessageLength)
	brew := fakeBrew(t, `for i in 1 2 3 4 5 6 7 8; do echo "==> Pouring $2"; echo "`+long+`" >&2; sleep 0.1; done; exit 0`)

	store := progress.NewStore([]string{"wget"})
	done := make(chan bool)

	go func() {
		done <- testRunner(brew).Run(testCtx(), 0, Operation{Name: "wget", Kind: KindInstall}, store, &atomic.Bool{})
	}()

	require.Eventually(t, func() bool {
		e, _ := store.Entry(0)
		assert.NotEqual(t, long, e.Message, "lines of MaxMessageLength or more are never shown")

		return e.Message == "==> Pouring wget" && e.Percent == 80 && e.State == progress.StateInstalling
	}, 3*time.Second, 10*time.Millisecond)

	assert.True(t, <-done)

	e, _ := store.Entry(0)
	assert.Equal(t, "Done", e.Message)
}

func TestRunner_RemoveRunsAutoremove(t *testing.T) {
	defer goleak.VerifyNone(t)

	log := filepath.Join(t.TempDir(), "calls")
	brew := fakeBrew(t, `echo "$@" >> `+log+`; exit 0`)

	ok, e := runOne(t, testRunner(brew), Operation{Name: "wget", Kind: KindRemove}, nil)

	assert.True(t, ok)
	assert.Equal(t, progress.StateCompleted, e.State)

	calls, err := os.ReadFile(log)
	require.NoError(t, err)
	assert.Equal(t, "remove -f wget\nautoremove\n", string(calls))
}

func TestRunner_AutoremoveFailureIsIgnored(t *testing.T) {
	defer goleak.VerifyNone(t)

	brew := fakeBrew(t, `[ "$1" = "autoremove" ] && exit 3; exit 0`)

	ok, e := runOne(t, testRunner(brew), Operation{Name: "wget", Kind: KindRemove}, nil)

	assert.True(t, ok)
	assert.Equal(t, progress.StateCompleted, e.State)
}

func TestRunner_AutoremoveDisabled(t *testing.T) {
	defer goleak.VerifyNone(t)

	log := filepath.Join(t.TempDir(), "calls")
	brew := fakeBrew(t, `echo "$@" >> `+log+`; exit 0`)

	ok, _ := runOne(t, testRunner(brew, WithAutoremove(false)), Operation{Name: "wget", Kind: KindRemove}, nil)
	require.True(t, ok)

	calls, err := os.ReadFile(log)
	require.NoError(t, err)
	assert.Equal(t, "remove -f wget\n", string(calls))
}

func TestRunner_RemoveFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	log := filepath.Join(t.TempDir(), "calls")
	brew := fakeBrew(t, `echo "$@" >> `+log+`; exit 1`)

	ok, e := runOne(t, testRunner(brew), Operation{Name: "wget", Kind: KindRemove}, nil)

	assert.False(t, ok)
	assert.Equal(t, "Removal failed", e.Message)

	calls, err := os.ReadFile(log)
	require.NoError(t, err)
	assert.Equal(t, "remove -f wget\n", string(calls), "autoremove only follows a successful removal")
}

func TestRunner_FetchLeavesEntryOpen(t *testing.T) {
	defer goleak.VerifyNone(t)

	log := filepath.Join(t.TempDir(), "calls")
	brew := fakeBrew(t, `echo "$@" >> `+log+`; exit 0`)

	ok, e := runOne(t, testRunner(brew), Operation{Name: "firefox", Kind: KindFetch, Cask: true}, nil)

	assert.True(t, ok)
	assert.Equal(t, progress.StateDownloading, e.State, "a successful fetch is not terminal")
	assert.Equal(t, 100, e.Percent)
	assert.Equal(t, "Downloaded", e.Message)

	calls, err := os.ReadFile(log)
	require.NoError(t, err)
	assert.Equal(t, "fetch --cask firefox\n", string(calls))
}

func TestRunner_FetchFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	brew := fakeBrew(t, `exit 1`)

	ok, e := runOne(t, testRunner(brew), Operation{Name: "wget", Kind: KindFetch}, nil)

	assert.False(t, ok)
	assert.Equal(t, progress.StateFailed, e.State)
	assert.Equal(t, "Download failed", e.Message)
}
