// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/matt-FFFFFF/brim/internal/commandinpath"
	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/progress"
	"github.com/matt-FFFFFF/brim/internal/teereader"
)

const (
	// DefaultPollInterval is how often a running subprocess is checked for exit, cancellation and timeout.
	DefaultPollInterval = 100 * time.Millisecond
	// DefaultReaderGrace bounds how long output readers may run on after the process has exited.
	DefaultReaderGrace = 2 * time.Second
	// MaxMessageLength is the exclusive upper bound on the length of an output line shown as a message.
	MaxMessageLength = 50

	stderrTailLines = 20
	nudgeEveryTicks = 10
	nudgeCeiling    = 90
	removeProgress  = 50
	cleanupProgress = 70
)

var (
	// ErrSpawn is returned when the package manager could not be started.
	ErrSpawn = errors.New("could not start process")
	// ErrFailedToCreatePipe is returned when an output pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrCancelled is returned when the cancellation flag stopped an operation or a batch.
	ErrCancelled = errors.New("cancelled")
	// ErrTimedOut is returned when an operation exceeded its time ceiling.
	ErrTimedOut = errors.New("timed out")
	// ErrStream is logged when reading a process output stream fails.
	ErrStream = errors.New("error reading process output")
)

// OperationRunner performs one operation and records its progress at index in store.
// It returns true on success. It must leave the entry in a terminal state, except that
// a successful fetch stays Downloading so that the install phase can pick it up.
type OperationRunner interface {
	Run(ctx context.Context, index int, op Operation, store *progress.Store, cancelled *atomic.Bool) bool
}

var _ OperationRunner = (*Runner)(nil)

// Runner runs operations as subprocesses of the package manager.
type Runner struct {
	Program      string        // Package manager name or path, resolved on PATH for every operation.
	Env          []string      // Extra environment, appended to the current one.
	PollInterval time.Duration // Tick for cancellation and timeout checks.
	Timeouts     Timeouts      // Ceilings per kind, counted in ticks.
	ReaderGrace  time.Duration // How long to wait for output readers after exit.
	Autoremove   bool          // Clean up unused dependencies after a successful removal.
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithPollInterval sets the poll tick.
func WithPollInterval(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.PollInterval = d
	}
}

// WithTimeouts sets the per kind ceilings.
func WithTimeouts(t Timeouts) RunnerOption {
	return func(r *Runner) {
		r.Timeouts = t
	}
}

// WithReaderGrace sets how long output readers may outlive the process.
func WithReaderGrace(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.ReaderGrace = d
	}
}

// WithAutoremove turns the post-removal dependency clean-up on or off.
func WithAutoremove(v bool) RunnerOption {
	return func(r *Runner) {
		r.Autoremove = v
	}
}

// WithEnv appends KEY=VALUE pairs to the subprocess environment.
func WithEnv(env ...string) RunnerOption {
	return func(r *Runner) {
		r.Env = append(r.Env, env...)
	}
}

// NewRunner creates a Runner for program with default poll interval, timeouts and autoremove on.
func NewRunner(program string, opts ...RunnerOption) *Runner {
	r := &Runner{
		Program:      program,
		PollInterval: DefaultPollInterval,
		Timeouts:     DefaultTimeouts(),
		ReaderGrace:  DefaultReaderGrace,
		Autoremove:   true,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Run implements OperationRunner.
func (r *Runner) Run(ctx context.Context, index int, op Operation, store *progress.Store, cancelled *atomic.Bool) bool {
	logger := ctxlog.Logger(ctx).
		With("operation", op.Kind.String()).
		With("package", op.Name).
		With("index", index)

	store.Update(index,
		progress.WithState(op.Kind.activeState()),
		progress.WithPercent(0),
		progress.WithMessage(op.Kind.startMessage()),
	)

	res := r.invoke(ctx, logger, index, op, store, cancelled)

	switch {
	case res.err != nil:
		logger.Info("operation failed", "error", res.err, "stderr", strings.Join(res.tail, "\n"))
		store.Update(index,
			progress.WithState(progress.StateFailed),
			progress.WithPercent(0),
			progress.WithMessage(r.errorMessage(op.Kind, res.err)),
		)

		return false

	case res.exitCode != 0:
		logger.Info("operation failed", "exitCode", res.exitCode, "stderr", strings.Join(res.tail, "\n"))
		store.Update(index,
			progress.WithState(progress.StateFailed),
			progress.WithPercent(0),
			progress.WithMessage(op.Kind.failedMessage()),
		)

		return false
	}

	switch op.Kind {
	case KindFetch:
		store.Update(index, progress.WithPercent(100), progress.WithMessage("Downloaded"))
		logger.Debug("download finished")

		return true

	case KindRemove:
		if r.Autoremove {
			r.cleanDependencies(ctx, logger, index, store, cancelled)
		}
	}

	store.Update(index,
		progress.WithState(progress.StateCompleted),
		progress.WithPercent(100),
		progress.WithMessage("Done"),
	)
	logger.Debug("operation completed")

	return true
}

// cleanDependencies runs autoremove. Its outcome never changes the removal's result.
func (r *Runner) cleanDependencies(ctx context.Context, logger *slog.Logger, index int, store *progress.Store, cancelled *atomic.Bool) {
	store.Update(index, progress.WithPercent(cleanupProgress), progress.WithMessage("Cleaning dependencies..."))

	res := r.invoke(ctx, logger, index, Operation{Kind: kindAutoremove}, store, cancelled)
	if res.err != nil || res.exitCode != 0 {
		logger.Warn("dependency clean-up failed", "error", res.err, "exitCode", res.exitCode)
	}
}

func (r *Runner) errorMessage(kind Kind, err error) string {
	switch {
	case errors.Is(err, ErrTimedOut):
		return fmt.Sprintf("%s timed out after %s", kind.noun(), r.Timeouts.forKind(kind))
	case errors.Is(err, ErrCancelled):
		return "Cancelled"
	default:
		return err.Error()
	}
}

type invocation struct {
	exitCode int
	err      error
	tail     []string
}

type waitResult struct {
	state *os.ProcessState
	err   error
}

// invoke starts the package manager for op and waits for it, polling the cancel flag and
// the tick ceiling. Output readers are always joined before it returns.
func (r *Runner) invoke(
	ctx context.Context,
	logger *slog.Logger,
	index int,
	op Operation,
	store *progress.Store,
	cancelled *atomic.Bool,
) invocation {
	path, err := commandinpath.Find(r.Program)
	if err != nil {
		return invocation{exitCode: -1, err: fmt.Errorf("%w: %w", ErrSpawn, err)}
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return invocation{exitCode: -1, err: errors.Join(ErrSpawn, ErrFailedToCreatePipe, err)}
	}
	defer rOut.Close() //nolint:errcheck

	rErr, wErr, err := os.Pipe()
	if err != nil {
		_ = wOut.Close()
		return invocation{exitCode: -1, err: errors.Join(ErrSpawn, ErrFailedToCreatePipe, err)}
	}
	defer rErr.Close() //nolint:errcheck

	// nil leaves stdin closed when /dev/null is unavailable
	stdin, _ := os.Open(os.DevNull)
	if stdin != nil {
		defer stdin.Close() //nolint:errcheck
	}

	args := op.Args()
	logger.Debug("starting process", "path", path, "args", args)

	ps, err := os.StartProcess(path, slices.Concat([]string{filepath.Base(path)}, args), &os.ProcAttr{
		Env:   slices.Concat(os.Environ(), r.Env),
		Files: []*os.File{stdin, wOut, wErr},
		Sys:   sysProcAttr(),
	})

	// the child has its own copies; ours must go or the readers never see EOF
	_ = wOut.Close()
	_ = wErr.Close()

	if err != nil {
		return invocation{exitCode: -1, err: fmt.Errorf("%w: %w", ErrSpawn, err)}
	}

	logger.Debug("process started", "pid", ps.Pid)

	outTee := teereader.NewLineTeeReader(rOut, 0, func(line string) {
		r.onStdout(index, op.Kind, line, store)
	})
	errTee := teereader.NewLineTeeReader(rErr, stderrTailLines, func(line string) {
		r.onStderr(index, op.Kind, line, store)
	})

	readers := &sync.WaitGroup{}

	for _, s := range []struct {
		name string
		tee  *teereader.LineTeeReader
		f    *os.File
	}{{"stdout", outTee, rOut}, {"stderr", errTee, rErr}} {
		readers.Add(1)

		go func() {
			defer readers.Done()
			drainStream(logger, s.name, s.tee, s.f)
		}()
	}

	waitCh := make(chan waitResult, 1)

	go func() {
		st, err := ps.Wait()
		waitCh <- waitResult{state: st, err: err}
	}()

	wr, stopErr := r.poll(ctx, logger, index, op.Kind, ps, waitCh, store, cancelled)

	r.joinReaders(logger, readers, rOut, rErr)

	res := invocation{exitCode: -1, tail: errTee.Tail()}
	if wr.state != nil {
		res.exitCode = wr.state.ExitCode()
	}

	switch {
	case stopErr != nil:
		res.err = stopErr
	case wr.err != nil:
		res.err = wr.err
	}

	logger.Debug("process finished", "exitCode", res.exitCode, "error", res.err)

	return res
}

// poll waits for the process, killing it when the cancel flag is set or the tick ceiling is passed.
func (r *Runner) poll(
	ctx context.Context,
	logger *slog.Logger,
	index int,
	kind Kind,
	ps *os.Process,
	waitCh <-chan waitResult,
	store *progress.Store,
	cancelled *atomic.Bool,
) (waitResult, error) {
	interval := r.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	maxTicks := max(int(r.Timeouts.forKind(kind)/interval), 1)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ticks := 0

	for {
		select {
		case wr := <-waitCh:
			return wr, nil

		case <-ticker.C:
			ticks++

			var stopErr error

			switch {
			case cancelled.Load() || ctx.Err() != nil:
				stopErr = ErrCancelled
			case ticks > maxTicks:
				stopErr = ErrTimedOut
			case kind == KindFetch && ticks%nudgeEveryTicks == 0:
				store.TryUpdate(index, progress.WithPercent(ticks*nudgeCeiling/maxTicks))
			}

			if stopErr == nil {
				continue
			}

			logger.Info("stopping process", "reason", stopErr.Error(), "pid", ps.Pid, "ticks", ticks)

			if err := killProcessTree(ps); err != nil {
				if errors.Is(err, os.ErrProcessDone) {
					logger.Debug("process already done", "pid", ps.Pid)
				} else {
					logger.Error("process kill error", "pid", ps.Pid, "error", err)
				}
			}

			return <-waitCh, stopErr
		}
	}
}

// joinReaders waits for both output readers. If a grandchild still holds a pipe open after
// ReaderGrace, the read ends are closed to unblock them.
func (r *Runner) joinReaders(logger *slog.Logger, readers *sync.WaitGroup, files ...*os.File) {
	done := make(chan struct{})

	go func() {
		readers.Wait()
		close(done)
	}()

	grace := r.ReaderGrace
	if grace <= 0 {
		grace = DefaultReaderGrace
	}

	timer := time.NewTimer(grace)
	defer timer.Stop()

	select {
	case <-done:
		return
	case <-timer.C:
	}

	logger.Debug("output still open after process exit, closing pipes", "grace", grace)

	for _, f := range files {
		_ = f.Close()
	}

	<-done
}

func (r *Runner) onStdout(index int, kind Kind, line string, store *progress.Store) {
	opts := make([]progress.UpdateOption, 0, 2)

	switch kind {
	case KindInstall:
		opts = append(opts, progress.WithPercent(EstimatePercent(line)))
	case KindRemove:
		opts = append(opts, progress.WithPercent(removeProgress))
	case KindFetch, kindAutoremove:
	}

	if msg, ok := displayLine(kind, line); ok {
		opts = append(opts, progress.WithMessage(msg))
	}

	if len(opts) > 0 {
		store.TryUpdate(index, opts...)
	}
}

func (r *Runner) onStderr(index int, kind Kind, line string, store *progress.Store) {
	if msg, ok := displayLine(kind, line); ok {
		store.TryUpdate(index, progress.WithMessage(msg))
	}
}

// displayLine reports whether an output line is short enough to replace the status message.
// The dependency clean-up keeps its own fixed message.
func displayLine(kind Kind, line string) (string, bool) {
	if kind == kindAutoremove {
		return "", false
	}

	trimmed := strings.TrimSpace(line)
	if trimmed == "" || len(trimmed) >= MaxMessageLength {
		return "", false
	}

	return trimmed, true
}

// drainStream feeds the tee until EOF. After a read error the rest of the stream
// is discarded without updates so the child never blocks on a full pipe.
func drainStream(logger *slog.Logger, name string, tee *teereader.LineTeeReader, f *os.File) {
	err := tee.Drain()
	if err == nil || errors.Is(err, os.ErrClosed) {
		return
	}

	logger.Debug("stream read failed", "stream", name, "error", errors.Join(ErrStream, err))

	_, _ = io.Copy(io.Discard, f)
}
