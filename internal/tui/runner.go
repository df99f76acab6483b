// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/brim/internal/progress"
	"golang.org/x/term"
)

var (
	// ErrNoTerminal is returned when stdin or stdout is not a terminal.
	ErrNoTerminal = errors.New("brim needs an interactive terminal, use --no-tui for plain output")
	// ErrProgram is returned when the bubbletea program fails.
	ErrProgram = errors.New("terminal UI failed")
)

// Runner drives the full-screen display of one batch.
type Runner struct {
	showSummary bool
	headless    bool
	progOpts    []tea.ProgramOption
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithSummary shows the summary screen once the batch has finished,
// instead of leaving as soon as it does.
func WithSummary(show bool) RunnerOption {
	return func(r *Runner) {
		r.showSummary = show
	}
}

// WithProgramOptions appends options to the bubbletea program.
func WithProgramOptions(opts ...tea.ProgramOption) RunnerOption {
	return func(r *Runner) {
		r.progOpts = append(r.progOpts, opts...)
	}
}

// WithHeadless skips the terminal checks and the alternate screen.
// Used with tea.WithInput and tea.WithOutput to drive the program from tests.
func WithHeadless() RunnerOption {
	return func(r *Runner) {
		r.headless = true
	}
}

// NewRunner checks that the process is attached to a terminal and returns a Runner.
func NewRunner(opts ...RunnerOption) (*Runner, error) {
	r := &Runner{
		showSummary: true,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.headless {
		return r, nil
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		return nil, ErrNoTerminal
	}

	return r, nil
}

// Render shows store until the batch is done, or until the user leaves the summary.
// forceQuit is true when the user, or a cancelled ctx, ended the program before
// done reported true.
func (r *Runner) Render(ctx context.Context, store *progress.Store, done func() bool) (bool, error) {
	if !r.headless {
		fd := int(os.Stdin.Fd())
		if state, err := term.GetState(fd); err == nil {
			defer term.Restore(fd, state) //nolint:errcheck
		}
	}

	model := NewModel(store, done, r.showSummary)

	// signals belong to the signal broker, which cancels ctx
	popts := []tea.ProgramOption{tea.WithContext(ctx), tea.WithoutSignalHandler()}
	if !r.headless {
		popts = append(popts, tea.WithAltScreen())
	}

	popts = append(popts, r.progOpts...)

	final, err := tea.NewProgram(model, popts...).Run()
	if err != nil {
		if errors.Is(err, tea.ErrInterrupted) || (errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil) {
			return !done(), nil
		}

		return true, errors.Join(ErrProgram, err)
	}

	if m, ok := final.(*Model); ok {
		return m.ForceQuit(), nil
	}

	return model.ForceQuit(), nil
}
