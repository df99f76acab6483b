// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package execute runs a batch for the install and remove commands and reports on it.
package execute

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matt-FFFFFF/brim/internal/console"
	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/pkgmgr"
	"github.com/matt-FFFFFF/brim/internal/runbatch"
	"github.com/matt-FFFFFF/brim/internal/tui"
	"github.com/matt-FFFFFF/brim/internal/webhook"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

// Flags shared by several commands.
const (
	ProgramFlag = "program"
	NoTUIFlag   = "no-tui"
	DryRunFlag  = "dry-run"
	WebhookFlag = "webhook"
	YesFlag     = "yes"
	URLFlag     = "url"

	// ExitFailed is the exit code when a package failed.
	ExitFailed = 1
	// ExitCancelled is the exit code when the batch was abandoned.
	ExitCancelled = 130
)

var (
	// ErrCancelled is returned when the batch was abandoned before it finished.
	ErrCancelled = errors.New("operation cancelled by user")
	// ErrFailed is returned when at least one package failed.
	ErrFailed = errors.New("some packages failed, see above for details")
	// ErrDeclined is returned when the user answers no to the confirmation.
	ErrDeclined = errors.New("nothing changed")
)

// Confirm asks a yes/no question. Replaced in tests.
var Confirm = console.Confirm

// Options describes one batch.
type Options struct {
	// Operation is "install" or "remove". It is reported to the webhook.
	Operation   string
	Program     string
	Parallel    bool
	NoTUI       bool
	ShowSummary bool
	Autoremove  bool
	Webhook     string
	RunnerOpts  []runbatch.RunnerOption
}

// Out is where a command prints. Subcommands share the root command's writers.
func Out(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}

// ErrOut is where a command prints warnings.
func ErrOut(cmd *cli.Command) io.Writer {
	return cmd.Root().ErrWriter
}

// Manager returns a package manager client for the --program flag.
func Manager(cmd *cli.Command) *pkgmgr.Manager {
	return pkgmgr.New(cmd.String(ProgramFlag))
}

// Prepare checks the package manager and returns the installed packages.
func Prepare(ctx context.Context, cmd *cli.Command) ([]string, error) {
	mgr := Manager(cmd)

	if _, err := mgr.EnsureAvailable(ctx); err != nil {
		return nil, err
	}

	return mgr.ListInstalled(ctx)
}

// MaybeConfirm asks question unless --yes was given or stdin is not a terminal.
func MaybeConfirm(cmd *cli.Command, question string) error {
	if cmd.Bool(YesFlag) || !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}

	ok, err := Confirm(question)
	if err != nil {
		return err
	}

	if !ok {
		return ErrDeclined
	}

	return nil
}

// Run executes ops and writes the results to w. Logs produced while the full screen
// display is up are held back and written to errW afterwards.
func Run(ctx context.Context, w, errW io.Writer, ops []runbatch.Operation, opts Options) error {
	started := time.Now()
	runCtx := ctx

	var (
		newRenderer runbatch.RendererFactory
		logBuf      *bytes.Buffer
	)

	if opts.NoTUI {
		newRenderer = func(context.Context) (runbatch.Renderer, error) {
			return tui.NewPlainRenderer(w), nil
		}
	} else {
		logBuf = new(bytes.Buffer)
		runCtx = ctxlog.NewForTUI(ctx, logBuf)

		newRenderer = func(context.Context) (runbatch.Renderer, error) {
			r, err := tui.NewRunner(tui.WithSummary(opts.ShowSummary))
			if err != nil {
				return nil, err
			}

			return r, nil
		}
	}

	runnerOpts := append([]runbatch.RunnerOption{runbatch.WithAutoremove(opts.Autoremove)}, opts.RunnerOpts...)
	runner := runbatch.NewRunner(opts.Program, runnerOpts...)

	results, err := runbatch.NewOrchestrator(runner, newRenderer).Run(runCtx, ops, opts.Parallel)
	elapsed := time.Since(started)

	if logBuf != nil {
		logBuf.WriteTo(errW) //nolint:errcheck
	}

	switch {
	case errors.Is(err, runbatch.ErrTerminalInit):
		return err
	case errors.Is(err, runbatch.ErrCancelled), results.Aborted(len(ops)):
		return ErrCancelled
	case err != nil:
		return err
	}

	if err := results.Write(w, elapsed); err != nil {
		return err
	}

	if opts.Webhook != "" {
		notify(ctx, errW, opts.Webhook, webhook.NewPayload(opts.Operation, results, elapsed))
	}

	if results.HasError() {
		return ErrFailed
	}

	return nil
}

// notify posts the payload. Failures are only reported.
func notify(ctx context.Context, errW io.Writer, url string, p webhook.Payload) {
	// the run context may already be cancelled by a late signal
	ctx = context.WithoutCancel(ctx)

	if err := webhook.NewClient(ctx).Post(ctx, url, p); err != nil {
		ctxlog.Warn(ctx, "failed to send webhook", "error", err)
		fmt.Fprintf(errW, "Warning: failed to send webhook: %s\n", err) //nolint:errcheck

		return
	}

	fmt.Fprintln(errW, "Webhook notification sent successfully") //nolint:errcheck
}

// ExitCode maps an error returned by a command to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrCancelled), errors.Is(err, console.ErrAborted):
		return ExitCancelled
	default:
		return ExitFailed
	}
}

// Exit converts err into a cli exit error with the matching code.
// Declining the confirmation is not an error.
func Exit(err error) error {
	if err == nil || errors.Is(err, ErrDeclined) {
		return nil
	}

	return cli.Exit(err.Error(), ExitCode(err))
}
