// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main is the entry point for the brim command-line application.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/matt-FFFFFF/brim"
	"github.com/matt-FFFFFF/brim/cmd"
	"github.com/matt-FFFFFF/brim/cmd/execute"
	"github.com/matt-FFFFFF/brim/internal/ctxlog"
	"github.com/matt-FFFFFF/brim/internal/signalbroker"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)
	defer cancel()

	sigCh := signalbroker.New(ctx)

	// first signal cancels the batch, a second one of the same kind exits at once
	go signalbroker.Watch(ctx, sigCh, cancel, func() {
		os.Exit(execute.ExitCancelled)
	})

	rootCmd := cmd.NewRootCmd()
	rootCmd.Version = fmt.Sprintf("%s (commit: %s)", brim.Version, brim.Commit)

	err := rootCmd.Run(ctx, os.Args) // exit errors are handled by the cli framework

	if err != nil {
		code := execute.ExitCode(err)

		// package failures keep their exit code even if a signal arrived afterwards
		if ctx.Err() != nil && !errors.Is(err, execute.ErrFailed) {
			ctxlog.Logger(ctx).Error("command terminated due to cancellation", "error", err)
			os.Exit(execute.ExitCancelled)
		}

		ctxlog.Logger(ctx).Error("command execution failed", "error", err)
		os.Exit(code)
	}

	if ctx.Err() != nil {
		ctxlog.Logger(ctx).Info("signal received after the command finished")
	}

	ctxlog.Logger(ctx).Debug("command completed successfully")
}
