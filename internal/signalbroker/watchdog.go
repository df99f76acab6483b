// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/brim/internal/ctxlog"
)

// Watch reads sigCh until it is closed.
// The first signal of any type calls stop; a repeat of an already seen type calls force and returns.
// stop is called at most once.
func Watch(ctx context.Context, sigCh chan os.Signal, stop, force func()) {
	seen := make(map[os.Signal]struct{})
	stopped := false

	for sig := range sigCh {
		if _, ok := seen[sig]; ok {
			ctxlog.Warn(ctx, "watchdog", "detail", "received second signal of type, forcing exit", "signal", sig.String())
			force()

			return
		}

		seen[sig] = struct{}{}

		if stopped {
			ctxlog.Info(ctx, "watchdog", "detail", "already stopping", "signal", sig.String())
			continue
		}

		ctxlog.Warn(ctx, "watchdog", "detail", "received signal, stopping after the current package", "signal", sig.String())

		stopped = true

		stop()
	}
}
