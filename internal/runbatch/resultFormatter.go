// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matt-FFFFFF/brim/internal/color"
)

// Print writes the results to stdout.
func (r Results) Print(elapsed time.Duration) error {
	return r.Write(os.Stdout, elapsed)
}

// Write writes one line per result followed by a totals line.
// elapsed is omitted when zero.
func (r Results) Write(w io.Writer, elapsed time.Duration) error {
	for _, res := range r {
		var mark string

		switch {
		case res.Completed():
			mark = color.Colorize("✓", color.FgGreen)
		case res.Failed():
			mark = color.Colorize("✗", color.FgRed)
		default:
			mark = color.Colorize("~", color.FgYellow)
		}

		if _, err := fmt.Fprintf(w, "%s %s %s\n", mark, color.Colorize(res.Name, color.Bold), color.Colorize(res.Status, color.Faint)); err != nil {
			return err //nolint:wrapcheck
		}
	}

	completed, failed := r.Counts()
	line := fmt.Sprintf("Total: %d  Completed: %s  Failed: %s",
		len(r),
		color.Colorize(fmt.Sprint(completed), color.FgGreen),
		color.Colorize(fmt.Sprint(failed), color.FgRed),
	)

	if elapsed > 0 {
		line += fmt.Sprintf("  Elapsed: %s", elapsed.Round(time.Second))
	}

	_, err := fmt.Fprintln(w, line)

	return err //nolint:wrapcheck
}
