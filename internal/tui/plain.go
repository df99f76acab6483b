// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/matt-FFFFFF/brim/internal/color"
	"github.com/matt-FFFFFF/brim/internal/progress"
)

// PlainRenderer prints a line each time a package changes state.
type PlainRenderer struct {
	w        io.Writer
	interval time.Duration
}

// NewPlainRenderer creates a PlainRenderer writing to w.
func NewPlainRenderer(w io.Writer) *PlainRenderer {
	return &PlainRenderer{
		w:        w,
		interval: TickInterval,
	}
}

// Render polls store until done reports true or ctx is cancelled.
// It never force quits.
func (p *PlainRenderer) Render(ctx context.Context, store *progress.Store, done func() bool) (bool, error) {
	seen := make([]progress.State, store.Len())
	ticker := time.NewTicker(p.interval)

	defer ticker.Stop()

	for {
		finished := done()
		if err := p.print(store.Snapshot(), seen); err != nil {
			return false, err
		}

		if finished {
			return false, nil
		}

		select {
		case <-ctx.Done():
			return false, nil
		case <-ticker.C:
		}
	}
}

func (p *PlainRenderer) print(entries []progress.Entry, seen []progress.State) error {
	for i, e := range entries {
		if i >= len(seen) || seen[i] == e.State {
			continue
		}

		seen[i] = e.State

		line := fmt.Sprintf("[%d/%d] %-24s %s", i+1, len(entries), e.Name, e.State)
		if e.Message != "" {
			line += " " + e.Message
		}

		if _, err := fmt.Fprintln(p.w, colorForState(e.State, line)); err != nil {
			return err
		}
	}

	return nil
}

func colorForState(s progress.State, line string) string {
	switch {
	case s == progress.StateCompleted:
		return color.Colorize(line, color.FgGreen)
	case s == progress.StateFailed:
		return color.Colorize(line, color.FgRed)
	case s.IsActive():
		return color.Colorize(line, color.FgYellow)
	default:
		return line
	}
}
