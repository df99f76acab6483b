// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package console prints the static screens: headers, package lists, previews and the sync report.
package console

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/brim/internal/color"
)

const headerWidth = 67

// Printer writes to a single writer. The first write error is kept and later writes are skipped.
type Printer struct {
	w   io.Writer
	err error
}

// NewPrinter creates a Printer.
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// Err returns the first write error.
func (p *Printer) Err() error {
	return p.err
}

func (p *Printer) printf(format string, a ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintf(p.w, format, a...)
}

func (p *Printer) println(a ...any) {
	if p.err != nil {
		return
	}

	_, p.err = fmt.Fprintln(p.w, a...)
}

// Header prints a boxed title.
func (p *Printer) Header(title string, fg lipgloss.Color) {
	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(fg).
		Foreground(fg).
		Bold(true).
		Width(headerWidth).
		Padding(0, 1)

	p.println()
	p.println(box.Render("BRIM - " + title))
}

// Header colours.
var (
	Cyan   = lipgloss.Color("6")
	Red    = lipgloss.Color("1")
	Yellow = lipgloss.Color("3")
)

func heading(s string) string {
	return color.Colorize(s, color.Bold, color.FgYellow)
}

func ordinal(i, width int) string {
	return color.Colorize(fmt.Sprintf("%*d.", width, i+1), color.Faint)
}
