// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"time"

	bar "github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/brim/internal/progress"
)

const (
	// TickInterval is how often the model re-reads the store.
	TickInterval = 100 * time.Millisecond
	// Title is shown at the top of every screen.
	Title = "BRIM - Brew Remote Install Manager"

	defaultWidth  = 80
	defaultHeight = 24
	nameWidth     = 24
	barWidth      = 30
	// title, blank, overall, blank above the rows; blank and footer below
	liveChromeLines = 6
	// title, blank, counts, blank above the list; blank and footer below
	summaryChromeLines = 6
)

type screen int

const (
	screenLive screen = iota
	screenSummary
)

// Styles holds the lipgloss styles of both screens.
type Styles struct {
	Title     lipgloss.Style
	Name      lipgloss.Style
	Pending   lipgloss.Style
	Active    lipgloss.Style
	Completed lipgloss.Style
	Failed    lipgloss.Style
	Message   lipgloss.Style
	Help      lipgloss.Style
}

// NewStyles creates the default styles.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")),
		Name: lipgloss.NewStyle().
			Width(nameWidth).
			MaxWidth(nameWidth),
		Pending: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
		Active: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Completed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")),
		Failed: lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")),
		Message: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")).
			Italic(true),
		Help: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
	}
}

// stateStyle picks the style of an entry's state label.
func (s *Styles) stateStyle(st progress.State) lipgloss.Style {
	switch {
	case st == progress.StateCompleted:
		return s.Completed
	case st == progress.StateFailed:
		return s.Failed
	case st.IsActive():
		return s.Active
	default:
		return s.Pending
	}
}

// stateColours are the bar fills per state.
var stateColours = map[progress.State]string{
	progress.StatePending:     "#6C6C6C",
	progress.StateDownloading: "#5FAFFF",
	progress.StateInstalling:  "#FFD75F",
	progress.StateRemoving:    "#FF875F",
	progress.StateCompleted:   "#5FD75F",
	progress.StateFailed:      "#FF5F5F",
}

// Model is the bubbletea model of a running batch. It only reads the store.
type Model struct {
	store       *progress.Store
	done        func() bool
	showSummary bool

	entries   []progress.Entry
	finished  bool
	forceQuit bool
	screen    screen
	started   time.Time
	elapsed   time.Duration

	width  int
	height int

	overall bar.Model
	bars    map[progress.State]bar.Model
	styles  *Styles
}

// NewModel creates a model for store. done reports whether the batch has finished.
// Once it does, the program quits, or with showSummary switches to the summary screen.
func NewModel(store *progress.Store, done func() bool, showSummary bool) *Model {
	m := &Model{
		store:       store,
		done:        done,
		showSummary: showSummary,
		entries:     store.Snapshot(),
		started:     time.Now(),
		width:       defaultWidth,
		height:      defaultHeight,
		overall:     bar.New(bar.WithDefaultGradient(), bar.WithoutPercentage()),
		bars:        make(map[progress.State]bar.Model, len(stateColours)),
		styles:      NewStyles(),
	}

	for st, c := range stateColours {
		m.bars[st] = bar.New(bar.WithSolidFill(c), bar.WithoutPercentage())
	}

	m.resize()

	return m
}

// ForceQuit reports whether the user abandoned the batch before it finished.
func (m *Model) ForceQuit() bool {
	return m.forceQuit
}

func (m *Model) resize() {
	overallWidth := max(m.width-nameWidth-4, 10)
	m.overall.Width = overallWidth

	w := min(barWidth, max(m.width-nameWidth-20, 10))
	for st, b := range m.bars {
		b.Width = w
		m.bars[st] = b
	}
}

// canQuit reports whether q may leave the live screen.
func (m *Model) canQuit() bool {
	if m.finished {
		return true
	}

	for _, e := range m.entries {
		if !e.State.IsTerminal() {
			return false
		}
	}

	return true
}

// rowsPerScreen is the number of package rows that fit below the header.
func rowsPerScreen(height, chrome int) int {
	return max(height-chrome, 1)
}

// visibleWindow returns the half-open range of rows to draw. The window starts one row before
// the first entry that is not Completed, so the row just finished stays in view, and is clamped
// so that it is always full. When every entry is Completed it shows the head of the list.
func visibleWindow(entries []progress.Entry, perScreen int) (int, int) {
	n := len(entries)
	if perScreen <= 0 || n <= perScreen {
		return 0, n
	}

	first := 0

	for i, e := range entries {
		if e.State != progress.StateCompleted {
			first = i
			break
		}
	}

	start := min(max(first-1, 0), n-perScreen)

	return start, start + perScreen
}
