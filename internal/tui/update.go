// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/matt-FFFFFF/brim/internal/progress"
)

// tickMsg triggers a refresh from the store.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(TickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.refresh()

		if !m.finished {
			return m, tick()
		}

		// the store is final, so the summary needs no more ticks
		if !m.showSummary {
			return m, tea.Quit
		}

		m.screen = screenSummary

		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

		return m, nil
	}

	return m, nil
}

// refresh copies the store and latches completion.
func (m *Model) refresh() {
	if m.finished {
		return
	}

	// read done first so that a snapshot taken after it is final
	finished := m.done()
	m.entries = m.store.Snapshot()

	if finished {
		m.finished = true
		m.elapsed = time.Since(m.started)
	}
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.screen == screenSummary {
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}

		return m, nil
	}

	switch msg.String() {
	case "q":
		if !m.canQuit() {
			return m, nil
		}

		if m.showSummary {
			m.refresh()
			m.screen = screenSummary

			return m, nil
		}

		return m, tea.Quit

	case "esc", "ctrl+c":
		m.forceQuit = !m.canQuit()
		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.screen == screenSummary {
		return m.summaryView()
	}

	return m.liveView()
}

func (m *Model) liveView() string {
	var b strings.Builder

	counts := progress.CountEntries(m.entries)

	b.WriteString(m.styles.Title.Render(Title))
	b.WriteString("\n\n")

	ratio := 0.0
	if counts.Total > 0 {
		ratio = float64(counts.Terminal()) / float64(counts.Total)
	}

	b.WriteString(m.overall.ViewAs(ratio))
	fmt.Fprintf(&b, " %d/%d packages\n\n", counts.Terminal(), counts.Total)

	start, end := visibleWindow(m.entries, rowsPerScreen(m.height, liveChromeLines))
	for _, e := range m.entries[start:end] {
		b.WriteString(m.row(e))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render(m.liveHelp(counts)))

	return b.String()
}

func (m *Model) row(e progress.Entry) string {
	label := e.Message
	if label == "" {
		label = fmt.Sprintf("%d%%", e.Percent)
	}

	return fmt.Sprintf("%s %s %s %s",
		m.styles.stateStyle(e.State).Render(stateIcon(e.State)),
		m.styles.Name.Render(e.Name),
		m.bars[e.State].ViewAs(float64(e.Percent)/100),
		m.styles.Message.Render(label),
	)
}

func (m *Model) liveHelp(c progress.Counts) string {
	if m.canQuit() {
		if m.showSummary {
			return fmt.Sprintf("Finished: %d completed, %d failed. Press q for the summary.", c.Completed, c.Failed)
		}

		return fmt.Sprintf("Finished: %d completed, %d failed. Press q to quit.", c.Completed, c.Failed)
	}

	return "Working... q quits once every package has finished, ESC aborts now."
}

func (m *Model) summaryView() string {
	var b strings.Builder

	counts := progress.CountEntries(m.entries)

	b.WriteString(m.styles.Title.Render(Title + " - Summary"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Total: %d  %s  %s",
		counts.Total,
		m.styles.Completed.Render(fmt.Sprintf("Completed: %d", counts.Completed)),
		m.styles.Failed.Render(fmt.Sprintf("Failed: %d", counts.Failed)),
	)

	if m.elapsed > 0 {
		fmt.Fprintf(&b, "  Elapsed: %s", m.elapsed.Round(time.Second))
	}

	b.WriteString("\n\n")

	limit := rowsPerScreen(m.height, summaryChromeLines)
	for i, e := range m.entries {
		if i == limit-1 && len(m.entries) > limit {
			fmt.Fprintf(&b, "... and %d more\n", len(m.entries)-i)
			break
		}

		fmt.Fprintf(&b, "%s %s %s\n", m.summaryMark(e.State), e.Name, m.styles.Message.Render(e.Message))
	}

	b.WriteString("\n")
	b.WriteString(m.styles.Help.Render("Press q or ESC to exit."))

	return b.String()
}

// summaryMark is ✓ or ✗ for finished entries and ~ for entries that never finished.
func (m *Model) summaryMark(s progress.State) string {
	switch s {
	case progress.StateCompleted:
		return m.styles.Completed.Render("✓")
	case progress.StateFailed:
		return m.styles.Failed.Render("✗")
	default:
		return m.styles.Pending.Render("~")
	}
}

func stateIcon(s progress.State) string {
	switch s {
	case progress.StateDownloading:
		return "⬇"
	case progress.StateInstalling:
		return "⚡"
	case progress.StateRemoving:
		return "🗑"
	case progress.StateCompleted:
		return "✅"
	case progress.StateFailed:
		return "❌"
	default:
		return "⏳"
	}
}
