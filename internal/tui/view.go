package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"phrasecounter/internal/session"
)

// View renders the UI based on the model state
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Header with title, session state and elapsed time
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	// View mode tabs
	b.WriteString(m.renderViewTabs())
	b.WriteString("\n")

	switch {
	case m.summary != nil:
		b.WriteString(m.renderSummary())
	case m.viewMode == ViewPhrases:
		b.WriteString(m.renderPhraseHeaders())
		b.WriteString("\n")
		b.WriteString(m.renderPhrases())
	case m.viewMode == ViewHistory:
		b.WriteString(m.renderHistoryHeaders())
		b.WriteString("\n")
		b.WriteString(m.historyList.View())
	}

	// Prompt or status line
	b.WriteString("\n")
	b.WriteString(m.renderStatusLine())

	// Help footer
	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

// renderHeader renders the top header bar
func (m Model) renderHeader() string {
	s := m.styles
	title := s.Title.Render("Phrase Counter")

	timer := m.ctrl.Timer()
	var state string
	switch timer.State() {
	case session.Running:
		state = s.Running.Render("● running")
	case session.Stopped:
		state = s.Stopped.Render("■ stopped")
	default:
		state = s.Status.Render("○ idle")
	}
	elapsed := s.Status.Render("  " + session.FormatElapsed(timer.Elapsed()))
	count := s.Status.Render(fmt.Sprintf("%d phrases  ", m.ctrl.Phrases().Len()))

	// Calculate spacing
	leftPart := lipgloss.Width(title)
	rightPart := lipgloss.Width(count) + lipgloss.Width(state) + lipgloss.Width(elapsed)
	spacing := m.width - leftPart - rightPart - 4
	if spacing < 1 {
		spacing = 1
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		title,
		strings.Repeat(" ", spacing),
		count,
		state,
		elapsed,
	)
}

// renderViewTabs renders the tab bar for view modes
func (m Model) renderViewTabs() string {
	tabs := []struct {
		name string
		mode ViewMode
	}{
		{"Phrases", ViewPhrases},
		{"History", ViewHistory},
	}

	rendered := make([]string, len(tabs))
	for i, t := range tabs {
		if t.mode == m.viewMode {
			rendered[i] = m.styles.ActiveTab.Render(t.name)
		} else {
			rendered[i] = m.styles.InactiveTab.Render(t.name)
		}
	}

	row := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	gap := strings.Repeat("─", max(0, m.width-lipgloss.Width(row)-2))

	return row + m.styles.TabGap.Render(gap)
}

// renderPhrases renders the phrase list, with the detail panel beside it
func (m Model) renderPhrases() string {
	if len(m.phraseList.Items()) == 0 {
		return m.styles.Muted.Render("  No phrases yet. Press ctrl+n to add one.")
	}
	if !m.detailPanelOpen {
		return m.phraseList.View()
	}

	listWidth := m.phraseList.Width()
	panelWidth := max(20, m.width-4-listWidth-3)
	panel := m.styles.DetailBorder.Render(m.renderDetailPanel(panelWidth, m.phraseList.Height()))
	return lipgloss.JoinHorizontal(lipgloss.Top, m.phraseList.View(), " ", panel)
}

// renderSummary renders the totals of the last saved session
func (m Model) renderSummary() string {
	var b strings.Builder
	b.WriteString(m.styles.Label.Render("Session saved"))
	b.WriteString("\n\n")
	b.WriteString(m.summary.String())
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render("enter: dismiss"))
	return m.styles.Modal.Render(b.String())
}

// renderStatusLine shows the open prompt, or else the last error
func (m Model) renderStatusLine() string {
	switch m.inputMode {
	case inputNewPhrase:
		return m.styles.Prompt.Render("New phrase: ") + m.input.View()
	case inputHotkey:
		return m.styles.Prompt.Render("Hotkey: ") + m.input.View()
	}
	if m.err != nil {
		return m.styles.ErrorBar.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return ""
}

// renderHelp renders the help footer
func (m Model) renderHelp() string {
	var help []string

	switch {
	case m.inputMode != inputNone:
		help = []string{"enter:submit", "esc:cancel"}
	case m.summary != nil:
		help = []string{"enter:dismiss"}
	case m.viewMode == ViewPhrases:
		help = []string{
			"hotkey:count",
			"←/→:-/+",
			"^n:new",
			"^k:hotkey",
			"^d:delete",
			"^t:start",
			"^x:stop",
			"^r:reset",
			"^w:save",
			"enter:detail",
			"tab:history",
			"esc:quit",
		}
	case m.viewMode == ViewHistory:
		help = []string{
			"↑/↓:navigate",
			"tab:phrases",
			"esc:quit",
		}
	}

	return m.styles.Help.Render(strings.Join(help, " | "))
}

// renderPhraseHeaders renders column headers for the phrase list
func (m Model) renderPhraseHeaders() string {
	// Same widths as the delegate
	key := padRight("Key", PhraseHotkeyWidth)
	text := padRight("Phrase", PhraseTextWidth)
	count := padLeft("Count", PhraseCountWidth)

	header := fmt.Sprintf("  %s   %s %s  %s", key, text, count, "Activity")
	return m.styles.ColumnHeader.Width(m.width - 4).Render(header)
}

// renderHistoryHeaders renders column headers for the history list
func (m Model) renderHistoryHeaders() string {
	header := fmt.Sprintf("%s  (%d entries)", padRight("Day", 6), m.ctrl.History().Len())
	return m.styles.ColumnHeader.Width(m.width - 4).Render(header)
}
