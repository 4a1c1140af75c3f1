package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"phrasecounter/internal/chart"
	"phrasecounter/internal/phrase"
	"phrasecounter/internal/session"
	"phrasecounter/internal/tally"
)

// chartHeight is the number of rows of the detail panel chart
const chartHeight = 6

// renderDetailPanel renders the selected phrase with its sample chart
func (m Model) renderDetailPanel(width, height int) string {
	var b strings.Builder

	b.WriteString(m.styles.DetailHeader.Width(width).Render("Phrase Details"))
	b.WriteString("\n")

	p, ok := m.SelectedPhrase()
	if !ok {
		b.WriteString(m.styles.Muted.Render("Select a phrase"))
		return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
	}

	b.WriteString(m.formatPhraseDetail(p, width-2))
	return lipgloss.NewStyle().Width(width).Height(height).Render(b.String())
}

// formatPhraseDetail renders the fields of one phrase, the running rate and
// a bar chart of the most recent samples
func (m Model) formatPhraseDetail(p phrase.Phrase, width int) string {
	s := m.styles
	var b strings.Builder

	b.WriteString(s.Label.Render("Phrase:"))
	b.WriteString("\n")
	b.WriteString(wrapText(p.Text, width))
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Hotkey:"), s.HotkeyBadge.Render(p.Hotkey))
	fmt.Fprintf(&b, "%s %s %s\n", s.Label.Render("Color: "), s.Swatch(p.Color), s.Muted.Render(p.Color))
	fmt.Fprintf(&b, "%s %s\n", s.Label.Render("Count: "), s.Count.Render(fmt.Sprintf("%d", p.Count)))

	// Rate so far, from the elapsed time of the current session
	timer := m.ctrl.Timer()
	minutes := timer.Elapsed().Seconds() / 60
	fmt.Fprintf(&b, "%s %s/min\n", s.Label.Render("Rate:  "), tally.FormatRate(session.Rate(p.Count, minutes)))

	if !p.CreatedAt.IsZero() {
		b.WriteString(s.Muted.Render("Added " + p.CreatedAt.Local().Format("Jan 2 15:04")))
		b.WriteString("\n")
	}

	window := m.ctrl.Samples(p.ID)
	values := chartValues(window, width)
	b.WriteString("\n")
	b.WriteString(s.Label.Render(fmt.Sprintf("Activity (last %d ticks):", len(values))))
	b.WriteString("\n")
	if window.Len() == 0 {
		b.WriteString(s.Muted.Render("Start a session to record activity"))
	} else {
		b.WriteString(s.Spark.Render(barChart(values, chartHeight)))
	}

	return b.String()
}

// chartValues returns the newest samples that fit in width columns. The
// window is zero-filled on the left so the chart keeps a fixed width while
// a session warms up.
func chartValues(w *chart.Window, width int) []int {
	values := w.Values()
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	return values
}

// barChart renders samples as a column chart of the given height, one
// column per sample, scaled to the largest value
func barChart(values []int, height int) string {
	peak := 0
	for _, v := range values {
		peak = max(peak, v)
	}

	rows := make([]string, height)
	for row := range height {
		// Row 0 is the top of the chart
		level := height - row
		var line strings.Builder
		for _, v := range values {
			if peak > 0 && v*height >= level*peak && v > 0 {
				line.WriteRune('█')
			} else {
				line.WriteRune(' ')
			}
		}
		rows[row] = line.String()
	}

	axis := fmt.Sprintf("0%s%d", strings.Repeat(" ", max(1, len(values)-1-len(fmt.Sprint(peak)))), peak)
	return strings.Join(rows, "\n") + "\n" + axis
}

// wrapText wraps text at word boundaries to fit within width
func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}

		lineLen := 0
		for _, word := range strings.Fields(line) {
			word = truncate(word, width)
			wordLen := lipgloss.Width(word)
			if lineLen+wordLen+1 > width && lineLen > 0 {
				result.WriteString("\n")
				lineLen = 0
			}
			if lineLen > 0 {
				result.WriteString(" ")
				lineLen++
			}
			result.WriteString(word)
			lineLen += wordLen
		}
	}

	return result.String()
}
