package tui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"phrasecounter/internal/history"
	"phrasecounter/internal/phrase"
)

// Column widths of the phrase list
const (
	PhraseHotkeyWidth = 5
	PhraseTextWidth   = 28
	PhraseCountWidth  = 7
)

// ============================================================================
// Phrase Item
// ============================================================================

// phraseItem wraps a Phrase and its recent samples for the list component
type phraseItem struct {
	phrase  phrase.Phrase
	samples []int
}

func (i phraseItem) FilterValue() string { return i.phrase.Text }
func (i phraseItem) Title() string       { return i.phrase.Text }
func (i phraseItem) Description() string {
	return fmt.Sprintf("[%s] %d", i.phrase.Hotkey, i.phrase.Count)
}

// phraseDelegate renders phrase rows: badge, swatch, text, count, sparkline
type phraseDelegate struct {
	styles *Styles
	width  int
}

func newPhraseDelegate(styles *Styles) *phraseDelegate {
	return &phraseDelegate{styles: styles}
}

// SetWidth sets the row width
func (d *phraseDelegate) SetWidth(w int) { d.width = w }

// SparkWidth is the number of samples that fit after the fixed columns
func (d *phraseDelegate) SparkWidth() int {
	w := d.width - PhraseHotkeyWidth - PhraseTextWidth - PhraseCountWidth - 8
	if w < 0 {
		return 0
	}
	return w
}

func (d *phraseDelegate) Height() int                             { return 1 }
func (d *phraseDelegate) Spacing() int                            { return 0 }
func (d *phraseDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d *phraseDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(phraseItem)
	if !ok {
		return
	}
	s := d.styles

	cursor := "  "
	textStyle := s.Normal
	if index == m.Index() {
		cursor = s.Label.Render("> ")
		textStyle = s.Selected
	}

	badge := s.HotkeyBadge.Render(i.phrase.Hotkey)
	badge += strings.Repeat(" ", max(0, PhraseHotkeyWidth-lipgloss.Width(badge)))
	text := textStyle.Render(padRight(truncate(i.phrase.Text, PhraseTextWidth), PhraseTextWidth))
	count := s.Count.Render(padLeft(fmt.Sprintf("%d", i.phrase.Count), PhraseCountWidth))
	spark := s.Spark.Render(sparkline(i.samples))

	fmt.Fprintf(w, "%s%s %s %s %s  %s", cursor, badge, s.Swatch(i.phrase.Color), text, count, spark)
}

// ============================================================================
// Day Item
// ============================================================================

// dayItem wraps one day of archived totals for the history list
type dayItem struct {
	day history.DayTotal
	max int // Largest day total in the list, for bar scaling
}

func (i dayItem) FilterValue() string { return i.day.Label }
func (i dayItem) Title() string       { return i.day.Label }
func (i dayItem) Description() string { return breakdown(i.day.Counts) }

// dayDelegate renders a day as a horizontal bar with a per-phrase breakdown
type dayDelegate struct {
	styles *Styles
	width  int
}

func newDayDelegate(styles *Styles) *dayDelegate {
	return &dayDelegate{styles: styles}
}

// SetWidth sets the row width
func (d *dayDelegate) SetWidth(w int) { d.width = w }

func (d *dayDelegate) Height() int                             { return 2 }
func (d *dayDelegate) Spacing() int                            { return 1 }
func (d *dayDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d *dayDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	i, ok := item.(dayItem)
	if !ok {
		return
	}
	s := d.styles

	labelStyle := s.Label
	if index == m.Index() {
		labelStyle = s.Selected
	}

	total := i.day.Total()
	barWidth := d.width - 20
	bar := s.Bar.Render(hbar(total, i.max, barWidth))

	fmt.Fprintf(w, "%s %s %s\n  %s",
		labelStyle.Render(padRight(i.day.Label, 6)),
		bar,
		s.Count.Render(fmt.Sprintf("%d", total)),
		s.Muted.Render(truncate(breakdown(i.day.Counts), max(10, d.width-4))),
	)
}

// ============================================================================
// Helper Functions
// ============================================================================

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

// sparkline renders samples as block characters scaled between their
// minimum and maximum
func sparkline(values []int) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
	}

	out := make([]rune, len(values))
	for i, v := range values {
		level := 0
		if hi > lo {
			level = (v - lo) * (len(sparkLevels) - 1) / (hi - lo)
		}
		out[i] = sparkLevels[level]
	}
	return string(out)
}

// hbar renders value as a bar of up to width cells relative to peak
func hbar(value, peak, width int) string {
	if width <= 0 || peak <= 0 || value <= 0 {
		return ""
	}
	n := value * width / peak
	if n == 0 {
		n = 1
	}
	return strings.Repeat("█", n)
}

// breakdown lists per-phrase counts alphabetically
func breakdown(counts map[string]int) string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s %d", name, counts[name])
	}
	return strings.Join(parts, " · ")
}

// truncate shortens a string to max runes with ellipsis
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen < 4 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}

// padRight pads a string with spaces on the right to reach target width
func padRight(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// padLeft pads a string with spaces on the left to reach target width
func padLeft(s string, width int) string {
	if n := lipgloss.Width(s); n < width {
		return strings.Repeat(" ", width-n) + s
	}
	return s
}
