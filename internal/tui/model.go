package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"phrasecounter/internal/phrase"
	"phrasecounter/internal/session"
	"phrasecounter/internal/storage/file"
	"phrasecounter/internal/tally"
)

// ViewMode represents the current view
type ViewMode int

const (
	ViewPhrases ViewMode = iota // Phrase list with sparklines
	ViewHistory                 // Archived totals per day
)

// inputMode is the prompt currently capturing keys
type inputMode int

const (
	inputNone      inputMode = iota
	inputNewPhrase           // Text of a new phrase
	inputHotkey              // New hotkey of the selected phrase
)

// ModelOptions configures the TUI
type ModelOptions struct {
	Controller *tally.Controller

	// TickInterval defaults to one second
	TickInterval time.Duration

	// Theme is a catppuccin flavor name
	Theme string

	// Watcher reports on-disk phrase changes; nil for non-file backends
	Watcher *file.Watcher

	Logger zerolog.Logger
}

// Model represents the application state
type Model struct {
	// Core state
	ctx      context.Context
	ctrl     *tally.Controller
	interval time.Duration
	logger   zerolog.Logger
	viewMode ViewMode

	// Change notifications from the phrase store
	changes     chan phrase.Change
	unsubscribe func()
	watcher     *file.Watcher

	// UI components
	phraseList  list.Model
	historyList list.Model
	input       textinput.Model
	inputMode   inputMode

	// Delegates (stored to update width)
	phraseDelegate *phraseDelegate
	dayDelegate    *dayDelegate
	styles         *Styles

	// Handle of the running tick loop; zero when none
	tick session.Handle

	// Detail panel state
	detailPanelOpen bool

	// Summary of the last saved session, shown until dismissed
	summary *tally.Summary

	// UI dimensions
	width  int
	height int

	// Last error, shown in the status line
	err error
}

// NewModel creates a new Model with initialized state
func NewModel(opts ModelOptions) Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = time.Second
	}

	styles := NewStyles(opts.Theme)
	phraseDel := newPhraseDelegate(&styles)
	dayDel := newDayDelegate(&styles)

	m := Model{
		ctx:            context.Background(),
		ctrl:           opts.Controller,
		interval:       opts.TickInterval,
		logger:         opts.Logger.With().Str("component", "tui").Logger(),
		viewMode:       ViewPhrases,
		changes:        make(chan phrase.Change, 64),
		watcher:        opts.Watcher,
		phraseDelegate: phraseDel,
		dayDelegate:    dayDel,
		styles:         &styles,
	}

	// Drop notifications when the buffer is full; every message rebuilds
	// the whole list anyway.
	changes := m.changes
	m.unsubscribe = m.ctrl.Phrases().OnChange(func(c phrase.Change) {
		select {
		case changes <- c:
		default:
		}
	})

	m.phraseList = newList(phraseDel)
	m.historyList = newList(dayDel)

	m.input = textinput.New()
	m.input.Prompt = ""
	m.input.CharLimit = 120

	m = m.refreshPhrases()
	m = m.refreshHistory()
	return m
}

func newList(d list.ItemDelegate) list.Model {
	l := list.New([]list.Item{}, d, 0, 0)
	l.SetShowTitle(false)
	l.SetShowHelp(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()
	return l
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.waitForChangeCmd(),
		m.watchFileCmd(),
	)
}

// Close releases the change subscription
func (m Model) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

// Message types
type (
	tickMsg          struct{ handle session.Handle }
	phraseChangedMsg phrase.Change
	fileChangedMsg   file.WatchEvent
	errMsg           struct{ error }
)

// tickCmd schedules the next tick of the session identified by h
func (m Model) tickCmd(h session.Handle) tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return tickMsg{handle: h}
	})
}

// waitForChangeCmd waits for the next phrase store change
func (m Model) waitForChangeCmd() tea.Cmd {
	ch := m.changes
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return nil
		}
		return phraseChangedMsg(c)
	}
}

// watchFileCmd returns a command that waits for data file events
func (m Model) watchFileCmd() tea.Cmd {
	w := m.watcher
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case event := <-w.Events:
			return fileChangedMsg(event)
		case err := <-w.Errors:
			return errMsg{err}
		}
	}
}

// refreshPhrases rebuilds the phrase list, keeping the selection
func (m Model) refreshPhrases() Model {
	phrases := m.ctrl.Phrases().All()
	spark := m.phraseDelegate.SparkWidth()

	items := make([]list.Item, len(phrases))
	for i, p := range phrases {
		items[i] = phraseItem{phrase: p, samples: m.ctrl.Samples(p.ID).Recent(spark)}
	}

	idx := m.phraseList.Index()
	m.phraseList.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.phraseList.Select(idx)
	}
	return m
}

// refreshHistory rebuilds the per-day history list
func (m Model) refreshHistory() Model {
	days := m.ctrl.History().ByDay()

	peak := 0
	for _, d := range days {
		peak = max(peak, d.Total())
	}

	items := make([]list.Item, len(days))
	for i, d := range days {
		items[i] = dayItem{day: d, max: peak}
	}
	m.historyList.SetItems(items)
	return m
}

// updateListSizes updates list dimensions based on terminal size
func (m Model) updateListSizes() Model {
	// Reserve space for header (2), tabs (2), column headers (2), prompt and
	// status (2), help (1)
	listHeight := m.height - 9
	if listHeight < 5 {
		listHeight = 5
	}
	listWidth := m.width - 4
	if listWidth < 20 {
		listWidth = 20
	}

	phraseListWidth := listWidth
	if m.detailPanelOpen {
		phraseListWidth = int(float64(listWidth) * 0.58)
	}

	m.phraseDelegate.SetWidth(phraseListWidth)
	m.dayDelegate.SetWidth(listWidth)

	m.phraseList.SetSize(phraseListWidth, listHeight)
	m.historyList.SetSize(listWidth, listHeight)

	return m.refreshPhrases()
}

// SelectedPhrase returns the highlighted phrase, if any
func (m Model) SelectedPhrase() (phrase.Phrase, bool) {
	i, ok := m.phraseList.SelectedItem().(phraseItem)
	if !ok {
		return phrase.Phrase{}, false
	}
	return i.phrase, true
}

// setErr records an error for the status line
func (m Model) setErr(err error) Model {
	if err != nil {
		m.logger.Error().Err(err).Msg("Operation failed")
	}
	m.err = err
	return m
}
