package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"phrasecounter/internal/hotkey"
	"phrasecounter/internal/phrase"
	"phrasecounter/internal/storage"
)

// Update handles incoming messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m = m.updateListSizes()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tickMsg:
		if !m.ctrl.Tick(msg.handle) {
			// Stale handle: the session was stopped or restarted
			if m.tick == msg.handle {
				m.tick = 0
			}
			return m, nil
		}
		m = m.refreshPhrases()
		return m, m.tickCmd(msg.handle)

	case phraseChangedMsg:
		m = m.refreshPhrases()
		return m, m.waitForChangeCmd()

	case fileChangedMsg:
		if msg.Collection == storage.CollectionPhrases {
			m = m.setErr(m.ctrl.Phrases().Reload(m.ctx))
		}
		return m, m.watchFileCmd()

	case errMsg:
		m = m.setErr(msg.error)
		return m, m.watchFileCmd()
	}
	return m, nil
}

// handleKey routes a key press to the open prompt, the summary modal or the
// main key map
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.Close()
		return m, tea.Quit
	}

	if m.summary != nil {
		switch msg.String() {
		case "enter", "esc", " ":
			m.summary = nil
		}
		return m, nil
	}

	if m.inputMode != inputNone {
		return m.handleInputKey(msg)
	}

	switch msg.String() {
	case "esc":
		m.Close()
		return m, tea.Quit

	case "tab":
		if m.viewMode == ViewPhrases {
			m.viewMode = ViewHistory
			m = m.refreshHistory()
		} else {
			m.viewMode = ViewPhrases
		}
		return m, nil

	case "ctrl+n":
		return m.openPrompt(inputNewPhrase, "new phrase", 120)

	case "ctrl+k":
		if _, ok := m.SelectedPhrase(); !ok {
			return m, nil
		}
		return m.openPrompt(inputHotkey, "hotkey", 1)

	case "ctrl+d":
		if p, ok := m.SelectedPhrase(); ok {
			m = m.setErr(m.ctrl.Remove(m.ctx, p.ID))
			m = m.refreshPhrases()
		}
		return m, nil

	case "ctrl+t":
		h, ok := m.ctrl.Start()
		if !ok {
			return m, nil
		}
		m.tick = h
		return m, m.tickCmd(h)

	case "ctrl+x":
		m.ctrl.Stop()
		return m, nil

	case "ctrl+r":
		m = m.setErr(m.ctrl.Reset(m.ctx))
		m = m.refreshPhrases()
		return m, nil

	case "ctrl+w":
		summary, err := m.ctrl.SaveHistory(m.ctx)
		m = m.setErr(err)
		if err == nil {
			m.summary = &summary
		}
		m = m.refreshPhrases()
		m = m.refreshHistory()
		return m, nil

	case "enter":
		if m.viewMode == ViewPhrases {
			m.detailPanelOpen = !m.detailPanelOpen
			m = m.updateListSizes()
		}
		return m, nil

	case "right", "left":
		if m.viewMode != ViewPhrases {
			return m, nil
		}
		if p, ok := m.SelectedPhrase(); ok {
			var err error
			if msg.String() == "right" {
				_, err = m.ctrl.Increment(m.ctx, p.ID)
			} else {
				_, err = m.ctrl.Decrement(m.ctx, p.ID)
			}
			m = m.setErr(err)
			m = m.refreshPhrases()
		}
		return m, nil

	case "up", "down", "pgup", "pgdown", "home", "end":
		var cmd tea.Cmd
		if m.viewMode == ViewPhrases {
			m.phraseList, cmd = m.phraseList.Update(msg)
		} else {
			m.historyList, cmd = m.historyList.Update(msg)
		}
		return m, cmd
	}

	// Everything else that types a character is a hotkey, alt-modified included
	if m.viewMode == ViewPhrases && msg.Type == tea.KeyRunes {
		for _, r := range msg.Runes {
			if _, err := m.ctrl.Press(m.ctx, hotkey.KeyPress{Rune: r}); err != nil {
				m = m.setErr(err)
				break
			}
		}
		m = m.refreshPhrases()
	}
	return m, nil
}

// openPrompt focuses the text input for the given mode
func (m Model) openPrompt(mode inputMode, placeholder string, limit int) (tea.Model, tea.Cmd) {
	m.inputMode = mode
	m.input.Reset()
	m.input.Placeholder = placeholder
	m.input.CharLimit = limit
	return m, m.input.Focus()
}

// handleInputKey edits the open prompt. Enter submits and esc cancels.
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m = m.closePrompt()
		return m, nil

	case "enter":
		value := m.input.Value()
		mode := m.inputMode
		m = m.closePrompt()

		switch mode {
		case inputNewPhrase:
			_, err := m.ctrl.Create(m.ctx, value)
			if errors.Is(err, phrase.ErrEmptyText) {
				err = nil
			}
			m = m.setErr(err)
		case inputHotkey:
			if p, ok := m.SelectedPhrase(); ok {
				_, err := m.ctrl.SetHotkey(m.ctx, p.ID, value)
				m = m.setErr(err)
			}
		}
		m = m.refreshPhrases()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) closePrompt() Model {
	m.inputMode = inputNone
	m.input.Blur()
	m.input.Reset()
	return m
}
