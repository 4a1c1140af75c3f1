package phrase

import (
	"math/rand/v2"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	catppuccin "github.com/catppuccin/go"
)

// PlaceholderText replaces the text of a stored phrase that has none
const PlaceholderText = "empty phrase"

// Phrase is a named counter with a one-key shortcut
type Phrase struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Count     int       `json:"count"`
	Hotkey    string    `json:"hotkey"` // Single lowercase character
	Color     string    `json:"color"`  // "#rrggbb"
	CreatedAt time.Time `json:"createdAt"`
}

// Snapshot is a detached copy of a phrase's text and count
type Snapshot struct {
	Text  string `json:"text"`
	Count int    `json:"count"`
}

// Snapshot copies the fields archived by the history log
func (p Phrase) Snapshot() Snapshot {
	return Snapshot{Text: p.Text, Count: p.Count}
}

// NormalizeHotkey lowercases the first character of s.
// It reports false when s has no usable character.
func NormalizeHotkey(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return "", false
	}
	return string(unicode.ToLower(r)), true
}

// normalize fills in defaults for a phrase loaded from storage
func (p Phrase) normalize() Phrase {
	if strings.TrimSpace(p.Text) == "" {
		p.Text = PlaceholderText
	}
	if hk, ok := NormalizeHotkey(p.Hotkey); ok {
		p.Hotkey = hk
	} else {
		p.Hotkey, _ = NormalizeHotkey(p.Text)
	}
	return p
}

// Palette picks a display color for a new phrase
type Palette func() string

// ThemePalette returns a palette drawing randomly from the accent colors of
// the named catppuccin flavor. Unknown names fall back to mocha.
func ThemePalette(theme string) Palette {
	flavor := Flavor(theme)
	accents := []catppuccin.Color{
		flavor.Rosewater(),
		flavor.Flamingo(),
		flavor.Pink(),
		flavor.Mauve(),
		flavor.Red(),
		flavor.Maroon(),
		flavor.Peach(),
		flavor.Yellow(),
		flavor.Green(),
		flavor.Teal(),
		flavor.Sky(),
		flavor.Sapphire(),
		flavor.Blue(),
		flavor.Lavender(),
	}
	return func() string {
		return accents[rand.IntN(len(accents))].Hex
	}
}

// Flavor resolves a catppuccin flavor by name
func Flavor(name string) catppuccin.Flavor {
	switch strings.ToLower(name) {
	case "latte":
		return catppuccin.Latte
	case "frappe":
		return catppuccin.Frappe
	case "macchiato":
		return catppuccin.Macchiato
	default:
		return catppuccin.Mocha
	}
}
