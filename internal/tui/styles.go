package tui

import (
	catppuccin "github.com/catppuccin/go"
	"github.com/charmbracelet/lipgloss"

	"phrasecounter/internal/phrase"
)

// Styles holds every style of the UI, derived from one catppuccin flavor
type Styles struct {
	primary lipgloss.Color
	success lipgloss.Color
	warning lipgloss.Color
	danger  lipgloss.Color
	muted   lipgloss.Color
	fg      lipgloss.Color
	surface lipgloss.Color

	// Header
	Title    lipgloss.Style
	Status   lipgloss.Style
	Running  lipgloss.Style
	Stopped  lipgloss.Style
	ErrorBar lipgloss.Style

	// Tabs
	ActiveTab   lipgloss.Style
	InactiveTab lipgloss.Style
	TabGap      lipgloss.Style

	// List items
	Selected    lipgloss.Style
	Normal      lipgloss.Style
	Muted       lipgloss.Style
	HotkeyBadge lipgloss.Style
	Count       lipgloss.Style
	Spark       lipgloss.Style
	Bar         lipgloss.Style

	// Panels
	DetailHeader lipgloss.Style
	DetailBorder lipgloss.Style
	Label        lipgloss.Style
	Prompt       lipgloss.Style
	Modal        lipgloss.Style

	ColumnHeader lipgloss.Style
	Help         lipgloss.Style
}

// NewStyles builds the styles for the named flavor ("mocha" if unknown)
func NewStyles(theme string) Styles {
	return stylesFor(phrase.Flavor(theme))
}

func stylesFor(f catppuccin.Flavor) Styles {
	s := Styles{
		primary: lipgloss.Color(f.Mauve().Hex),
		success: lipgloss.Color(f.Green().Hex),
		warning: lipgloss.Color(f.Peach().Hex),
		danger:  lipgloss.Color(f.Red().Hex),
		muted:   lipgloss.Color(f.Overlay1().Hex),
		fg:      lipgloss.Color(f.Text().Hex),
		surface: lipgloss.Color(f.Surface0().Hex),
	}

	s.Title = lipgloss.NewStyle().Bold(true).Foreground(s.primary)
	s.Status = lipgloss.NewStyle().Foreground(s.muted)
	s.Running = lipgloss.NewStyle().Foreground(s.success).Bold(true)
	s.Stopped = lipgloss.NewStyle().Foreground(s.warning)
	s.ErrorBar = lipgloss.NewStyle().Foreground(s.danger).Bold(true)

	s.ActiveTab = lipgloss.NewStyle().
		Bold(true).
		Background(s.primary).
		Foreground(lipgloss.Color(f.Base().Hex)).
		Padding(0, 2)
	s.InactiveTab = lipgloss.NewStyle().Foreground(s.muted).Padding(0, 2)
	s.TabGap = lipgloss.NewStyle().Foreground(s.muted)

	s.Selected = lipgloss.NewStyle().Background(s.surface).Foreground(s.fg).Bold(true)
	s.Normal = lipgloss.NewStyle().Foreground(s.fg)
	s.Muted = lipgloss.NewStyle().Foreground(s.muted)
	s.HotkeyBadge = lipgloss.NewStyle().
		Background(s.primary).
		Foreground(lipgloss.Color(f.Base().Hex)).
		Bold(true).
		Padding(0, 1)
	s.Count = lipgloss.NewStyle().Foreground(s.fg).Bold(true)
	s.Spark = lipgloss.NewStyle().Foreground(lipgloss.Color(f.Sapphire().Hex))
	s.Bar = lipgloss.NewStyle().Foreground(lipgloss.Color(f.Teal().Hex))

	s.DetailHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(s.primary).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(s.muted)
	s.DetailBorder = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(s.muted).
		PaddingLeft(1)
	s.Label = lipgloss.NewStyle().Foreground(s.primary).Bold(true)
	s.Prompt = lipgloss.NewStyle().Foreground(s.warning).Bold(true)
	s.Modal = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(s.primary).
		Padding(1, 2)

	s.ColumnHeader = lipgloss.NewStyle().
		Foreground(s.muted).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(s.surface)
	s.Help = lipgloss.NewStyle().Foreground(s.muted)

	return s
}

// Swatch renders a colored block for a phrase color
func (s Styles) Swatch(hex string) string {
	if hex == "" {
		return s.Muted.Render("■")
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(hex)).Render("■")
}
