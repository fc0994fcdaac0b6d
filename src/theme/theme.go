// Package theme holds the terminal colors of the interactive chat.
package theme

import "github.com/charmbracelet/lipgloss"

// Colors is a terminal color palette
type Colors struct {
	Primary   lipgloss.Color
	Accent    lipgloss.Color
	Text      lipgloss.Color
	TextMuted lipgloss.Color
	Error     lipgloss.Color
}

// Default is the palette used unless SetTheme replaces it
var Default = Colors{
	Primary:   lipgloss.Color("#e07a1f"),
	Accent:    lipgloss.Color("#3fa34d"),
	Text:      lipgloss.Color("#ffffff"),
	TextMuted: lipgloss.Color("#808080"),
	Error:     lipgloss.Color("#d64545"),
}

// CurrentTheme is the active palette
var CurrentTheme = Default

// SetTheme sets the current theme
func SetTheme(colors Colors) {
	CurrentTheme = colors
}

// Styles are the rendered styles of the chat transcript
type Styles struct {
	UserLabel lipgloss.Style
	BotLabel  lipgloss.Style
	Reply     lipgloss.Style
	Muted     lipgloss.Style
	Error     lipgloss.Style
}

// NewStyles builds styles from the current theme
func NewStyles() Styles {
	c := CurrentTheme
	return Styles{
		UserLabel: lipgloss.NewStyle().Bold(true).Foreground(c.Accent),
		BotLabel:  lipgloss.NewStyle().Bold(true).Foreground(c.Primary),
		Reply:     lipgloss.NewStyle().Foreground(c.Text),
		Muted:     lipgloss.NewStyle().Foreground(c.TextMuted).Italic(true),
		Error:     lipgloss.NewStyle().Foreground(c.Error),
	}
}
