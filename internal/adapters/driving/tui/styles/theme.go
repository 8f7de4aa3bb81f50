// Package styles provides the colour palette and lipgloss styles of the TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme is the palette. Each colour has a light and a dark terminal variant.
type Theme struct {
	Primary    lipgloss.AdaptiveColor
	Secondary  lipgloss.AdaptiveColor
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor
	Success    lipgloss.AdaptiveColor
	// Warning marks partial runs and pending deploy confirmations.
	Warning lipgloss.AdaptiveColor
	Error   lipgloss.AdaptiveColor
	Border  lipgloss.AdaptiveColor
}

// DefaultTheme is teal and amber on slate.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#14B8A6"},
		Secondary:  lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#F59E0B"},
		Foreground: lipgloss.AdaptiveColor{Light: "#1E293B", Dark: "#E2E8F0"},
		Muted:      lipgloss.AdaptiveColor{Light: "#64748B", Dark: "#94A3B8"},
		Success:    lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"},
		Warning:    lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FACC15"},
		Error:      lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"},
		Border:     lipgloss.AdaptiveColor{Light: "#CBD5E1", Dark: "#334155"},
	}
}

// Styles are the lipgloss styles built from a Theme.
type Styles struct {
	theme *Theme

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	// Label is fixed width so detail fields line up.
	Label    lipgloss.Style
	Normal   lipgloss.Style
	Muted    lipgloss.Style
	Selected lipgloss.Style
	Error    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style

	InputField   lipgloss.Style
	FocusedInput lipgloss.Style
	Help         lipgloss.Style
	Panel        lipgloss.Style
}

// NewStyles builds styles from theme, or from DefaultTheme when nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	text := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}
	boxed := func(c lipgloss.TerminalColor) lipgloss.Style {
		return lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(c).
			Padding(0, 1)
	}

	return &Styles{
		theme:        theme,
		Title:        text(theme.Primary).Bold(true),
		Subtitle:     text(theme.Secondary).Bold(true),
		Label:        text(theme.Muted).Width(14),
		Normal:       text(theme.Foreground),
		Muted:        text(theme.Muted),
		Selected:     text(theme.Primary).Bold(true),
		Error:        text(theme.Error),
		Success:      text(theme.Success),
		Warning:      text(theme.Warning).Bold(true),
		InputField:   boxed(theme.Border),
		FocusedInput: boxed(theme.Primary),
		Help:         text(theme.Muted),
		Panel:        boxed(theme.Border),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the palette the styles were built from.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Outcome styles a finished run: Success when every entry was copied,
// Warning when some failed.
func (s *Styles) Outcome(ok bool) lipgloss.Style {
	if ok {
		return s.Success
	}
	return s.Warning
}

// ProgressGradient returns the progress bar colours. bubbles/progress
// takes plain hex strings, so the dark variants are used.
func (s *Styles) ProgressGradient() (string, string) {
	return s.theme.Primary.Dark, s.theme.Secondary.Dark
}
