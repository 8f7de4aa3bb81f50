// Package status renders the one-line footer of the TUI.
package status

import (
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// State selects what the left side of the bar shows.
type State string

const (
	StateReady   State = "ready"
	StateRunning State = "running"
	StateError   State = "error"
)

// Bar shows a summary on the left and key hints on the right.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	width   int

	projects   int
	lastBackup time.Time
	now        func() time.Time
}

// NewBar creates a status bar. Nil arguments fall back to the defaults.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
		now:    time.Now,
	}
}

// View renders the bar padded to its width.
func (s *Bar) View() string {
	left, right := s.summary(), s.hints()
	gap := max(s.width-lipgloss.Width(left)-lipgloss.Width(right), 1)
	return left + strings.Repeat(" ", gap) + right
}

func (s *Bar) summary() string {
	switch s.state {
	case StateRunning:
		return s.styles.Warning.Render(s.message)
	case StateError:
		text := "Error"
		if s.message != "" {
			text += ": " + s.message
		}
		return s.styles.Error.Render(text)
	case StateReady:
	}

	if s.projects == 0 {
		return s.styles.Muted.Render("Ready")
	}
	text := english.Plural(s.projects, "project", "")
	if !s.lastBackup.IsZero() {
		text += ", last backup " + humanize.RelTime(s.lastBackup, s.now(), "ago", "from now")
	}
	return s.styles.Muted.Render(text)
}

func (s *Bar) hints() string {
	bindings := s.keymap.ShortHelp()
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = keymap.HelpLine(b)
	}
	return s.styles.Muted.Render(strings.Join(parts, " | "))
}

// SetProjects records the project count and the most recent backup among them.
func (s *Bar) SetProjects(projects []domain.Project) {
	s.projects = len(projects)
	s.lastBackup = time.Time{}
	for _, p := range projects {
		if p.LastBackupAt.After(s.lastBackup) {
			s.lastBackup = p.LastBackupAt
		}
	}
}

func (s *Bar) SetState(state State) { s.state = state }

func (s *Bar) State() State { return s.state }

// SetMessage sets the text shown while running or on error.
func (s *Bar) SetMessage(message string) { s.message = message }

func (s *Bar) Message() string { return s.message }

func (s *Bar) SetWidth(width int) { s.width = width }

// Clear returns to the ready summary.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
}
