// Package addproject provides the add project form for the TUI.
package addproject

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
)

// Field positions in the form.
const (
	FieldName = iota
	FieldSource
	FieldBackup
	FieldRuntime
	FieldExcludes
	fieldCount
)

const keySubmit = "ctrl+s"

// View is the add project form.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	projects driving.ProjectService

	fields     []*input.Field
	focus      int
	submitting bool
	err        error

	width  int
	height int
	ready  bool
}

// NewView creates a new add project form.
func NewView(s *styles.Styles, projects driving.ProjectService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	fields := make([]*input.Field, fieldCount)
	fields[FieldName] = input.NewField(s, "Name", "defaults to the source folder name")
	fields[FieldSource] = input.NewField(s, "Source", "/path/to/project")
	fields[FieldBackup] = input.NewField(s, "Backup root", "/path/to/backups")
	fields[FieldRuntime] = input.NewField(s, "Runtime", "optional deploy target")
	fields[FieldExcludes] = input.NewField(s, "Excludes", "comma separated, e.g. node_modules, *.log")

	return &View{
		styles:   s,
		keys:     keymap.DefaultKeyMap(),
		projects: projects,
		fields:   fields,
	}
}

// Init clears the form and focuses the first field.
func (v *View) Init() tea.Cmd {
	for _, f := range v.fields {
		f.Reset()
		f.Blur()
	}
	v.focus = FieldName
	v.err = nil
	v.submitting = false
	return v.fields[v.focus].Focus()
}

// Update handles messages for the form.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.ProjectAdded:
		v.submitting = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewProjects}
		}

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keys.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewProjects}
		}
	case k == keySubmit:
		return v, v.submit()
	case k == "enter":
		if v.focus == fieldCount-1 {
			return v, v.submit()
		}
		return v, v.moveFocus(1)
	case keymap.Matches(k, v.keys.NextField):
		return v, v.moveFocus(1)
	case keymap.Matches(k, v.keys.PrevField):
		return v, v.moveFocus(-1)
	}

	var cmd tea.Cmd
	v.fields[v.focus], cmd = v.fields[v.focus].Update(msg)
	return v, cmd
}

func (v *View) moveFocus(delta int) tea.Cmd {
	v.fields[v.focus].Blur()
	v.focus = (v.focus + delta + fieldCount) % fieldCount
	return v.fields[v.focus].Focus()
}

// Project builds a project from the current field values. An empty name
// falls back to the last element of the source path.
func (v *View) Project() domain.Project {
	p := domain.Project{
		Name:            strings.TrimSpace(v.fields[FieldName].Value()),
		SourcePath:      strings.TrimSpace(v.fields[FieldSource].Value()),
		BackupPath:      strings.TrimSpace(v.fields[FieldBackup].Value()),
		RuntimePath:     strings.TrimSpace(v.fields[FieldRuntime].Value()),
		ExcludePatterns: splitPatterns(v.fields[FieldExcludes].Value()),
	}
	if p.Name == "" && p.SourcePath != "" {
		p.Name = filepath.Base(filepath.Clean(p.SourcePath))
	}
	return p
}

func splitPatterns(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (v *View) submit() tea.Cmd {
	if v.submitting {
		return nil
	}
	project := v.Project()
	if project.SourcePath == "" || project.BackupPath == "" {
		v.err = fmt.Errorf("source and backup root are required: %w", domain.ErrInvalidInput)
		return nil
	}
	if v.projects == nil {
		v.err = fmt.Errorf("project service not available")
		return nil
	}

	v.err = nil
	v.submitting = true
	projects := v.projects
	return func() tea.Msg {
		added, err := projects.Add(context.Background(), project)
		return messages.ProjectAdded{Project: added, Err: err}
	}
}

// View renders the form.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Add project"))
	b.WriteString("\n\n")

	for _, f := range v.fields {
		b.WriteString(f.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if v.submitting {
		b.WriteString(v.styles.Muted.Render("Saving..."))
		b.WriteString("\n\n")
	}
	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}

	b.WriteString(v.styles.Help.Render("[tab] next  [shift+tab] previous  [enter] next/save  [ctrl+s] save  [esc] cancel"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	for _, f := range v.fields {
		f.SetWidth(width - 4)
	}
}

// Focused returns the index of the focused field.
func (v *View) Focused() int {
	return v.focus
}

// Field returns the field at index i.
func (v *View) Field(i int) *input.Field {
	return v.fields[i]
}

// Err returns the last validation or save error.
func (v *View) Err() error {
	return v.err
}
