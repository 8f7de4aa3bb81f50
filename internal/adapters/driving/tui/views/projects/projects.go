// Package projects provides the project list view for the TUI.
package projects

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
)

// View lists the tracked projects.
type View struct {
	styles   *styles.Styles
	projects driving.ProjectService

	items    []domain.Project
	selected int
	width    int
	height   int
	ready    bool
	err      error
	loading  bool
}

// NewView creates a new projects view.
func NewView(s *styles.Styles, projects driving.ProjectService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:   s,
		projects: projects,
		items:    []domain.Project{},
	}
}

// Init loads the project list.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		if v.projects == nil {
			return messages.ProjectsLoaded{Err: fmt.Errorf("project service not available")}
		}
		list, err := v.projects.List(context.Background())
		return messages.ProjectsLoaded{Projects: list, Err: err}
	}
}

// Update handles messages for the projects view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ProjectsLoaded:
		v.loading = false
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.items = msg.Projects
		if v.selected >= len(v.items) {
			v.selected = max(len(v.items)-1, 0)
		}
		return v, nil

	case messages.ProjectAdded, messages.ProjectRemoved:
		v.loading = true
		return v, v.load()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.items)-1 {
			v.selected++
		}
	case "enter":
		if v.selected < len(v.items) {
			project := v.items[v.selected]
			return v, func() tea.Msg {
				return messages.ProjectSelected{Project: project}
			}
		}
	case "a":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewAddProject}
		}
	case "r":
		v.loading = true
		return v, v.load()
	}
	return v, nil
}

// View renders the project list.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Projects"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading projects..."))
		b.WriteString("\n")
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case len(v.items) == 0:
		b.WriteString(v.styles.Muted.Render("No projects yet. Press [a] to add one."))
		b.WriteString("\n")
	default:
		for i := range v.items {
			b.WriteString(v.renderProject(i, &v.items[i]))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Help.Render("[a] add  [enter] open  [r] reload  [esc] back  [q] quit"))
	return b.String()
}

func (v *View) renderProject(index int, p *domain.Project) string {
	last := "never backed up"
	if !p.LastBackupAt.IsZero() {
		last = "backed up " + humanize.Time(p.LastBackupAt)
	}

	name := p.Name
	maxName := max(v.width-40, 12)
	if len(name) > maxName {
		name = name[:maxName-3] + "..."
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("> %-24s %s", name, last))
	}
	return v.styles.Normal.Render(fmt.Sprintf("  %-24s ", name)) + v.styles.Muted.Render(last)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Projects returns the loaded projects.
func (v *View) Projects() []domain.Project {
	return v.items
}

// SelectedIndex returns the cursor position.
func (v *View) SelectedIndex() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
