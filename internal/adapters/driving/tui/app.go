package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/views/addproject"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/views/projectdetail"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/views/projects"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/views/settings"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keys   *keymap.KeyMap
	help   help.Model
	status *status.Bar

	menuView       *menu.View
	projectsView   *projects.View
	detailView     *projectdetail.View
	addProjectView *addproject.View
	settingsView   *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	keys := keymap.DefaultKeyMap()
	h := help.New()
	h.ShowAll = true

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keys:           keys,
		help:           h,
		status:         status.NewBar(s, keys),
		menuView:       menu.NewView(s),
		projectsView:   projects.NewView(s, ports.Projects),
		detailView:     projectdetail.NewView(s, ports.Projects, ports.Backups),
		addProjectView: addproject.NewView(s, ports.Projects),
		settingsView:   settings.NewView(s, ports.Settings),
		currentView:    messages.ViewMenu,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tea.SetWindowTitle("codekeeper"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	model, cmd := a.route(msg)
	a.refreshStatus()
	return model, cmd
}

//nolint:gocyclo // central message router
func (a *App) route(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		return a, a.switchTo(msg.View)

	case messages.ProjectSelected:
		a.detailView.SetProject(msg.Project)
		a.currentView = messages.ViewProjectDetail
		return a, a.detailView.Init()

	case messages.ProjectsLoaded:
		a.projectsView, cmd = a.projectsView.Update(msg)
		return a, cmd

	case messages.ProjectAdded:
		var reload tea.Cmd
		a.addProjectView, cmd = a.addProjectView.Update(msg)
		if msg.Err == nil {
			a.projectsView, reload = a.projectsView.Update(msg)
		}
		return a, tea.Batch(cmd, reload)

	case messages.ProjectRemoved:
		var reload tea.Cmd
		a.detailView, cmd = a.detailView.Update(msg)
		if msg.Err == nil {
			a.projectsView, reload = a.projectsView.Update(msg)
		}
		return a, tea.Batch(cmd, reload)

	case messages.RunProgress, messages.RunFinished, messages.BackupsLoaded:
		// Runs keep reporting while another view is shown.
		a.detailView, cmd = a.detailView.Update(msg)
		return a, cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewProjects:
		if msg.Type == tea.KeyEsc {
			a.currentView = messages.ViewMenu
			return a, nil
		}
		if msg.String() == "q" {
			return a, tea.Quit
		}
		a.projectsView, cmd = a.projectsView.Update(msg)
	case messages.ViewProjectDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewAddProject:
		a.addProjectView, cmd = a.addProjectView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
		switch {
		case msg.Type == tea.KeyEsc:
			a.currentView = messages.ViewMenu
		case msg.String() == "q":
			return a, tea.Quit
		}
	}
	return a, cmd
}

// switchTo activates a view and returns its initial command.
func (a *App) switchTo(view messages.ViewType) tea.Cmd {
	a.currentView = view
	switch view {
	case messages.ViewProjects:
		return a.projectsView.Init()
	case messages.ViewAddProject:
		return a.addProjectView.Init()
	case messages.ViewSettings:
		return a.settingsView.Init()
	case messages.ViewMenu, messages.ViewHelp, messages.ViewProjectDetail:
	}
	return nil
}

// forward passes a message to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewProjects:
		a.projectsView, cmd = a.projectsView.Update(msg)
	case messages.ViewProjectDetail:
		a.detailView, cmd = a.detailView.Update(msg)
	case messages.ViewAddProject:
		a.addProjectView, cmd = a.addProjectView.Update(msg)
	case messages.ViewSettings:
		a.settingsView, cmd = a.settingsView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// refreshStatus mirrors run and error state into the status bar.
func (a *App) refreshStatus() {
	a.status.SetProjects(a.projectsView.Projects())
	switch {
	case a.detailView.Running():
		a.status.SetState(status.StateRunning)
		a.status.SetMessage(a.detailView.RunSummary())
	case a.err != nil:
		a.status.SetState(status.StateError)
		a.status.SetMessage(a.err.Error())
	default:
		a.status.Clear()
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var body string
	switch a.currentView {
	case messages.ViewProjects:
		body = a.projectsView.View()
	case messages.ViewProjectDetail:
		body = a.detailView.View()
	case messages.ViewAddProject:
		body = a.addProjectView.View()
	case messages.ViewSettings:
		body = a.settingsView.View()
	case messages.ViewHelp:
		body = a.viewHelp()
	default:
		body = a.menuView.View()
	}
	return body + "\n\n" + a.status.View()
}

func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	b.WriteString(a.help.FullHelpView(a.keys.FullHelp()))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Muted.Render("Deploys copy into the runtime directory and never delete files there."))
	b.WriteString("\n\n")
	b.WriteString(a.styles.Help.Render("[esc] back to menu"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on the app and every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.status.SetWidth(width)
	a.menuView.SetDimensions(width, height)
	a.projectsView.SetDimensions(width, height)
	a.detailView.SetDimensions(width, height)
	a.addProjectView.SetDimensions(width, height)
	a.settingsView.SetDimensions(width, height)
}
