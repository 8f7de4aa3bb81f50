// Package projectdetail provides the project detail view for the TUI.
// It runs backups and deploys and shows their progress.
package projectdetail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
)

// ErrRunInProgress is reported when a run is requested while another is active.
var ErrRunInProgress = errors.New("a backup or deploy is already running")

// progressBuffer bounds queued progress updates. Updates beyond it are dropped.
const progressBuffer = 32

type pendingAction int

const (
	pendingNone pendingAction = iota
	pendingDeploy
	pendingDelete
)

// projectRefreshed carries the project re-read after a run.
type projectRefreshed struct {
	project *domain.Project
}

// View shows one project and drives its backups and deploys.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	projects driving.ProjectService
	backups  driving.BackupService

	project *domain.Project
	pending pendingAction
	bar     progress.Model

	running  bool
	runKind  messages.RunKind
	runCh    chan tea.Msg
	current  domain.Progress
	result   *domain.BackupResult
	lastKind messages.RunKind
	runErr   error

	entries     []domain.BackupEntry
	showBackups bool

	notice string
	err    error
	width  int
	height int
	ready  bool
}

// NewView creates a new project detail view.
func NewView(s *styles.Styles, projects driving.ProjectService, backups driving.BackupService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	from, to := s.ProgressGradient()
	return &View{
		styles:   s,
		keys:     keymap.DefaultKeyMap(),
		projects: projects,
		backups:  backups,
		bar:      progress.New(progress.WithGradient(from, to), progress.WithWidth(40)),
	}
}

// SetProject switches the view to a project. State of a finished run is
// cleared; an active run keeps reporting.
func (v *View) SetProject(p domain.Project) {
	if v.running && v.project != nil && v.project.ID != p.ID {
		v.notice = fmt.Sprintf("%s of %s is still running", v.runKind, v.project.Name)
		return
	}
	v.project = &p
	v.pending = pendingNone
	v.err = nil
	v.notice = ""
	if !v.running {
		v.result = nil
		v.runErr = nil
	}
	v.entries = nil
	v.showBackups = false
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update handles messages for the project detail view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.RunProgress:
		v.current = msg.Progress
		return v, waitForRun(v.runCh)

	case messages.RunFinished:
		return v.finishRun(msg)

	case projectRefreshed:
		if msg.project != nil && v.project != nil && msg.project.ID == v.project.ID {
			v.project = msg.project
		}
		return v, nil

	case messages.BackupsLoaded:
		if v.project == nil || msg.ProjectID != v.project.ID {
			return v, nil
		}
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.entries = msg.Entries
		v.showBackups = true
		return v, nil

	case messages.ProjectRemoved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.project = nil
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewProjects}
		}
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	if v.pending != pendingNone {
		action := v.pending
		v.pending = pendingNone
		if !keymap.Matches(k, v.keys.Confirm) {
			v.notice = "Cancelled"
			return v, nil
		}
		switch action {
		case pendingDeploy:
			return v, v.startRun(messages.RunDeploy)
		case pendingDelete:
			return v, v.remove()
		}
		return v, nil
	}

	if v.project == nil {
		if keymap.Matches(k, v.keys.Back) {
			return v, backToProjects
		}
		return v, nil
	}

	v.notice = ""
	switch {
	case keymap.Matches(k, v.keys.Backup):
		return v, v.startRun(messages.RunBackup)

	case keymap.Matches(k, v.keys.Deploy):
		switch {
		case v.running:
			v.err = ErrRunInProgress
		case !v.project.HasRuntime():
			v.err = domain.ErrNoRuntimePath
		default:
			v.err = nil
			v.pending = pendingDeploy
		}
		return v, nil

	case keymap.Matches(k, v.keys.Backups):
		return v, v.loadBackups()

	case keymap.Matches(k, v.keys.Delete):
		if v.running {
			v.err = ErrRunInProgress
			return v, nil
		}
		v.err = nil
		v.pending = pendingDelete
		return v, nil

	case keymap.Matches(k, v.keys.Back):
		return v, backToProjects
	}

	return v, nil
}

func backToProjects() tea.Msg {
	return messages.ViewChanged{View: messages.ViewProjects}
}

// startRun launches a backup or deploy in the background. Progress is
// relayed through a channel that the returned command drains one message
// at a time.
func (v *View) startRun(kind messages.RunKind) tea.Cmd {
	if v.running {
		v.err = ErrRunInProgress
		return nil
	}
	if v.backups == nil {
		v.err = fmt.Errorf("backup service not available")
		return nil
	}

	id := v.project.ID
	ch := make(chan tea.Msg, progressBuffer)
	v.running = true
	v.runKind = kind
	v.runCh = ch
	v.current = domain.Progress{}
	v.result = nil
	v.runErr = nil
	v.err = nil

	backups := v.backups
	go func() {
		defer close(ch)
		onProgress := func(p domain.Progress) {
			select {
			case ch <- messages.RunProgress{Kind: kind, Progress: p}:
			default:
			}
		}

		var (
			result *domain.BackupResult
			err    error
		)
		ctx := context.Background()
		if kind == messages.RunDeploy {
			result, err = backups.Deploy(ctx, id, true, onProgress)
		} else {
			result, err = backups.Backup(ctx, id, onProgress)
		}
		ch <- messages.RunFinished{Kind: kind, Result: result, Err: err}
	}()

	return waitForRun(ch)
}

// waitForRun reads the next message of a run. A closed or nil channel
// yields no message.
func waitForRun(ch chan tea.Msg) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

func (v *View) finishRun(msg messages.RunFinished) (*View, tea.Cmd) {
	v.running = false
	v.runCh = nil
	v.lastKind = msg.Kind
	v.result = msg.Result
	v.runErr = msg.Err

	if msg.Err != nil || v.project == nil || v.projects == nil {
		return v, nil
	}

	id := v.project.ID
	projects := v.projects
	refresh := func() tea.Msg {
		p, err := projects.Get(context.Background(), id)
		if err != nil {
			return nil
		}
		return projectRefreshed{project: p}
	}
	if msg.Kind == messages.RunBackup && v.showBackups {
		return v, tea.Batch(refresh, v.loadBackups())
	}
	return v, refresh
}

func (v *View) loadBackups() tea.Cmd {
	id := v.project.ID
	backups := v.backups
	return func() tea.Msg {
		if backups == nil {
			return messages.BackupsLoaded{ProjectID: id, Err: fmt.Errorf("backup service not available")}
		}
		entries, err := backups.ListBackups(context.Background(), id)
		return messages.BackupsLoaded{ProjectID: id, Entries: entries, Err: err}
	}
}

func (v *View) remove() tea.Cmd {
	id := v.project.ID
	projects := v.projects
	return func() tea.Msg {
		if projects == nil {
			return messages.ProjectRemoved{ID: id, Err: fmt.Errorf("project service not available")}
		}
		return messages.ProjectRemoved{ID: id, Err: projects.Remove(context.Background(), id)}
	}
}

// View renders the project detail view.
func (v *View) View() string {
	if v.project == nil {
		return v.styles.Muted.Render("No project selected")
	}

	p := v.project
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Project: " + p.Name))
	b.WriteString("\n\n")

	runtime := p.RuntimePath
	if runtime == "" {
		runtime = "not set"
	}
	excludes := "none"
	if len(p.ExcludePatterns) > 0 {
		excludes = strings.Join(p.ExcludePatterns, ", ")
	}
	lastBackup := "never"
	if !p.LastBackupAt.IsZero() {
		lastBackup = humanize.Time(p.LastBackupAt)
	}

	v.field(&b, "ID", p.ID)
	v.field(&b, "Source", p.SourcePath)
	v.field(&b, "Backups", p.BackupPath)
	v.field(&b, "Runtime", runtime)
	v.field(&b, "Excludes", excludes)
	v.field(&b, "Last backup", lastBackup)
	b.WriteString("\n")

	switch v.pending {
	case pendingDeploy:
		b.WriteString(v.styles.Warning.Render(
			fmt.Sprintf("Deploy to %s? Existing files there are overwritten. [y/N]", p.RuntimePath)))
		b.WriteString("\n\n")
	case pendingDelete:
		b.WriteString(v.styles.Warning.Render(
			fmt.Sprintf("Remove project %s? Backups on disk are kept. [y/N]", p.Name)))
		b.WriteString("\n\n")
	}

	if v.running {
		b.WriteString(v.styles.Subtitle.Render(runLabel(v.runKind) + "..."))
		b.WriteString("\n")
		b.WriteString(v.bar.ViewAs(v.current.Ratio()))
		b.WriteString("\n")
		if v.current.Total > 0 {
			b.WriteString(v.styles.Muted.Render(
				fmt.Sprintf("%d/%d %s", v.current.Processed, v.current.Total, v.current.Path)))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if v.runErr != nil {
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("%s failed: %v", runLabel(v.lastKind), v.runErr)))
		b.WriteString("\n\n")
	} else if v.result != nil {
		v.renderResult(&b)
	}

	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	}
	if v.notice != "" {
		b.WriteString(v.styles.Muted.Render(v.notice))
		b.WriteString("\n\n")
	}

	if v.showBackups {
		v.renderBackups(&b)
	}

	b.WriteString(v.styles.Help.Render(keymap.HelpLine(v.keys.DetailHelp()...)))
	return b.String()
}

func (v *View) field(b *strings.Builder, label, value string) {
	b.WriteString(v.styles.Label.Render(label))
	b.WriteString(v.styles.Normal.Render(value))
	b.WriteString("\n")
}

func (v *View) renderResult(b *strings.Builder) {
	r := v.result
	b.WriteString(v.styles.Outcome(r.OK()).Render(fmt.Sprintf("%s finished: %s", runLabel(v.lastKind), r.Destination)))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%s files, %s dirs, %s, %d skipped",
		humanize.Comma(int64(r.FilesCopied)), humanize.Comma(int64(r.DirsCreated)),
		humanize.Bytes(uint64(max(r.BytesCopied, 0))), r.Skipped)))
	b.WriteString("\n")
	for _, f := range r.Failures {
		b.WriteString(v.styles.Warning.Render("  " + f.Error()))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func (v *View) renderBackups(b *strings.Builder) {
	b.WriteString(v.styles.Subtitle.Render("Backups"))
	b.WriteString("\n")
	if len(v.entries) == 0 {
		b.WriteString(v.styles.Muted.Render("  none yet"))
		b.WriteString("\n")
	}
	for _, e := range v.entries {
		b.WriteString(v.styles.Normal.Render("  " + e.Name))
		b.WriteString(v.styles.Muted.Render("  " + humanize.Time(e.CreatedAt)))
		b.WriteString("\n")
	}
	b.WriteString("\n")
}

func runLabel(kind messages.RunKind) string {
	if kind == messages.RunDeploy {
		return "Deploy"
	}
	return "Backup"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.bar.Width = min(max(width-8, 10), 60)
}

// Project returns the displayed project.
func (v *View) Project() *domain.Project {
	return v.project
}

// Running reports whether a run is in flight.
func (v *View) Running() bool {
	return v.running
}

// RunSummary describes the active run, e.g. "Backup of webapp 40%".
func (v *View) RunSummary() string {
	if !v.running {
		return ""
	}
	name := ""
	if v.project != nil {
		name = " of " + v.project.Name
	}
	return fmt.Sprintf("%s%s %.0f%%", runLabel(v.runKind), name, v.current.Percent())
}

// Result returns the outcome of the last finished run.
func (v *View) Result() *domain.BackupResult {
	return v.result
}

// RunErr returns the error of the last finished run.
func (v *View) RunErr() error {
	return v.runErr
}

// Err returns the last non-run error.
func (v *View) Err() error {
	return v.err
}
