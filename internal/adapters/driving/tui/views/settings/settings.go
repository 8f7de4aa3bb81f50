// Package settings provides the settings view for the TUI.
package settings

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cast"

	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
)

// Row identifies an editable setting.
type Row int

// Editable rows in display order.
const (
	RowExcludes Row = iota
	RowMinDepth
	RowSchedule
	RowSchedulerEnabled
	rowCount
)

// View shows and edits application settings.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	service  driving.SettingsService
	settings *domain.AppSettings

	selected Row
	editing  bool
	field    *input.Field
	err      error
	saved    bool

	width  int
	height int
	ready  bool
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, service driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:  s,
		keys:    keymap.DefaultKeyMap(),
		service: service,
		field:   input.NewField(s, "", ""),
	}
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	v.editing = false
	v.saved = false
	return v.load()
}

func (v *View) load() tea.Cmd {
	service := v.service
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsLoaded{Err: fmt.Errorf("settings service not available")}
		}
		s, err := service.Get()
		return messages.SettingsLoaded{Settings: s, Err: err}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.settings = msg.Settings
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.saved = true
		return v, v.load()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKey(msg)
		}
		return v.handleKeyMsg(msg)
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()
	switch {
	case keymap.Matches(k, v.keys.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(k, v.keys.Down):
		if v.selected < rowCount-1 {
			v.selected++
		}
	case keymap.Matches(k, v.keys.Select):
		if v.settings == nil {
			return v, nil
		}
		if v.selected == RowSchedulerEnabled {
			sched := v.settings.Scheduler
			return v, v.save(func(s driving.SettingsService) error {
				return s.SetSchedule(sched.BackupSchedule, !sched.Enabled)
			})
		}
		return v, v.startEdit()
	case keymap.Matches(k, v.keys.Back):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}
	return v, nil
}

func (v *View) startEdit() tea.Cmd {
	v.editing = true
	v.saved = false
	v.err = nil
	v.field.Reset()
	switch v.selected {
	case RowExcludes:
		v.field.SetValue(strings.Join(v.settings.Backup.DefaultExcludes, ", "))
	case RowMinDepth:
		v.field.SetValue(cast.ToString(v.settings.Backup.MinDepth))
	case RowSchedule:
		v.field.SetValue(v.settings.Scheduler.BackupSchedule)
	}
	return v.field.Focus()
}

func (v *View) handleEditKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.editing = false
		v.field.Blur()
		return v, nil
	case "enter":
		cmd, err := v.commit()
		if err != nil {
			v.err = err
			return v, nil
		}
		v.editing = false
		v.field.Blur()
		return v, cmd
	}

	var cmd tea.Cmd
	v.field, cmd = v.field.Update(msg)
	return v, cmd
}

// commit turns the edited value into a save command.
func (v *View) commit() (tea.Cmd, error) {
	value := strings.TrimSpace(v.field.Value())
	switch v.selected {
	case RowExcludes:
		patterns := []string{}
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				patterns = append(patterns, p)
			}
		}
		return v.save(func(s driving.SettingsService) error {
			return s.SetDefaultExcludes(patterns)
		}), nil
	case RowMinDepth:
		depth, err := cast.ToIntE(value)
		if err != nil || depth < 1 {
			return nil, fmt.Errorf("depth must be a positive number: %w", domain.ErrInvalidInput)
		}
		return v.save(func(s driving.SettingsService) error {
			return s.SetMinBackupDepth(depth)
		}), nil
	case RowSchedule:
		if value == "" {
			return nil, fmt.Errorf("schedule must not be empty: %w", domain.ErrInvalidInput)
		}
		enabled := v.settings.Scheduler.Enabled
		return v.save(func(s driving.SettingsService) error {
			return s.SetSchedule(value, enabled)
		}), nil
	}
	return nil, nil
}

func (v *View) save(apply func(driving.SettingsService) error) tea.Cmd {
	service := v.service
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsSaved{Err: fmt.Errorf("settings service not available")}
		}
		return messages.SettingsSaved{Err: apply(service)}
	}
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if v.settings == nil {
		if v.err != nil {
			b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		} else {
			b.WriteString(v.styles.Muted.Render("Loading settings..."))
		}
		b.WriteString("\n\n")
		b.WriteString(v.styles.Help.Render("[esc] back"))
		return b.String()
	}

	s := v.settings
	excludes := "none"
	if len(s.Backup.DefaultExcludes) > 0 {
		excludes = strings.Join(s.Backup.DefaultExcludes, ", ")
	}
	enabled := "no"
	if s.Scheduler.Enabled {
		enabled = "yes"
	}

	v.row(&b, RowExcludes, "Excludes", excludes)
	v.row(&b, RowMinDepth, "Min depth", cast.ToString(s.Backup.MinDepth))
	v.row(&b, RowSchedule, "Schedule", s.Scheduler.BackupSchedule)
	v.row(&b, RowSchedulerEnabled, "Scheduled", enabled)
	b.WriteString("\n")

	b.WriteString(v.styles.Subtitle.Render("Watch"))
	b.WriteString("\n")
	b.WriteString(v.styles.Label.Render("  Debounce"))
	b.WriteString(v.styles.Muted.Render(s.Watch.Debounce.String()))
	b.WriteString("\n")
	b.WriteString(v.styles.Label.Render("  Rate limit"))
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%d deploys/min", s.Watch.MaxDeploysPerMinute)))
	b.WriteString("\n\n")

	if v.editing {
		b.WriteString(v.field.View())
		b.WriteString("\n\n")
	}
	if v.err != nil {
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n\n")
	} else if v.saved {
		b.WriteString(v.styles.Success.Render("Saved"))
		b.WriteString("\n\n")
	}

	help := "[j/k] navigate  [enter] edit/toggle  [esc] back"
	if v.editing {
		help = "[enter] save  [esc] cancel"
	}
	b.WriteString(v.styles.Help.Render(help))
	return b.String()
}

func (v *View) row(b *strings.Builder, r Row, label, value string) {
	if r == v.selected {
		b.WriteString(v.styles.Selected.Render(fmt.Sprintf("> %-12s", label)))
	} else {
		b.WriteString(v.styles.Normal.Render(fmt.Sprintf("  %-12s", label)))
	}
	b.WriteString(" ")
	b.WriteString(v.styles.Normal.Render(value))
	b.WriteString("\n")
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.field.SetWidth(width - 4)
}

// Settings returns the loaded settings.
func (v *View) Settings() *domain.AppSettings {
	return v.settings
}

// Selected returns the highlighted row.
func (v *View) Selected() Row {
	return v.selected
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
