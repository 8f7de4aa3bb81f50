// Package menu is the TUI home screen.
package menu

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Shortcut jumps straight to it.
type Item struct {
	Label    string
	Shortcut string
	Hint     string
	View     messages.ViewType
	Quit     bool
}

func (i Item) cmd() tea.Cmd {
	if i.Quit {
		return tea.Quit
	}
	view := i.View
	return func() tea.Msg { return messages.ViewChanged{View: view} }
}

func defaultItems() []Item {
	return []Item{
		{Label: "Projects", Shortcut: "p", Hint: "Browse projects, back up and deploy", View: messages.ViewProjects},
		{Label: "Add project", Shortcut: "a", Hint: "Register a source and destination pair", View: messages.ViewAddProject},
		{Label: "Settings", Shortcut: "s", Hint: "Excludes, search depth, schedule and watch", View: messages.ViewSettings},
		{Label: "Help", Shortcut: "?", Hint: "Key bindings", View: messages.ViewHelp},
		{Label: "Quit", Shortcut: "q", Hint: "Leave CodeKeeper", Quit: true},
	}
}

// View is the home screen.
type View struct {
	styles   *styles.Styles
	keys     *keymap.KeyMap
	items    []Item
	selected int
	width    int
	height   int
	ready    bool
}

// NewView creates the menu with its default entries.
func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		items:  defaultItems(),
		width:  80,
		height: 24,
	}
}

// Init implements the view contract.
func (v *View) Init() tea.Cmd {
	return nil
}

// Update moves the cursor or activates an entry.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) tea.Cmd {
	switch {
	case keymap.Matches(k, v.keys.Up):
		v.selected = max(v.selected-1, 0)
		return nil
	case keymap.Matches(k, v.keys.Down):
		v.selected = min(v.selected+1, len(v.items)-1)
		return nil
	case keymap.Matches(k, v.keys.Select):
		return v.items[v.selected].cmd()
	case k == "ctrl+c":
		return tea.Quit
	}

	for i, item := range v.items {
		if item.Shortcut == k {
			v.selected = i
			return item.cmd()
		}
	}
	return nil
}

// View renders the entries with the hint of the highlighted one.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("CodeKeeper"))
	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render("Project backups and deploys"))
	b.WriteString("\n\n")

	for i, item := range v.items {
		label := "[" + item.Shortcut + "] " + item.Label
		if i == v.selected {
			b.WriteString("> " + v.styles.Selected.Render(label))
		} else {
			b.WriteString("  " + v.styles.Normal.Render(label))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.styles.Muted.Render(v.items[v.selected].Hint))
	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render(keymap.HelpLine(v.keys.Up, v.keys.Down, v.keys.Select)))

	return b.String()
}

// SetDimensions records the terminal size and marks the view ready.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
}

// Items returns the menu entries.
func (v *View) Items() []Item {
	return v.items
}

// Selected returns the highlighted index.
func (v *View) Selected() int {
	return v.selected
}
