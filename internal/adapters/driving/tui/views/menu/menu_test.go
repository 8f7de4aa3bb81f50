package menu

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/messages"
)

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestNewView(t *testing.T) {
	view := NewView(nil)

	require.NotNil(t, view)
	assert.NotNil(t, view.styles)
	assert.Len(t, view.Items(), 5)
	assert.Equal(t, 0, view.Selected())
}

func TestView_Update_WindowSize(t *testing.T) {
	view := NewView(nil)

	updated, cmd := view.Update(tea.WindowSizeMsg{Width: 100, Height: 50})

	assert.Equal(t, view, updated)
	assert.Nil(t, cmd)
	assert.True(t, view.ready)
	assert.Equal(t, 100, view.width)
}

func TestView_Update_Navigate(t *testing.T) {
	view := NewView(nil)

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, 1, view.Selected())

	for range 10 {
		view.Update(keyRune('j'))
	}
	assert.Equal(t, 4, view.Selected())

	view.Update(tea.KeyMsg{Type: tea.KeyUp})
	assert.Equal(t, 3, view.Selected())

	for range 10 {
		view.Update(keyRune('k'))
	}
	assert.Equal(t, 0, view.Selected())
}

func TestView_Update_EnterChangesView(t *testing.T) {
	tests := []struct {
		selected int
		want     messages.ViewType
	}{
		{0, messages.ViewProjects},
		{1, messages.ViewAddProject},
		{2, messages.ViewSettings},
		{3, messages.ViewHelp},
	}

	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			view := NewView(nil)
			view.selected = tt.selected

			_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

			require.NotNil(t, cmd)
			changed, ok := cmd().(messages.ViewChanged)
			require.True(t, ok)
			assert.Equal(t, tt.want, changed.View)
		})
	}
}

func TestView_Update_EnterQuit(t *testing.T) {
	view := NewView(nil)
	view.selected = 4

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_Update_QuestionMarkOpensHelp(t *testing.T) {
	view := NewView(nil)

	_, cmd := view.Update(keyRune('?'))

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewHelp}, cmd())
}

func TestView_Update_Q(t *testing.T) {
	view := NewView(nil)

	_, cmd := view.Update(keyRune('q'))

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestView_View(t *testing.T) {
	view := NewView(nil)
	assert.Contains(t, view.View(), "Initialising")

	view.SetDimensions(80, 24)
	output := view.View()

	assert.Contains(t, output, "CodeKeeper")
	assert.Contains(t, output, "Projects")
	assert.Contains(t, output, "Add project")
	assert.Contains(t, output, "[q] Quit")
	assert.Contains(t, output, "> ")
	assert.Contains(t, output, "Browse projects, back up and deploy")

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Contains(t, view.View(), "Register a source and destination pair")
}

func TestView_Update_Shortcuts(t *testing.T) {
	tests := []struct {
		key      rune
		want     messages.ViewType
		selected int
	}{
		{'p', messages.ViewProjects, 0},
		{'a', messages.ViewAddProject, 1},
		{'s', messages.ViewSettings, 2},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			view := NewView(nil)

			_, cmd := view.Update(keyRune(tt.key))

			require.NotNil(t, cmd)
			assert.Equal(t, messages.ViewChanged{View: tt.want}, cmd())
			assert.Equal(t, tt.selected, view.Selected())
		})
	}
}

func TestView_Update_UnknownKey(t *testing.T) {
	view := NewView(nil)

	_, cmd := view.Update(keyRune('z'))

	assert.Nil(t, cmd)
	assert.Equal(t, 0, view.Selected())
}

func TestView_Update_CtrlC(t *testing.T) {
	view := NewView(nil)

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestMenuItems(t *testing.T) {
	items := NewView(nil).Items()

	assert.Equal(t, "Projects", items[0].Label)
	assert.Equal(t, messages.ViewProjects, items[0].View)
	assert.False(t, items[0].Quit)
	assert.Equal(t, "p", items[0].Shortcut)
	assert.Equal(t, "Quit", items[4].Label)
	assert.True(t, items[4].Quit)
}
