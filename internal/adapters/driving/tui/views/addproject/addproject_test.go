package addproject

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui/tuitest"
	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

func newForm(t *testing.T, projects *tuitest.ProjectService) *View {
	t.Helper()
	view := NewView(nil, projects)
	view.SetDimensions(100, 40)
	view.Init()
	return view
}

func typeText(view *View, text string) {
	view.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestView_InitFocusesName(t *testing.T) {
	view := newForm(t, &tuitest.ProjectService{})

	assert.Equal(t, FieldName, view.Focused())
	assert.True(t, view.Field(FieldName).Focused())
	assert.False(t, view.Field(FieldSource).Focused())
}

func TestView_TabCyclesFields(t *testing.T) {
	view := newForm(t, &tuitest.ProjectService{})

	view.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, FieldSource, view.Focused())
	assert.False(t, view.Field(FieldName).Focused())

	view.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	view.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	assert.Equal(t, FieldExcludes, view.Focused())

	view.Update(tea.KeyMsg{Type: tea.KeyDown})
	assert.Equal(t, FieldName, view.Focused())
}

func TestView_TypingFillsFocusedField(t *testing.T) {
	view := newForm(t, &tuitest.ProjectService{})

	typeText(view, "webapp")
	view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	typeText(view, "/src/webapp")

	assert.Equal(t, "webapp", view.Field(FieldName).Value())
	assert.Equal(t, "/src/webapp", view.Field(FieldSource).Value())
	assert.Equal(t, FieldSource, view.Focused())
}

func TestView_ProjectFromFields(t *testing.T) {
	view := newForm(t, &tuitest.ProjectService{})
	view.Field(FieldName).SetValue("  webapp ")
	view.Field(FieldSource).SetValue("/src/webapp")
	view.Field(FieldBackup).SetValue("/bk")
	view.Field(FieldExcludes).SetValue("node_modules, *.log ,, dist")

	p := view.Project()

	assert.Equal(t, "webapp", p.Name)
	assert.Equal(t, "/src/webapp", p.SourcePath)
	assert.Equal(t, "/bk", p.BackupPath)
	assert.Empty(t, p.RuntimePath)
	assert.Equal(t, []string{"node_modules", "*.log", "dist"}, p.ExcludePatterns)
}

func TestView_SubmitRequiresPaths(t *testing.T) {
	view := newForm(t, &tuitest.ProjectService{})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, view.Err(), domain.ErrInvalidInput)
	assert.Contains(t, view.View(), "required")
}

func TestView_SubmitAddsProject(t *testing.T) {
	var got domain.Project
	projects := &tuitest.ProjectService{
		AddFunc: func(ctx context.Context, p domain.Project) (*domain.Project, error) {
			got = p
			p.ID = "p1"
			return &p, nil
		},
	}
	view := newForm(t, projects)
	view.Field(FieldSource).SetValue("/src/webapp")
	view.Field(FieldBackup).SetValue("/bk")

	for range FieldExcludes {
		view.Update(tea.KeyMsg{Type: tea.KeyTab})
	}
	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.NotNil(t, cmd)
	assert.Contains(t, view.View(), "Saving")

	_, again := view.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	assert.Nil(t, again)

	msg := cmd()
	added, ok := msg.(messages.ProjectAdded)
	require.True(t, ok)
	require.NoError(t, added.Err)
	assert.Equal(t, "p1", added.Project.ID)
	assert.Equal(t, "/src/webapp", got.SourcePath)
	assert.Equal(t, "webapp", got.Name)

	_, cmd = view.Update(msg)
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewProjects}, cmd())
}

func TestView_SubmitErrorStays(t *testing.T) {
	view := newForm(t, &tuitest.ProjectService{})

	_, cmd := view.Update(messages.ProjectAdded{Err: domain.ErrAlreadyExists})

	assert.Nil(t, cmd)
	assert.ErrorIs(t, view.Err(), domain.ErrAlreadyExists)
	assert.Contains(t, view.View(), "Error")
}

func TestView_NilServiceRejected(t *testing.T) {
	view := newForm(t, nil)
	view.projects = nil
	view.Field(FieldSource).SetValue("/src")
	view.Field(FieldBackup).SetValue("/bk")

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyCtrlS})

	assert.Nil(t, cmd)
	assert.Error(t, view.Err())
}

func TestView_EscCancels(t *testing.T) {
	view := newForm(t, &tuitest.ProjectService{})

	_, cmd := view.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewProjects}, cmd())
}

func TestView_InitClearsForm(t *testing.T) {
	view := newForm(t, &tuitest.ProjectService{})
	view.Field(FieldSource).SetValue("/src")
	view.Update(tea.KeyMsg{Type: tea.KeyTab})

	view.Init()

	assert.Empty(t, view.Field(FieldSource).Value())
	assert.Equal(t, FieldName, view.Focused())
}

func TestView_Render(t *testing.T) {
	view := newForm(t, &tuitest.ProjectService{})

	output := view.View()

	assert.Contains(t, output, "Add project")
	assert.Contains(t, output, "Source")
	assert.Contains(t, output, "Backup root")
	assert.Contains(t, output, "[ctrl+s] save")
}
