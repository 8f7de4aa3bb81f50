// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewProjects lists the tracked projects.
	ViewProjects
	// ViewProjectDetail shows one project and runs backups and deploys.
	ViewProjectDetail
	// ViewAddProject is the add project form.
	ViewAddProject
	// ViewSettings shows and edits settings.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewProjects:
		return "projects"
	case ViewProjectDetail:
		return "project_detail"
	case ViewAddProject:
		return "add_project"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// ProjectsLoaded carries the list of projects from the service.
type ProjectsLoaded struct {
	Projects []domain.Project
	Err      error
}

// ProjectSelected signals a project was selected for the detail view.
type ProjectSelected struct {
	Project domain.Project
}

// ProjectAdded signals the add form finished.
type ProjectAdded struct {
	Project *domain.Project
	Err     error
}

// ProjectRemoved signals a project record was deleted.
type ProjectRemoved struct {
	ID  string
	Err error
}

// RunKind names the operation of a run.
type RunKind string

// Run kinds.
const (
	RunBackup RunKind = "backup"
	RunDeploy RunKind = "deploy"
)

// RunProgress relays a progress update from a running backup or deploy.
type RunProgress struct {
	Kind     RunKind
	Progress domain.Progress
}

// RunFinished is sent once when a backup or deploy ends.
type RunFinished struct {
	Kind   RunKind
	Result *domain.BackupResult
	Err    error
}

// BackupsLoaded carries the existing backups of a project.
type BackupsLoaded struct {
	ProjectID string
	Entries   []domain.BackupEntry
	Err       error
}

// SettingsLoaded carries the application settings.
type SettingsLoaded struct {
	Settings *domain.AppSettings
	Err      error
}

// SettingsSaved signals settings were saved.
type SettingsSaved struct {
	Err error
}
