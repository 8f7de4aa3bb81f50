// Package tui provides an interactive terminal user interface for codekeeper.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Projects manages project records.
	Projects driving.ProjectService

	// Backups runs backups and deploys.
	Backups driving.BackupService

	// Settings manages application settings. Optional.
	Settings driving.SettingsService
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(
	projects driving.ProjectService,
	backups driving.BackupService,
	settings driving.SettingsService,
) *Ports {
	return &Ports{
		Projects: projects,
		Backups:  backups,
		Settings: settings,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Projects == nil {
		return ErrMissingProjectService
	}
	if p.Backups == nil {
		return ErrMissingBackupService
	}
	return nil
}
