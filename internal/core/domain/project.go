package domain

import (
	"strings"
	"time"
)

// Project is a tracked source tree with its backup and runtime targets.
type Project struct {
	// ID is the unique identifier for the project.
	ID string

	// Name is the unique, human-readable project name.
	// It also prefixes every backup directory of the project.
	Name string

	// SourcePath is the directory that gets copied.
	SourcePath string

	// BackupPath is the root under which timestamped backups are created.
	BackupPath string

	// RuntimePath is an optional live deployment directory.
	RuntimePath string

	// ExcludePatterns are project-specific exclusion patterns.
	// They are merged with the default patterns from settings at run time.
	ExcludePatterns []string

	// LastBackupAt is when the last backup finished. Zero means never.
	LastBackupAt time.Time

	// CreatedAt is when the project was created.
	CreatedAt time.Time

	// UpdatedAt is when the project was last updated.
	UpdatedAt time.Time
}

// HasRuntime reports whether a runtime directory is configured.
func (p *Project) HasRuntime() bool {
	return strings.TrimSpace(p.RuntimePath) != ""
}

// LastBackupLabel returns a display string for the last backup time.
func (p *Project) LastBackupLabel() string {
	if p.LastBackupAt.IsZero() {
		return "never"
	}
	return p.LastBackupAt.Local().Format("02.01.2006 15:04")
}
