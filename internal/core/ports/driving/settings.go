package driving

import "github.com/custodia-labs/codekeeper/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetDefaultExcludes replaces the default exclusion patterns.
	SetDefaultExcludes(patterns []string) error

	// SetMinBackupDepth sets the minimum depth of backup roots.
	SetMinBackupDepth(depth int) error

	// SetSchedule configures scheduled backups.
	SetSchedule(expr string, enabled bool) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings
}
