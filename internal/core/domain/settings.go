package domain

import "time"

// AppSettings holds all user-configurable settings.
type AppSettings struct {
	Backup    BackupSettings
	Scheduler SchedulerConfig
	Watch     WatchSettings
}

// BackupSettings configures backup and deploy runs.
type BackupSettings struct {
	// DefaultExcludes are merged into every project's patterns.
	DefaultExcludes []string

	// MinDepth is the minimum number of path components below the
	// filesystem root a backup root must have.
	MinDepth int
}

// WatchSettings configures live redeploys from the watch command.
type WatchSettings struct {
	// Debounce is the quiet period after the last change before redeploying.
	Debounce time.Duration

	// MaxDeploysPerMinute caps redeploys while files keep changing.
	MaxDeploysPerMinute int
}

// DefaultMinBackupDepth mirrors a layout like ~/Backups/<project>.
const DefaultMinBackupDepth = 2

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	excludes := make([]string, len(DefaultExcludePatterns))
	copy(excludes, DefaultExcludePatterns)
	return AppSettings{
		Backup: BackupSettings{
			DefaultExcludes: excludes,
			MinDepth:        DefaultMinBackupDepth,
		},
		Scheduler: DefaultSchedulerConfig(),
		Watch: WatchSettings{
			Debounce:            500 * time.Millisecond,
			MaxDeploysPerMinute: 12,
		},
	}
}
