package services

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driven"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyDefaultExcludes   = "backup.default_excludes"
	keyMinDepth          = "backup.min_depth"
	keySchedulerEnabled  = "scheduler.enabled"
	keyBackupSchedule    = "scheduler.backup_schedule"
	keyWatchDebounce     = "watch.debounce"
	keyWatchDeployPerMin = "watch.max_deploys_per_minute"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
// Missing keys fall back to defaults.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	if s.configStore == nil {
		return nil, domain.ErrNotImplemented
	}
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Backup: domain.BackupSettings{
			DefaultExcludes: s.getStrings(keyDefaultExcludes, defaults.Backup.DefaultExcludes),
			MinDepth:        s.getInt(keyMinDepth, defaults.Backup.MinDepth),
		},
		Scheduler: domain.SchedulerConfig{
			Enabled:        s.getBool(keySchedulerEnabled, defaults.Scheduler.Enabled),
			BackupSchedule: s.getString(keyBackupSchedule, defaults.Scheduler.BackupSchedule),
		},
		Watch: domain.WatchSettings{
			Debounce:            s.getDuration(keyWatchDebounce, defaults.Watch.Debounce),
			MaxDeploysPerMinute: s.getInt(keyWatchDeployPerMin, defaults.Watch.MaxDeploysPerMinute),
		},
	}

	return settings, nil
}

// Save persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}

	excludes := settings.Backup.DefaultExcludes
	if excludes == nil {
		excludes = []string{}
	}
	err := s.configStore.Update(map[string]any{
		keyDefaultExcludes:   excludes,
		keyMinDepth:          settings.Backup.MinDepth,
		keySchedulerEnabled:  settings.Scheduler.Enabled,
		keyBackupSchedule:    settings.Scheduler.BackupSchedule,
		keyWatchDebounce:     settings.Watch.Debounce.String(),
		keyWatchDeployPerMin: settings.Watch.MaxDeploysPerMinute,
	})
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// SetDefaultExcludes replaces the default exclusion patterns.
// An empty list disables default exclusions.
func (s *SettingsService) SetDefaultExcludes(patterns []string) error {
	if err := domain.ValidatePatterns(patterns); err != nil {
		return err
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Backup.DefaultExcludes = domain.NewExclusionSet(patterns).Patterns()
	return s.Save(settings)
}

// SetMinBackupDepth sets the minimum depth of backup roots.
func (s *SettingsService) SetMinBackupDepth(depth int) error {
	if depth < 1 {
		return fmt.Errorf("%w: minimum backup depth must be at least 1", domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Backup.MinDepth = depth
	return s.Save(settings)
}

// SetSchedule configures scheduled backups. expr must be a standard cron
// expression or descriptor such as "@daily".
func (s *SettingsService) SetSchedule(expr string, enabled bool) error {
	if _, err := cron.ParseStandard(expr); err != nil {
		return fmt.Errorf("%w: schedule %q: %w", domain.ErrInvalidInput, expr, err)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	settings.Scheduler.BackupSchedule = expr
	settings.Scheduler.Enabled = enabled
	return s.Save(settings)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// The getters below fall back to the default when a key is missing or
// holds an unusable value.

func (s *SettingsService) getString(key, defaultVal string) string {
	if val, ok := s.configStore.String(key); ok && val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if val, ok := s.configStore.Int(key); ok && val > 0 {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if val, ok := s.configStore.Bool(key); ok {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if val, ok := s.configStore.Duration(key); ok && val > 0 {
		return val
	}
	return defaultVal
}

// getStrings keeps an explicitly empty list, which disables the defaults.
func (s *SettingsService) getStrings(key string, defaultVal []string) []string {
	if val, ok := s.configStore.Strings(key); ok {
		return val
	}
	return defaultVal
}

// effectivePatterns merges the default excludes with a project's own patterns.
func effectivePatterns(settings driving.SettingsService, project *domain.Project) []string {
	defaults := domain.DefaultExcludePatterns
	if settings != nil {
		if s, err := settings.Get(); err == nil {
			defaults = s.Backup.DefaultExcludes
		}
	}
	return domain.NewExclusionSet(defaults, project.ExcludePatterns).Patterns()
}

// minBackupDepth returns the configured minimum depth for backup roots.
func minBackupDepth(settings driving.SettingsService) int {
	if settings != nil {
		if s, err := settings.Get(); err == nil && s.Backup.MinDepth > 0 {
			return s.Backup.MinDepth
		}
	}
	return domain.DefaultMinBackupDepth
}
