// Package tuitest provides function-field mocks of the driving ports for
// TUI tests.
package tuitest

import (
	"context"
	"sync"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
)

// ProjectService implements driving.ProjectService.
// Unset functions return zero values.
type ProjectService struct {
	AddFunc     func(ctx context.Context, p domain.Project) (*domain.Project, error)
	GetFunc     func(ctx context.Context, id string) (*domain.Project, error)
	ListFunc    func(ctx context.Context) ([]domain.Project, error)
	UpdateFunc  func(ctx context.Context, p domain.Project) error
	RemoveFunc  func(ctx context.Context, id string) error
	ResolveFunc func(ctx context.Context, idOrName string) (*domain.Project, error)
}

var _ driving.ProjectService = (*ProjectService)(nil)

func (m *ProjectService) Add(ctx context.Context, p domain.Project) (*domain.Project, error) {
	if m.AddFunc != nil {
		return m.AddFunc(ctx, p)
	}
	if p.ID == "" {
		p.ID = "new-id"
	}
	return &p, nil
}

func (m *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	return nil, domain.ErrNotFound
}

func (m *ProjectService) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	return m.Resolve(ctx, name)
}

func (m *ProjectService) Resolve(ctx context.Context, idOrName string) (*domain.Project, error) {
	if m.ResolveFunc != nil {
		return m.ResolveFunc(ctx, idOrName)
	}
	return m.Get(ctx, idOrName)
}

func (m *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx)
	}
	return []domain.Project{}, nil
}

func (m *ProjectService) Update(ctx context.Context, p domain.Project) error {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, p)
	}
	return nil
}

func (m *ProjectService) Remove(ctx context.Context, id string) error {
	if m.RemoveFunc != nil {
		return m.RemoveFunc(ctx, id)
	}
	return nil
}

// BackupService implements driving.BackupService and records calls.
type BackupService struct {
	BackupFunc      func(ctx context.Context, id string, onProgress domain.ProgressFunc) (*domain.BackupResult, error)
	DeployFunc      func(ctx context.Context, id string, confirmed bool, onProgress domain.ProgressFunc) (*domain.BackupResult, error)
	BackupAllFunc   func(ctx context.Context) ([]driving.ProjectRunResult, error)
	ListBackupsFunc func(ctx context.Context, id string) ([]domain.BackupEntry, error)

	mu      sync.Mutex
	backups int
	deploys int
}

var _ driving.BackupService = (*BackupService)(nil)

func (m *BackupService) Backup(ctx context.Context, id string, onProgress domain.ProgressFunc) (*domain.BackupResult, error) {
	m.mu.Lock()
	m.backups++
	m.mu.Unlock()
	if m.BackupFunc != nil {
		return m.BackupFunc(ctx, id, onProgress)
	}
	return &domain.BackupResult{Destination: "/backups/" + id}, nil
}

func (m *BackupService) Deploy(
	ctx context.Context, id string, confirmed bool, onProgress domain.ProgressFunc,
) (*domain.BackupResult, error) {
	m.mu.Lock()
	m.deploys++
	m.mu.Unlock()
	if m.DeployFunc != nil {
		return m.DeployFunc(ctx, id, confirmed, onProgress)
	}
	if !confirmed {
		return nil, domain.ErrNotConfirmed
	}
	return &domain.BackupResult{Destination: "/runtime/" + id}, nil
}

func (m *BackupService) BackupAll(ctx context.Context) ([]driving.ProjectRunResult, error) {
	if m.BackupAllFunc != nil {
		return m.BackupAllFunc(ctx)
	}
	return nil, nil
}

func (m *BackupService) ListBackups(ctx context.Context, id string) ([]domain.BackupEntry, error) {
	if m.ListBackupsFunc != nil {
		return m.ListBackupsFunc(ctx, id)
	}
	return []domain.BackupEntry{}, nil
}

// Calls returns how many backups and deploys were requested.
func (m *BackupService) Calls() (backups, deploys int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.backups, m.deploys
}

// SettingsService implements driving.SettingsService on an in-memory value.
type SettingsService struct {
	Settings domain.AppSettings
	Err      error
}

var _ driving.SettingsService = (*SettingsService)(nil)

// NewSettingsService returns a mock holding the default settings.
func NewSettingsService() *SettingsService {
	return &SettingsService{Settings: domain.DefaultAppSettings()}
}

func (m *SettingsService) Get() (*domain.AppSettings, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	s := m.Settings
	return &s, nil
}

func (m *SettingsService) Save(settings *domain.AppSettings) error {
	if m.Err != nil {
		return m.Err
	}
	m.Settings = *settings
	return nil
}

func (m *SettingsService) SetDefaultExcludes(patterns []string) error {
	if m.Err != nil {
		return m.Err
	}
	if err := domain.ValidatePatterns(patterns); err != nil {
		return err
	}
	m.Settings.Backup.DefaultExcludes = patterns
	return nil
}

func (m *SettingsService) SetMinBackupDepth(depth int) error {
	if m.Err != nil {
		return m.Err
	}
	if depth < 1 {
		return domain.ErrInvalidInput
	}
	m.Settings.Backup.MinDepth = depth
	return nil
}

func (m *SettingsService) SetSchedule(expr string, enabled bool) error {
	if m.Err != nil {
		return m.Err
	}
	if expr == "" {
		return domain.ErrInvalidInput
	}
	m.Settings.Scheduler.BackupSchedule = expr
	m.Settings.Scheduler.Enabled = enabled
	return nil
}

func (m *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}
