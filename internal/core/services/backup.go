package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driven"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
	"github.com/custodia-labs/codekeeper/internal/logger"
)

// Ensure BackupService implements the interface.
var _ driving.BackupService = (*BackupService)(nil)

// BackupService runs backups and deploys of stored projects.
type BackupService struct {
	projects driven.ProjectStore
	engine   driving.BackupEngine
	settings driving.SettingsService
}

// NewBackupService creates a new backup service.
// settings may be nil, in which case the built-in exclusions apply.
func NewBackupService(
	projects driven.ProjectStore,
	engine driving.BackupEngine,
	settings driving.SettingsService,
) *BackupService {
	return &BackupService{
		projects: projects,
		engine:   engine,
		settings: settings,
	}
}

// Backup creates a timestamped backup of the project and records when it finished.
func (s *BackupService) Backup(
	ctx context.Context,
	projectID string,
	onProgress domain.ProgressFunc,
) (*domain.BackupResult, error) {
	if s.projects == nil || s.engine == nil {
		return nil, domain.ErrNotImplemented
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.RunBackup(ctx, driving.BackupRequest{
		SourceDir:   project.SourcePath,
		BackupRoot:  project.BackupPath,
		ProjectName: project.Name,
		Patterns:    effectivePatterns(s.settings, project),
		OnProgress:  onProgress,
	})
	if err != nil {
		return result, err
	}

	project.LastBackupAt = result.FinishedAt
	if err := s.projects.Save(ctx, *project); err != nil {
		return result, fmt.Errorf("record last backup: %w", err)
	}
	return result, nil
}

// Deploy copies the project into its runtime directory.
func (s *BackupService) Deploy(
	ctx context.Context,
	projectID string,
	confirmed bool,
	onProgress domain.ProgressFunc,
) (*domain.BackupResult, error) {
	if s.projects == nil || s.engine == nil {
		return nil, domain.ErrNotImplemented
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.HasRuntime() {
		return nil, fmt.Errorf("project %q: %w", project.Name, domain.ErrNoRuntimePath)
	}

	return s.engine.DeployToRuntime(ctx, driving.DeployRequest{
		SourceDir:  project.SourcePath,
		RuntimeDir: project.RuntimePath,
		Patterns:   effectivePatterns(s.settings, project),
		Confirmed:  confirmed,
		OnProgress: onProgress,
	})
}

// BackupAll backs up every project in name order. A failing project does
// not stop the others; only listing failures and cancellation are returned
// as errors.
func (s *BackupService) BackupAll(ctx context.Context) ([]driving.ProjectRunResult, error) {
	if s.projects == nil || s.engine == nil {
		return nil, domain.ErrNotImplemented
	}
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	results := make([]driving.ProjectRunResult, 0, len(projects))
	for _, project := range projects {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		logger.Info("Backing up %s", project.Name)
		result, err := s.Backup(ctx, project.ID, nil)
		if err != nil {
			logger.Warn("Backup of %s failed: %v", project.Name, err)
		}
		results = append(results, driving.ProjectRunResult{Project: project, Result: result, Err: err})
	}
	return results, nil
}

// ListBackups returns the project's backup directories, newest first.
// A missing backup root yields an empty list.
func (s *BackupService) ListBackups(ctx context.Context, projectID string) ([]domain.BackupEntry, error) {
	if s.projects == nil {
		return nil, domain.ErrNotImplemented
	}
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(project.BackupPath)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.BackupEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup root: %w", err)
	}

	prefix := backupPrefix(project.Name)
	backups := make([]domain.BackupEntry, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) {
			continue
		}
		created, ok := parseBackupStamp(strings.TrimPrefix(entry.Name(), prefix))
		if !ok {
			continue
		}
		backups = append(backups, domain.BackupEntry{
			Name:      entry.Name(),
			Path:      filepath.Join(project.BackupPath, entry.Name()),
			CreatedAt: created,
		})
	}

	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].CreatedAt.Equal(backups[j].CreatedAt) {
			return backups[i].CreatedAt.After(backups[j].CreatedAt)
		}
		return backupSuffix(backups[i].Name) > backupSuffix(backups[j].Name)
	})
	return backups, nil
}

// parseBackupStamp parses "<timestamp>" or "<timestamp>_<n>".
func parseBackupStamp(s string) (time.Time, bool) {
	layout := domain.BackupTimestampLayout
	if len(s) < len(layout) {
		return time.Time{}, false
	}
	created, err := time.ParseInLocation(layout, s[:len(layout)], time.Local)
	if err != nil {
		return time.Time{}, false
	}
	rest := s[len(layout):]
	if rest == "" {
		return created, true
	}
	if !strings.HasPrefix(rest, "_") {
		return time.Time{}, false
	}
	if n, err := strconv.Atoi(rest[1:]); err != nil || n < 2 {
		return time.Time{}, false
	}
	return created, true
}

// backupSuffix returns the collision counter of a backup directory name, 1 when absent.
func backupSuffix(name string) int {
	i := strings.LastIndex(name, "_")
	if i < 0 {
		return 1
	}
	n, err := strconv.Atoi(name[i+1:])
	if err != nil || n < 2 || n > maxCollisionSuffix {
		return 1
	}
	return n
}
