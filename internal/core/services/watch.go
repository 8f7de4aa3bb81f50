package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driven"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
	"github.com/custodia-labs/codekeeper/internal/logger"
)

// Ensure DeployWatcher implements the interface.
var _ driving.DeployWatcher = (*DeployWatcher)(nil)

// DeployWatcher redeploys a project whenever its source tree changes.
type DeployWatcher struct {
	projects driven.ProjectStore
	backups  driving.BackupService
	settings driving.SettingsService
	watcher  driven.SourceWatcher
}

// NewDeployWatcher creates a deploy watcher.
func NewDeployWatcher(
	projects driven.ProjectStore,
	backups driving.BackupService,
	settings driving.SettingsService,
	watcher driven.SourceWatcher,
) *DeployWatcher {
	return &DeployWatcher{
		projects: projects,
		backups:  backups,
		settings: settings,
		watcher:  watcher,
	}
}

// Run deploys once and then on every batch of changes until ctx is done.
func (w *DeployWatcher) Run(ctx context.Context, projectID string, onDeploy driving.DeployFunc) error {
	if w.projects == nil || w.backups == nil || w.watcher == nil {
		return domain.ErrNotImplemented
	}
	project, err := w.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	if !project.HasRuntime() {
		return fmt.Errorf("project %q: %w", project.Name, domain.ErrNoRuntimePath)
	}

	deploy := func(changed []string) error {
		result, err := w.backups.Deploy(ctx, project.ID, true, nil)
		if onDeploy != nil {
			onDeploy(changed, result, err)
		}
		return err
	}

	if err := deploy(nil); err != nil && isSetupError(err) {
		return err
	}

	excl := domain.NewExclusionSet(effectivePatterns(w.settings, project))
	logger.Info("Watching %s", project.SourcePath)
	return w.watcher.Watch(ctx, project.SourcePath, excl.Match, func(changed []string) {
		logger.Debug("%d paths changed", len(changed))
		_ = deploy(changed)
	})
}

// isSetupError reports whether a deploy failed on configuration rather
// than on the copy itself. Such failures repeat on every change.
func isSetupError(err error) bool {
	for _, target := range []error{domain.ErrPathRejected, domain.ErrSourceUnreadable, domain.ErrNoRuntimePath} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
