package driving

import (
	"context"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// DeployFunc is called after every redeploy triggered by a change.
type DeployFunc func(changed []string, result *domain.BackupResult, err error)

// DeployWatcher keeps a project's runtime directory in sync with its source.
type DeployWatcher interface {
	// Run deploys the project once, then redeploys after source changes
	// until ctx is cancelled. The caller has already confirmed overwriting
	// the runtime directory.
	Run(ctx context.Context, projectID string, onDeploy DeployFunc) error
}
