package driving

import (
	"context"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// BackupRequest describes a timestamped backup run.
type BackupRequest struct {
	// SourceDir is the tree to copy.
	SourceDir string

	// BackupRoot is the directory the timestamped run directory is created in.
	BackupRoot string

	// ProjectName prefixes the run directory. Defaults to the base name of SourceDir.
	ProjectName string

	// Patterns are the exclusion patterns for this run.
	Patterns []string

	// OnProgress is called synchronously after each entry. May be nil.
	OnProgress domain.ProgressFunc
}

// DeployRequest describes an additive copy into a runtime directory.
type DeployRequest struct {
	SourceDir  string
	RuntimeDir string
	Patterns   []string

	// Confirmed must be true; otherwise nothing is touched.
	Confirmed bool

	OnProgress domain.ProgressFunc
}

// BackupEngine copies source trees. It is the boundary the CLI and TUI
// call through instead of reaching into the copy implementation.
type BackupEngine interface {
	// RunBackup copies SourceDir into a fresh <name>_<timestamp> directory
	// under BackupRoot. Validation failures and an unreadable source are
	// returned as errors before anything is written; per-entry failures are
	// collected in the result.
	RunBackup(ctx context.Context, req BackupRequest) (*domain.BackupResult, error)

	// DeployToRuntime copies SourceDir into RuntimeDir, overwriting files
	// and never deleting destination-only files.
	DeployToRuntime(ctx context.Context, req DeployRequest) (*domain.BackupResult, error)
}

// ProjectRunResult pairs a project with the outcome of its run.
type ProjectRunResult struct {
	Project domain.Project
	Result  *domain.BackupResult
	Err     error
}

// BackupService runs backups and deploys for stored projects.
type BackupService interface {
	// Backup creates a timestamped backup of the project.
	Backup(ctx context.Context, projectID string, onProgress domain.ProgressFunc) (*domain.BackupResult, error)

	// Deploy copies the project into its runtime directory.
	Deploy(ctx context.Context, projectID string, confirmed bool, onProgress domain.ProgressFunc) (*domain.BackupResult, error)

	// BackupAll backs up every project in name order.
	BackupAll(ctx context.Context) ([]ProjectRunResult, error)

	// ListBackups returns existing backup directories of the project, newest first.
	ListBackups(ctx context.Context, projectID string) ([]domain.BackupEntry, error)
}
