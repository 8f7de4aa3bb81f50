package driving

import (
	"context"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// ScheduleStatus describes the backup task and its latest runs.
type ScheduleStatus struct {
	// Task is nil until the scheduler has started once.
	Task *domain.ScheduledTask

	// Recent holds the latest runs, newest first.
	Recent []domain.ScheduledRun
}

// Scheduler runs scheduled project backups in the background.
type Scheduler interface {
	// Start blocks until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop waits for an in-flight backup to finish.
	Stop() error

	// Status reads the persisted task state and up to limit recent runs.
	Status(ctx context.Context, limit int) (*ScheduleStatus, error)
}
