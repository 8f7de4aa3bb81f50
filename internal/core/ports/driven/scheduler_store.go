package driven

import (
	"context"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// SchedulerStore keeps scheduled task state and run history across restarts.
type SchedulerStore interface {
	// GetTask returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// ListTasks returns all tasks ordered by ID.
	ListTasks(ctx context.Context) ([]domain.ScheduledTask, error)

	// SaveTask creates or replaces a task.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordRun appends a run to the task's history.
	RecordRun(ctx context.Context, run *domain.ScheduledRun) error

	// RecentRuns returns up to limit runs of a task, newest first.
	RecentRuns(ctx context.Context, taskID string, limit int) ([]domain.ScheduledRun, error)

	// PruneRuns keeps only the newest keep runs of each task.
	PruneRuns(ctx context.Context, keep int) error
}
