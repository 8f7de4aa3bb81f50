package domain

import "time"

// ScheduledTask is the persisted state of a recurring background task.
type ScheduledTask struct {
	ID   string
	Name string

	// Schedule is the cron expression the next run is computed from.
	Schedule string

	LastRun time.Time
	NextRun time.Time

	// LastError is the error of the most recent run. Empty after a clean run.
	LastError string

	// LastSuccess is when a run last finished without errors.
	LastSuccess time.Time

	Enabled bool
}

// ScheduledRun records one execution of a scheduled backup task.
type ScheduledRun struct {
	TaskID    string
	StartedAt time.Time
	EndedAt   time.Time

	// BackedUp counts projects copied, including partial copies.
	BackedUp int

	// Failed names projects whose backup failed or skipped entries on error.
	Failed []string

	// Error joins the per-project errors.
	Error string
}

// OK reports whether every project was backed up in full.
func (r ScheduledRun) OK() bool {
	return r.Error == "" && len(r.Failed) == 0
}

// Duration returns how long the run took.
func (r ScheduledRun) Duration() time.Duration {
	return r.EndedAt.Sub(r.StartedAt)
}

// SchedulerConfig holds scheduler configuration.
type SchedulerConfig struct {
	// Enabled is the master switch for the scheduler.
	Enabled bool

	// BackupSchedule is a cron expression (standard five fields or a
	// descriptor such as "@daily") for the project backup task.
	BackupSchedule string
}

// DefaultSchedulerConfig returns the scheduler defaults.
// Scheduled backups are opt-in.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:        false,
		BackupSchedule: "@daily",
	}
}

// TaskIDProjectBackup identifies the task that backs up every project.
const TaskIDProjectBackup = "project-backup"
