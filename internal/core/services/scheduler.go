package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driven"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
	"github.com/custodia-labs/codekeeper/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// runRetention is the number of runs kept per task.
const runRetention = 100

// Scheduler runs scheduled project backups in the background.
// Task state and run history live in a driven.SchedulerStore.
type Scheduler struct {
	config  domain.SchedulerConfig
	store   driven.SchedulerStore
	backups driving.BackupService
	// settings, when set, is re-read so saved changes apply while running.
	settings driving.SettingsService

	schedule cron.Schedule
	interval time.Duration
	now      func() time.Time

	mu       sync.Mutex
	running  bool
	inFlight map[string]bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(
	config domain.SchedulerConfig,
	store driven.SchedulerStore,
	backups driving.BackupService,
) *Scheduler {
	return &Scheduler{
		config:   config,
		store:    store,
		backups:  backups,
		interval: time.Minute,
		now:      time.Now,
		inFlight: make(map[string]bool),
	}
}

// FollowSettings makes the scheduler take its configuration from settings
// on Start and before every check.
func (s *Scheduler) FollowSettings(settings driving.SettingsService) {
	s.settings = settings
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if s.settings != nil {
		current, err := s.settings.Get()
		if err != nil {
			return fmt.Errorf("reading settings: %w", err)
		}
		s.mu.Lock()
		s.config = current.Scheduler
		s.mu.Unlock()
	}
	schedule, err := cron.ParseStandard(s.config.BackupSchedule)
	if err != nil {
		return fmt.Errorf("%w: schedule %q: %w", domain.ErrInvalidInput, s.config.BackupSchedule, err)
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.schedule = schedule
	s.stopCh = make(chan struct{})
	s.mu.Unlock()

	if err := s.ensureTask(ctx, domain.TaskIDProjectBackup, "Project Backup"); err != nil {
		logger.Warn("scheduler: failed to initialise tasks: %v", err)
	}

	return s.run(ctx)
}

// Stop gracefully shuts down the scheduler and waits for running tasks.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// ensureTask creates or updates a task in the store.
func (s *Scheduler) ensureTask(ctx context.Context, id, name string) error {
	task, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}

	now := s.now()
	if task == nil {
		task = &domain.ScheduledTask{
			ID:       id,
			Name:     name,
			Schedule: s.config.BackupSchedule,
			NextRun:  s.schedule.Next(now),
		}
	} else if task.Schedule != s.config.BackupSchedule || task.NextRun.IsZero() {
		task.Schedule = s.config.BackupSchedule
		task.NextRun = s.schedule.Next(now)
	}
	task.Enabled = s.config.Enabled

	return s.store.SaveTask(ctx, task)
}

// run is the main scheduler loop.
func (s *Scheduler) run(ctx context.Context) error {
	s.checkAndRunDueTasks(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.wg.Wait()
			return ctx.Err()
		case <-s.stopCh:
			return nil
		case <-ticker.C:
			s.checkAndRunDueTasks(ctx)
		}
	}
}

// refreshConfig applies a changed schedule or enabled flag from settings.
// Unreadable or invalid settings keep the current configuration.
func (s *Scheduler) refreshConfig(ctx context.Context) {
	if s.settings == nil {
		return
	}
	current, err := s.settings.Get()
	if err != nil {
		logger.Warn("scheduler: failed to read settings: %v", err)
		return
	}
	next := current.Scheduler

	s.mu.Lock()
	unchanged := next == s.config
	s.mu.Unlock()
	if unchanged {
		return
	}

	schedule, err := cron.ParseStandard(next.BackupSchedule)
	if err != nil {
		logger.Warn("scheduler: ignoring schedule %q: %v", next.BackupSchedule, err)
		return
	}
	s.mu.Lock()
	s.config = next
	s.schedule = schedule
	s.mu.Unlock()

	logger.WithFields(logger.Fields{
		"schedule": next.BackupSchedule,
		"enabled":  next.Enabled,
	}).Info("scheduler: configuration changed")
	if err := s.ensureTask(ctx, domain.TaskIDProjectBackup, "Project Backup"); err != nil {
		logger.Warn("scheduler: failed to update task: %v", err)
	}
}

// checkAndRunDueTasks finds and executes tasks that are due.
func (s *Scheduler) checkAndRunDueTasks(ctx context.Context) {
	s.refreshConfig(ctx)

	tasks, err := s.store.ListTasks(ctx)
	if err != nil {
		logger.Warn("scheduler: failed to list tasks: %v", err)
		return
	}

	now := s.now()
	for i := range tasks {
		task := tasks[i]
		if !task.Enabled {
			continue
		}
		if task.NextRun.IsZero() || !task.NextRun.After(now) {
			s.runTask(ctx, &task)
		}
	}
}

// runTask executes a single task unless it is still running from an earlier tick.
func (s *Scheduler) runTask(ctx context.Context, task *domain.ScheduledTask) {
	s.mu.Lock()
	if s.inFlight[task.ID] {
		s.mu.Unlock()
		logger.Debug("scheduler: %s still running, skipping", task.ID)
		return
	}
	s.inFlight[task.ID] = true
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inFlight, task.ID)
			s.mu.Unlock()
		}()

		run := &domain.ScheduledRun{
			TaskID:    task.ID,
			StartedAt: s.now(),
		}

		switch task.ID {
		case domain.TaskIDProjectBackup:
			s.runProjectBackup(ctx, run)
		default:
			logger.Warn("scheduler: unknown task ID: %s", task.ID)
			return
		}

		run.EndedAt = s.now()
		task.LastError = run.Error
		if run.OK() {
			task.LastSuccess = run.EndedAt
		}
		task.LastRun = run.StartedAt
		s.mu.Lock()
		// Settings may have changed while the run was in flight.
		task.Schedule = s.config.BackupSchedule
		task.Enabled = s.config.Enabled
		if s.schedule != nil {
			task.NextRun = s.schedule.Next(run.EndedAt)
		}
		s.mu.Unlock()

		// Shutdown may have cancelled ctx; state must still be written.
		saveCtx := context.WithoutCancel(ctx)
		if err := s.store.SaveTask(saveCtx, task); err != nil {
			logger.Warn("scheduler: failed to save task %s: %v", task.ID, err)
		}
		if err := s.store.RecordRun(saveCtx, run); err != nil {
			logger.Warn("scheduler: failed to record run of %s: %v", task.ID, err)
		}
		if err := s.store.PruneRuns(saveCtx, runRetention); err != nil {
			logger.Warn("scheduler: failed to prune runs: %v", err)
		}
	}()
}

// runProjectBackup backs up all projects and fills in run.
func (s *Scheduler) runProjectBackup(ctx context.Context, run *domain.ScheduledRun) {
	if s.backups == nil {
		return
	}

	results, err := s.backups.BackupAll(ctx)
	var errs []error
	for _, r := range results {
		switch {
		case r.Err != nil:
			run.Failed = append(run.Failed, r.Project.Name)
			errs = append(errs, fmt.Errorf("%s: %w", r.Project.Name, r.Err))
			continue
		case r.Result != nil && !r.Result.OK():
			run.Failed = append(run.Failed, r.Project.Name)
			errs = append(errs, fmt.Errorf("%s: %d entries failed to copy", r.Project.Name, len(r.Result.Failures)))
		}
		run.BackedUp++
	}
	if err != nil {
		errs = append(errs, err)
	}
	if joined := errors.Join(errs...); joined != nil {
		run.Error = joined.Error()
	}
	logger.WithFields(logger.Fields{
		"backed_up": run.BackedUp,
		"failed":    len(run.Failed),
	}).Info("scheduler: backup run finished")
}

// Status returns the backup task and its latest runs.
func (s *Scheduler) Status(ctx context.Context, limit int) (*driving.ScheduleStatus, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	task, err := s.store.GetTask(ctx, domain.TaskIDProjectBackup)
	if err != nil {
		return nil, fmt.Errorf("reading task: %w", err)
	}
	status := &driving.ScheduleStatus{Task: task}
	if task == nil {
		return status, nil
	}
	status.Recent, err = s.store.RecentRuns(ctx, task.ID, limit)
	if err != nil {
		return nil, fmt.Errorf("reading runs: %w", err)
	}
	return status, nil
}
