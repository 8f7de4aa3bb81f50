package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// statusRuns is the number of recent runs shown by schedule status.
const statusRuns = 5

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run scheduled backups",
}

var scheduleRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the backup scheduler in the foreground until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runScheduleRun,
}

var scheduleStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the next scheduled backup and recent runs",
	Args:  cobra.NoArgs,
	RunE:  runScheduleStatus,
}

func init() {
	scheduleCmd.AddCommand(scheduleRunCmd)
	scheduleCmd.AddCommand(scheduleStatusCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func runScheduleRun(cmd *cobra.Command, _ []string) error {
	if scheduler == nil || settingsService == nil {
		return errNotConfigured("scheduler")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if !settings.Scheduler.Enabled {
		cmd.Println("Scheduled backups are disabled. Enable them with 'codekeeper settings schedule <cron> --enable'.")
		return nil
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Scheduler running (%s). Press Ctrl+C to stop.\n", settings.Scheduler.BackupSchedule)
	err = scheduler.Start(ctx)
	if errors.Is(err, context.Canceled) {
		cmd.Println("Scheduler stopped.")
		return nil
	}
	return err
}

func runScheduleStatus(cmd *cobra.Command, _ []string) error {
	if scheduler == nil {
		return errNotConfigured("scheduler")
	}

	status, err := scheduler.Status(cmd.Context(), statusRuns)
	if err != nil {
		return fmt.Errorf("failed to read scheduler state: %w", err)
	}
	task := status.Task
	if task == nil {
		cmd.Println("The scheduler has not run yet.")
		return nil
	}

	cmd.Printf("Schedule:     %s (enabled: %s)\n", task.Schedule, yesNo(task.Enabled))
	cmd.Printf("Next run:     %s\n", whenOrNever(task.NextRun))
	cmd.Printf("Last run:     %s\n", whenOrNever(task.LastRun))
	cmd.Printf("Last success: %s\n", whenOrNever(task.LastSuccess))
	if task.LastError != "" {
		cmd.Printf("Last error:   %s\n", task.LastError)
	}

	if len(status.Recent) == 0 {
		return nil
	}
	cmd.Println()
	cmd.Println("Recent runs:")
	for _, run := range status.Recent {
		outcome := "ok"
		if !run.OK() {
			outcome = "failed"
			if len(run.Failed) > 0 {
				outcome += ": " + strings.Join(run.Failed, ", ")
			}
		}
		cmd.Printf("  %s  %d backed up in %s  %s\n",
			run.StartedAt.Local().Format("2006-01-02 15:04"),
			run.BackedUp, run.Duration().Round(time.Second), outcome)
	}
	return nil
}

// whenOrNever renders t relative to now, or "never" for the zero time.
func whenOrNever(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
