package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// Flag values for settings subcommands.
var (
	excludesReset   bool
	scheduleEnable  bool
	scheduleDisable bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change default exclusion patterns, the minimum backup
depth, the backup schedule and watch behaviour.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsExcludesCmd = &cobra.Command{
	Use:   "excludes [pattern...]",
	Short: "Set the default exclusion patterns",
	Long: `Replace the exclusion patterns applied to every project.
Without arguments the current patterns are printed.`,
	Example: `  codekeeper settings excludes .git node_modules "*.pyc"
  codekeeper settings excludes --reset`,
	RunE: runSettingsExcludes,
}

var settingsDepthCmd = &cobra.Command{
	Use:   "depth [n]",
	Short: "Set the minimum depth of backup directories",
	Long: `Backup directories must be at least n levels below the filesystem
root, so a typo cannot scatter backups at the top of a drive.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsDepth,
}

var settingsScheduleCmd = &cobra.Command{
	Use:   "schedule [cron]",
	Short: "Configure scheduled backups of all projects",
	Long: `Set the cron expression for scheduled backups. Standard five-field
expressions and descriptors such as @daily or @every 6h are accepted.
Scheduled backups run while 'codekeeper schedule run' or the TUI is open.`,
	Example: `  codekeeper settings schedule "0 3 * * *" --enable
  codekeeper settings schedule @daily --disable`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsSchedule,
}

func init() {
	settingsExcludesCmd.Flags().BoolVar(&excludesReset, "reset", false, "Restore the built-in patterns")
	settingsScheduleCmd.Flags().BoolVar(&scheduleEnable, "enable", false, "Turn scheduled backups on")
	settingsScheduleCmd.Flags().BoolVar(&scheduleDisable, "disable", false, "Turn scheduled backups off")
	settingsScheduleCmd.MarkFlagsMutuallyExclusive("enable", "disable")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsExcludesCmd)
	settingsCmd.AddCommand(settingsDepthCmd)
	settingsCmd.AddCommand(settingsScheduleCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Backup]")
	cmd.Printf("  Default excludes: %s\n", joinOrNone(settings.Backup.DefaultExcludes))
	cmd.Printf("  Minimum depth:    %d\n", settings.Backup.MinDepth)
	cmd.Println()

	cmd.Println("[Scheduler]")
	cmd.Printf("  Enabled:  %s\n", yesNo(settings.Scheduler.Enabled))
	cmd.Printf("  Schedule: %s\n", settings.Scheduler.BackupSchedule)
	cmd.Println()

	cmd.Println("[Watch]")
	cmd.Printf("  Debounce:            %s\n", settings.Watch.Debounce)
	cmd.Printf("  Max deploys/minute:  %d\n", settings.Watch.MaxDeploysPerMinute)

	return nil
}

func runSettingsExcludes(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	switch {
	case excludesReset:
		if err := settingsService.SetDefaultExcludes(settingsService.GetDefaults().Backup.DefaultExcludes); err != nil {
			return fmt.Errorf("failed to reset excludes: %w", err)
		}
	case len(args) > 0:
		if err := settingsService.SetDefaultExcludes(args); err != nil {
			return fmt.Errorf("failed to set excludes: %w", err)
		}
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	cmd.Printf("Default excludes: %s\n", joinOrNone(settings.Backup.DefaultExcludes))
	return nil
}

func runSettingsDepth(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	depth, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return fmt.Errorf("%w: depth must be a number: %q", domain.ErrInvalidInput, args[0])
	}
	if err := settingsService.SetMinBackupDepth(depth); err != nil {
		return fmt.Errorf("failed to set depth: %w", err)
	}
	cmd.Printf("Minimum backup depth set to %d\n", depth)
	return nil
}

func runSettingsSchedule(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errNotConfigured("settings")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	expr := strings.TrimSpace(args[0])
	enabled := settings.Scheduler.Enabled
	if scheduleEnable {
		enabled = true
	}
	if scheduleDisable {
		enabled = false
	}

	if err := settingsService.SetSchedule(expr, enabled); err != nil {
		return fmt.Errorf("failed to set schedule: %w", err)
	}
	cmd.Printf("Backup schedule set to %q (enabled: %s)\n", expr, yesNo(enabled))
	return nil
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "(none)"
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
