package cli

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// Flag values for backup and deploy.
var (
	backupAll bool
	deployYes bool
)

var backupCmd = &cobra.Command{
	Use:   "backup [id|name]",
	Short: "Create a timestamped backup of a project",
	Long: `Copy a project's source tree into a new <name>_<timestamp> directory
under its backup directory. Excluded names are skipped. Files that cannot be
copied are listed at the end; everything else is still backed up.`,
	Example: `  codekeeper backup webapp
  codekeeper backup --all`,
	RunE: runBackup,
}

var backupsCmd = &cobra.Command{
	Use:   "backups [id|name]",
	Short: "List existing backups of a project, newest first",
	Args:  cobra.ExactArgs(1),
	RunE:  runBackups,
}

var deployCmd = &cobra.Command{
	Use:   "deploy [id|name]",
	Short: "Copy a project into its runtime directory",
	Long: `Copy a project's source tree into its runtime directory. Existing
files are overwritten; files that only exist in the runtime directory are
left alone. Asks for confirmation unless --yes is given.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeploy,
}

var validateCmd = &cobra.Command{
	Use:   "validate [path]",
	Short: "Check whether a path may be used as a source or target",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	backupCmd.Flags().BoolVarP(&backupAll, "all", "a", false, "Back up every project")
	deployCmd.Flags().BoolVarP(&deployYes, "yes", "y", false, "Deploy without asking")

	rootCmd.AddCommand(backupCmd)
	rootCmd.AddCommand(backupsCmd)
	rootCmd.AddCommand(deployCmd)
	rootCmd.AddCommand(validateCmd)
}

func runBackup(cmd *cobra.Command, args []string) error {
	if backupService == nil || projectService == nil {
		return errNotConfigured("backup")
	}

	switch {
	case backupAll && len(args) > 0:
		return fmt.Errorf("%w: give a project or --all, not both", domain.ErrInvalidInput)
	case backupAll:
		return runBackupAll(cmd)
	case len(args) != 1:
		return fmt.Errorf("%w: a project id or name is required", domain.ErrInvalidInput)
	}

	p, err := projectService.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}

	result, err := backupService.Backup(cmd.Context(), p.ID, progressPrinter(cmd, "Backing up "+p.Name))
	if err != nil {
		cmd.Println()
		return fmt.Errorf("backup failed: %w", err)
	}
	printResult(cmd, "Backed up to", result)
	return nil
}

func runBackupAll(cmd *cobra.Command) error {
	results, err := backupService.BackupAll(cmd.Context())
	if len(results) == 0 && err == nil {
		cmd.Println("No projects configured.")
		return nil
	}

	failed := 0
	for _, r := range results {
		switch {
		case r.Err != nil:
			failed++
			cmd.Printf("%-20s FAILED  %v\n", r.Project.Name, r.Err)
		case !r.Result.OK():
			cmd.Printf("%-20s PARTIAL %d failures, %s\n", r.Project.Name, len(r.Result.Failures), r.Result.Destination)
		default:
			cmd.Printf("%-20s OK      %s (%s)\n", r.Project.Name, r.Result.Destination,
				humanize.Bytes(uint64(r.Result.BytesCopied)))
		}
	}

	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d backups failed", failed, len(results))
	}
	return nil
}

func runBackups(cmd *cobra.Command, args []string) error {
	if backupService == nil || projectService == nil {
		return errNotConfigured("backup")
	}

	p, err := projectService.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}

	entries, err := backupService.ListBackups(cmd.Context(), p.ID)
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(entries) == 0 {
		cmd.Printf("No backups of %s in %s\n", p.Name, p.BackupPath)
		return nil
	}

	cmd.Printf("Backups of %s (%d):\n", p.Name, len(entries))
	for _, e := range entries {
		cmd.Printf("  %s  %s\n", e.Name, humanize.Time(e.CreatedAt))
	}
	return nil
}

func runDeploy(cmd *cobra.Command, args []string) error {
	if backupService == nil || projectService == nil {
		return errNotConfigured("backup")
	}

	p, err := projectService.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}
	if !p.HasRuntime() {
		return fmt.Errorf("project %q: %w", p.Name, domain.ErrNoRuntimePath)
	}

	confirmed := deployYes
	if !confirmed {
		confirmed, err = confirm(cmd, fmt.Sprintf("Deploy %s to %s? Existing files will be overwritten.", p.Name, p.RuntimePath))
		if err != nil {
			return err
		}
	}
	if !confirmed {
		cmd.Println("Deploy cancelled.")
		return nil
	}

	result, err := backupService.Deploy(cmd.Context(), p.ID, true, progressPrinter(cmd, "Deploying "+p.Name))
	if err != nil {
		cmd.Println()
		return fmt.Errorf("deploy failed: %w", err)
	}
	printResult(cmd, "Deployed to", result)
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	if pathValidator == nil {
		return errNotConfigured("path validation")
	}

	abs, err := pathValidator.Validate(args[0])
	if err != nil {
		var rejected *domain.PathRejectedError
		if errors.As(err, &rejected) {
			cmd.Printf("Rejected: %s\n", rejected.Path)
			cmd.Printf("Reason:   %s\n", rejected.Reason)
			if rejected.Entry != "" {
				cmd.Printf("Matches:  %s\n", rejected.Entry)
			}
		}
		return err
	}

	cmd.Printf("OK: %s\n", abs)
	return nil
}
