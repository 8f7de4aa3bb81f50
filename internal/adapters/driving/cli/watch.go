package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

var watchYes bool

var watchCmd = &cobra.Command{
	Use:   "watch [id|name]",
	Short: "Redeploy a project to its runtime directory on every change",
	Long: `Deploy a project once, then watch its source tree and redeploy after
each burst of changes. Excluded names are ignored. Because every redeploy
overwrites the runtime directory, --yes is required.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().BoolVarP(&watchYes, "yes", "y", false, "Confirm repeated deploys to the runtime directory")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if deployWatcher == nil || projectService == nil {
		return errNotConfigured("watch")
	}
	if !watchYes {
		return fmt.Errorf("%w: watch deploys without asking, pass --yes", domain.ErrNotConfirmed)
	}

	p, err := projectService.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s, deploying to %s. Press Ctrl+C to stop.\n", p.SourcePath, p.RuntimePath)
	err = deployWatcher.Run(ctx, p.ID, func(changed []string, result *domain.BackupResult, err error) {
		stamp := time.Now().Format("15:04:05")
		switch {
		case err != nil:
			cmd.Printf("[%s] deploy failed: %v\n", stamp, err)
		case len(changed) == 0:
			cmd.Printf("[%s] deployed %d files\n", stamp, result.FilesCopied)
		default:
			cmd.Printf("[%s] %d changes, deployed %d files", stamp, len(changed), result.FilesCopied)
			if !result.OK() {
				cmd.Printf(", %d failed", len(result.Failures))
			}
			cmd.Println()
		}
	})
	if err == nil || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
