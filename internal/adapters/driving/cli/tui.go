package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codekeeper/internal/adapters/driving/tui"
	"github.com/custodia-labs/codekeeper/internal/logger"
)

// runProgram runs the TUI until the user quits. Tests replace it.
var runProgram = func(app *tui.App) error {
	return app.Run()
}

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Browse projects, run backups and deploys with live progress, and edit
settings. Scheduled backups run in the background while the TUI is open
if they are enabled.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Select
  b / d    - Backup / deploy the open project
  Esc      - Back
  ?        - Help
  q        - Quit`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(projectService, backupService, settingsService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	stopScheduler := startBackgroundScheduler(ctx)
	defer stopScheduler()

	app.WithContext(ctx)
	if err := runProgram(app); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// startBackgroundScheduler runs the scheduler for the life of the TUI and
// returns a function that stops it. It starts even when scheduled backups
// are disabled so that enabling them in the settings view applies at once.
func startBackgroundScheduler(ctx context.Context) func() {
	if scheduler == nil {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()

	return func() {
		cancel()
		if err := scheduler.Stop(); err != nil {
			logger.Warn("scheduler stop error: %v", err)
		}
		<-done
	}
}
