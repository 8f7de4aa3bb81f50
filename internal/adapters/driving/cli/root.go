package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
	"github.com/custodia-labs/codekeeper/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// verbose enables debug logging for the whole process.
var verbose bool

// Services wired in by main.
var (
	projectService  driving.ProjectService
	backupService   driving.BackupService
	settingsService driving.SettingsService
	pathValidator   driving.PathValidator
	deployWatcher   driving.DeployWatcher
	scheduler       driving.Scheduler
)

// Services groups the core services the commands need.
type Services struct {
	Projects  driving.ProjectService
	Backups   driving.BackupService
	Settings  driving.SettingsService
	Validator driving.PathValidator
	Watcher   driving.DeployWatcher
	Scheduler driving.Scheduler
}

var rootCmd = &cobra.Command{
	Use:   "codekeeper",
	Short: "Back up and deploy local project trees",
	Long: `CodeKeeper copies a project's source tree into timestamped backup
folders and, on confirmation, into a runtime deployment folder.

Projects are stored locally. Run 'codekeeper tui' for the interactive
interface or use the subcommands below for scripting.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug output")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetServices wires the core services into the commands.
// A nil argument clears them.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	projectService = s.Projects
	backupService = s.Backups
	settingsService = s.Settings
	pathValidator = s.Validator
	deployWatcher = s.Watcher
	scheduler = s.Scheduler
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// errNotConfigured is returned when a command runs without its service.
func errNotConfigured(what string) error {
	return fmt.Errorf("%s service not configured: %w", what, domain.ErrNotImplemented)
}
