// Command codekeeper backs up project source trees into timestamped
// folders and deploys them to a runtime directory.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/codekeeper/internal/adapters/driven/config/file"
	"github.com/custodia-labs/codekeeper/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/codekeeper/internal/adapters/driven/watch"
	"github.com/custodia-labs/codekeeper/internal/adapters/driving/cli"
	"github.com/custodia-labs/codekeeper/internal/core/services"
	"github.com/custodia-labs/codekeeper/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	closeStore, err := wire()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	// cobra has already printed the error.
	err = cli.Execute()
	closeStore()
	if err != nil {
		os.Exit(1)
	}
}

// wire opens the stores and hands the services to the commands.
// The returned function closes the database.
func wire() (func(), error) {
	// A missing .env is normal.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("loading .env: %v", err)
	}
	if err := logger.SetFormat(os.Getenv(logger.FormatEnv)); err != nil {
		return nil, err
	}

	dir, err := file.DefaultDir()
	if err != nil {
		return nil, fmt.Errorf("resolving data directory: %w", err)
	}

	configStore, err := file.NewConfigStore(dir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}

	store, err := sqlite.NewStore(filepath.Join(dir, "data"))
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing database: %v", err)
		}
	}

	validator := services.NewDefaultPathValidator()
	engine := services.NewBackupEngine(validator)
	settingsService := services.NewSettingsService(configStore)
	projectService := services.NewProjectService(store.ProjectStore(), validator, settingsService)
	backupService := services.NewBackupService(store.ProjectStore(), engine, settingsService)

	settings, err := settingsService.Get()
	if err != nil {
		closeStore()
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	scheduler := services.NewScheduler(settings.Scheduler, store.SchedulerStore(), backupService)
	scheduler.FollowSettings(settingsService)
	sourceWatcher := watch.NewSourceWatcher(settings.Watch.Debounce, settings.Watch.MaxDeploysPerMinute)
	deployWatcher := services.NewDeployWatcher(store.ProjectStore(), backupService, settingsService, sourceWatcher)

	cli.SetVersion(version)
	cli.SetServices(&cli.Services{
		Projects:  projectService,
		Backups:   backupService,
		Settings:  settingsService,
		Validator: validator,
		Watcher:   deployWatcher,
		Scheduler: scheduler,
	})
	return closeStore, nil
}
