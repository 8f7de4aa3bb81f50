package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

func TestSettingsShow(t *testing.T) {
	setupTestServices(t)

	for _, args := range [][]string{{"settings"}, {"settings", "show"}} {
		out, err := executeCommand(t, args...)

		require.NoError(t, err)
		assert.Contains(t, out, "Current Settings")
		assert.Contains(t, out, "node_modules")
		assert.Contains(t, out, "Minimum depth:    2")
		assert.Contains(t, out, "Schedule: @daily")
		assert.Contains(t, out, "Enabled:  no")
		assert.Contains(t, out, "Debounce:            500ms")
	}
}

func TestSettingsExcludes(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeCommand(t, "settings", "excludes", ".git", "*.pyc")
	require.NoError(t, err)
	assert.Contains(t, out, "Default excludes: ")

	settings, err := env.Settings.Get()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".git", "*.pyc"}, settings.Backup.DefaultExcludes)

	out, err = executeCommand(t, "settings", "excludes")
	require.NoError(t, err)
	assert.Contains(t, out, "*.pyc")

	_, err = executeCommand(t, "settings", "excludes", "--reset")
	require.NoError(t, err)
	settings, err = env.Settings.Get()
	require.NoError(t, err)
	assert.ElementsMatch(t, domain.DefaultExcludePatterns, settings.Backup.DefaultExcludes)
}

func TestSettingsExcludes_InvalidPattern(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "settings", "excludes", "[")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to set excludes")
}

func TestSettingsDepth(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeCommand(t, "settings", "depth", "3")
	require.NoError(t, err)
	assert.Contains(t, out, "Minimum backup depth set to 3")

	settings, err := env.Settings.Get()
	require.NoError(t, err)
	assert.Equal(t, 3, settings.Backup.MinDepth)

	_, err = executeCommand(t, "settings", "depth", "deep")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = executeCommand(t, "settings", "depth", "0")
	assert.Error(t, err)
}

func TestSettingsSchedule(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeCommand(t, "settings", "schedule", " 0 3 * * * ", "--enable")
	require.NoError(t, err)
	assert.Contains(t, out, `"0 3 * * *" (enabled: yes)`)

	settings, err := env.Settings.Get()
	require.NoError(t, err)
	assert.True(t, settings.Scheduler.Enabled)
	assert.Equal(t, "0 3 * * *", settings.Scheduler.BackupSchedule)

	out, err = executeCommand(t, "settings", "schedule", "@hourly")
	require.NoError(t, err)
	assert.Contains(t, out, "enabled: yes")

	out, err = executeCommand(t, "settings", "schedule", "@hourly", "--disable")
	require.NoError(t, err)
	assert.Contains(t, out, "enabled: no")
}

func TestSettingsSchedule_Rejects(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "settings", "schedule", "@daily", "--enable", "--disable")
	assert.Error(t, err)

	_, err = executeCommand(t, "settings", "schedule", "every tuesday")
	assert.Error(t, err)
}

func TestJoinOrNone(t *testing.T) {
	assert.Equal(t, "(none)", joinOrNone(nil))
	assert.Equal(t, "a, b", joinOrNone([]string{"a", "b"}))
}

func TestYesNo(t *testing.T) {
	assert.Equal(t, "yes", yesNo(true))
	assert.Equal(t, "no", yesNo(false))
}
