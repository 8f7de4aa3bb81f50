package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

func TestProjectAdd(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeCommand(t, "project", "add", "webapp",
		"--source", env.Source, "--backup", env.Backup, "-e", "*.log", "--exclude", " dist ")

	require.NoError(t, err)
	assert.Contains(t, out, "Added project webapp")

	p, err := env.Projects.GetByName(context.Background(), "webapp")
	require.NoError(t, err)
	assert.Equal(t, env.Source, p.SourcePath)
	assert.ElementsMatch(t, []string{"*.log", "dist"}, p.ExcludePatterns)
	assert.False(t, p.HasRuntime())
}

func TestProjectAdd_RequiresFlags(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "project", "add", "webapp")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag")
}

func TestProjectAdd_Duplicate(t *testing.T) {
	env := setupTestServices(t)
	env.addProject(t, false)

	_, err := executeCommand(t, "project", "add", "webapp", "--source", env.Source, "--backup", env.Backup)

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestProjectAdd_RejectsNestedBackup(t *testing.T) {
	env := setupTestServices(t)

	_, err := executeCommand(t, "project", "add", "webapp",
		"--source", env.Source, "--backup", filepath.Join(env.Source, "backups"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProjectList(t *testing.T) {
	env := setupTestServices(t)

	out, err := executeCommand(t, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No projects configured")

	env.addProject(t, true)
	out, err = executeCommand(t, "projects", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "webapp")
	assert.Contains(t, out, env.Runtime)
	assert.Contains(t, out, "never")
}

func TestProjectShow(t *testing.T) {
	env := setupTestServices(t)
	p := env.addProject(t, false)

	for _, ref := range []string{"webapp", p.ID} {
		out, err := executeCommand(t, "project", "show", ref)

		require.NoError(t, err)
		assert.Contains(t, out, "Name:        webapp")
		assert.Contains(t, out, p.ID)
		assert.Contains(t, out, "Runtime:     (none)")
		assert.Contains(t, out, "node_modules")
	}
}

func TestProjectShow_NotFound(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "project", "show", "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRemove(t *testing.T) {
	env := setupTestServices(t)
	env.addProject(t, false)

	_, err := executeCommand(t, "project", "remove", "webapp")
	assert.ErrorIs(t, err, errNeedsYes)

	out, err := executeWithInput(t, "n\n", "project", "remove", "webapp")
	require.NoError(t, err)
	assert.Contains(t, out, "Cancelled")

	out, err = executeWithInput(t, "y\n", "project", "remove", "webapp")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed project webapp")

	_, err = env.Projects.GetByName(context.Background(), "webapp")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProjectRemove_Yes(t *testing.T) {
	env := setupTestServices(t)
	env.addProject(t, false)

	out, err := executeCommand(t, "project", "remove", "webapp", "--yes")

	require.NoError(t, err)
	assert.Contains(t, out, "Removed project webapp")
}

func TestProjectUpdate(t *testing.T) {
	env := setupTestServices(t)
	p := env.addProject(t, false)

	out, err := executeCommand(t, "project", "update", "webapp", "--name", "site", "--runtime", env.Runtime)

	require.NoError(t, err)
	assert.Contains(t, out, "Updated project site")
	updated, err := env.Projects.Get(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "site", updated.Name)
	assert.Equal(t, env.Runtime, updated.RuntimePath)
	assert.Equal(t, env.Source, updated.SourcePath)
}

func TestProjectUpdate_NothingToDo(t *testing.T) {
	env := setupTestServices(t)
	env.addProject(t, false)

	_, err := executeCommand(t, "project", "update", "webapp")

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProjectExportImport(t *testing.T) {
	env := setupTestServices(t)
	env.addProject(t, true)
	file := filepath.Join(t.TempDir(), "projects.yaml")

	out, err := executeCommand(t, "project", "export", file)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 projects")

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	var doc projectFile
	require.NoError(t, yaml.Unmarshal(data, &doc))
	require.Len(t, doc.Projects, 1)
	assert.Equal(t, "webapp", doc.Projects[0].Name)
	assert.Equal(t, env.Runtime, doc.Projects[0].Runtime)

	out, err = executeCommand(t, "project", "import", file)
	require.NoError(t, err)
	assert.Contains(t, out, "skipped webapp")
	assert.Contains(t, out, "Imported 0 of 1")
}

func TestProjectExport_Stdout(t *testing.T) {
	env := setupTestServices(t)
	env.addProject(t, false)

	out, err := executeCommand(t, "project", "export")

	require.NoError(t, err)
	assert.Contains(t, out, "projects:")
	assert.Contains(t, out, "name: webapp")
}

func TestProjectImport_ReportsFailures(t *testing.T) {
	env := setupTestServices(t)
	doc := projectFile{Projects: []projectEntry{
		{Name: "webapp", Source: env.Source, Backup: env.Backup},
		{Name: "broken", Source: env.Source},
	}}
	data, err := yaml.Marshal(&doc)
	require.NoError(t, err)
	file := filepath.Join(t.TempDir(), "in.yaml")
	require.NoError(t, os.WriteFile(file, data, 0o600))

	out, err := executeCommand(t, "project", "import", file)

	require.Error(t, err)
	assert.Contains(t, out, "added   webapp")
	assert.Contains(t, out, "failed  broken")
	assert.Contains(t, out, "Imported 1 of 2")
}

func TestProjectImport_BadFile(t *testing.T) {
	setupTestServices(t)

	_, err := executeCommand(t, "project", "import", filepath.Join(t.TempDir(), "missing.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading")
}

func TestCleanPatterns(t *testing.T) {
	assert.Equal(t, []string{"a", "*.log"}, cleanPatterns([]string{" a ", "", "*.log", "  "}))
	assert.Empty(t, cleanPatterns(nil))
}
