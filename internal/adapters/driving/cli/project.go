package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// Flag values for project subcommands.
var (
	projectSource  string
	projectBackup  string
	projectRuntime string
	projectName    string
	projectExclude []string
	projectYes     bool
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"projects"},
	Short:   "Manage tracked projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a project",
	Long: `Add a project to track. Source and backup directories are required;
a runtime directory enables the deploy command.

Exclusion patterns are matched against entry names, either exactly or as
globs, and are merged with the default patterns from settings.`,
	Example: `  codekeeper project add webapp --source ~/code/webapp --backup ~/Backups/webapp
  codekeeper project add site --source ~/code/site --backup ~/Backups/site \
      --runtime /var/www/site --exclude "*.log" --exclude dist`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectAdd,
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [id|name]",
	Short: "Show project details",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectShow,
}

var projectRemoveCmd = &cobra.Command{
	Use:   "remove [id|name]",
	Short: "Remove a project (backups on disk are kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectRemove,
}

var projectUpdateCmd = &cobra.Command{
	Use:   "update [id|name]",
	Short: "Change a project's name, directories or patterns",
	Long: `Change a project. Only the flags given are applied. Pass --runtime ""
to clear the runtime directory and --exclude "" to clear the patterns.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectUpdate,
}

var projectExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export all projects as YAML",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectExport,
}

var projectImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import projects from a YAML export",
	Long:  `Import projects from a file written by 'project export'. Projects whose name already exists are skipped.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectImport,
}

func init() {
	for _, c := range []*cobra.Command{projectAddCmd, projectUpdateCmd} {
		c.Flags().StringVarP(&projectSource, "source", "s", "", "Source directory to copy")
		c.Flags().StringVarP(&projectBackup, "backup", "b", "", "Directory backups are created in")
		c.Flags().StringVarP(&projectRuntime, "runtime", "r", "", "Runtime deployment directory")
		c.Flags().StringSliceVarP(&projectExclude, "exclude", "e", nil, "Exclusion pattern (repeatable)")
	}
	_ = projectAddCmd.MarkFlagRequired("source")
	_ = projectAddCmd.MarkFlagRequired("backup")
	projectUpdateCmd.Flags().StringVar(&projectName, "name", "", "New project name")
	projectRemoveCmd.Flags().BoolVarP(&projectYes, "yes", "y", false, "Do not ask for confirmation")

	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectRemoveCmd)
	projectCmd.AddCommand(projectUpdateCmd)
	projectCmd.AddCommand(projectExportCmd)
	projectCmd.AddCommand(projectImportCmd)
	rootCmd.AddCommand(projectCmd)
}

func runProjectAdd(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errNotConfigured("project")
	}

	added, err := projectService.Add(cmd.Context(), domain.Project{
		Name:            args[0],
		SourcePath:      projectSource,
		BackupPath:      projectBackup,
		RuntimePath:     projectRuntime,
		ExcludePatterns: cleanPatterns(projectExclude),
	})
	if err != nil {
		return fmt.Errorf("failed to add project: %w", err)
	}

	cmd.Printf("Added project %s (%s)\n", added.Name, added.ID)
	return nil
}

func runProjectList(cmd *cobra.Command, _ []string) error {
	if projectService == nil {
		return errNotConfigured("project")
	}

	projects, err := projectService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}
	if len(projects) == 0 {
		cmd.Println("No projects configured. Add one with 'codekeeper project add'.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tSOURCE\tBACKUP\tRUNTIME\tLAST BACKUP")
	for i := range projects {
		p := &projects[i]
		runtimeDir := p.RuntimePath
		if runtimeDir == "" {
			runtimeDir = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Name, p.SourcePath, p.BackupPath, runtimeDir, lastBackup(p))
	}
	return w.Flush()
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errNotConfigured("project")
	}

	p, err := projectService.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}

	cmd.Printf("Name:        %s\n", p.Name)
	cmd.Printf("ID:          %s\n", p.ID)
	cmd.Printf("Source:      %s\n", p.SourcePath)
	cmd.Printf("Backups in:  %s\n", p.BackupPath)
	if p.HasRuntime() {
		cmd.Printf("Runtime:     %s\n", p.RuntimePath)
	} else {
		cmd.Println("Runtime:     (none)")
	}
	if len(p.ExcludePatterns) > 0 {
		cmd.Printf("Excludes:    %s\n", strings.Join(p.ExcludePatterns, ", "))
	}
	cmd.Printf("Last backup: %s\n", lastBackup(p))

	if settingsService != nil {
		if settings, err := settingsService.Get(); err == nil && len(settings.Backup.DefaultExcludes) > 0 {
			cmd.Printf("Defaults:    %s\n", strings.Join(settings.Backup.DefaultExcludes, ", "))
		}
	}
	return nil
}

func runProjectRemove(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errNotConfigured("project")
	}

	p, err := projectService.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}

	if !projectYes {
		ok, err := confirm(cmd, fmt.Sprintf("Remove project %s? Backups on disk are kept.", p.Name))
		if err != nil {
			return err
		}
		if !ok {
			cmd.Println("Cancelled.")
			return nil
		}
	}

	if err := projectService.Remove(cmd.Context(), p.ID); err != nil {
		return fmt.Errorf("failed to remove project: %w", err)
	}
	cmd.Printf("Removed project %s\n", p.Name)
	return nil
}

func runProjectUpdate(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errNotConfigured("project")
	}

	p, err := projectService.Resolve(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("project %q: %w", args[0], err)
	}

	flags := cmd.Flags()
	if !flags.Changed("name") && !flags.Changed("source") && !flags.Changed("backup") &&
		!flags.Changed("runtime") && !flags.Changed("exclude") {
		return fmt.Errorf("nothing to update: %w", domain.ErrInvalidInput)
	}
	if flags.Changed("name") {
		p.Name = projectName
	}
	if flags.Changed("source") {
		p.SourcePath = projectSource
	}
	if flags.Changed("backup") {
		p.BackupPath = projectBackup
	}
	if flags.Changed("runtime") {
		p.RuntimePath = projectRuntime
	}
	if flags.Changed("exclude") {
		p.ExcludePatterns = cleanPatterns(projectExclude)
	}

	if err := projectService.Update(cmd.Context(), *p); err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}
	cmd.Printf("Updated project %s\n", p.Name)
	return nil
}

// ==================== Import / Export ====================

// projectFile is the YAML document written by export and read by import.
type projectFile struct {
	Projects []projectEntry `yaml:"projects"`
}

type projectEntry struct {
	Name    string   `yaml:"name"`
	Source  string   `yaml:"source"`
	Backup  string   `yaml:"backup"`
	Runtime string   `yaml:"runtime,omitempty"`
	Exclude []string `yaml:"exclude,omitempty"`
}

func runProjectExport(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errNotConfigured("project")
	}

	projects, err := projectService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	doc := projectFile{Projects: make([]projectEntry, 0, len(projects))}
	for _, p := range projects {
		doc.Projects = append(doc.Projects, projectEntry{
			Name:    p.Name,
			Source:  p.SourcePath,
			Backup:  p.BackupPath,
			Runtime: p.RuntimePath,
			Exclude: p.ExcludePatterns,
		})
	}

	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("encoding projects: %w", err)
	}

	if len(args) == 0 {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", args[0], err)
	}
	cmd.Printf("Exported %d projects to %s\n", len(doc.Projects), args[0])
	return nil
}

func runProjectImport(cmd *cobra.Command, args []string) error {
	if projectService == nil {
		return errNotConfigured("project")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}
	var doc projectFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing %s: %w", args[0], err)
	}

	imported, failed := importProjects(cmd.Context(), cmd, doc.Projects)
	cmd.Printf("Imported %d of %d projects\n", imported, len(doc.Projects))
	if failed > 0 {
		return fmt.Errorf("%d projects could not be imported", failed)
	}
	return nil
}

func importProjects(ctx context.Context, cmd *cobra.Command, entries []projectEntry) (imported, failed int) {
	for _, e := range entries {
		_, err := projectService.Add(ctx, domain.Project{
			Name:            e.Name,
			SourcePath:      e.Source,
			BackupPath:      e.Backup,
			RuntimePath:     e.Runtime,
			ExcludePatterns: e.Exclude,
		})
		switch {
		case err == nil:
			imported++
			cmd.Printf("  added   %s\n", e.Name)
		case errors.Is(err, domain.ErrAlreadyExists):
			cmd.Printf("  skipped %s: already exists\n", e.Name)
		default:
			failed++
			cmd.Printf("  failed  %s: %v\n", e.Name, err)
		}
	}
	return imported, failed
}

// cleanPatterns trims flag values and drops blanks.
func cleanPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
