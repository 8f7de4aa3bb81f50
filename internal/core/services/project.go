package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driven"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driving"
)

// Ensure ProjectService implements the interface.
var _ driving.ProjectService = (*ProjectService)(nil)

// ProjectService manages project records.
type ProjectService struct {
	store     driven.ProjectStore
	validator driving.PathValidator
	settings  driving.SettingsService
	fold      bool
}

// NewProjectService creates a new project service.
// settings may be nil, in which case defaults apply.
func NewProjectService(
	store driven.ProjectStore,
	validator driving.PathValidator,
	settings driving.SettingsService,
) *ProjectService {
	return &ProjectService{
		store:     store,
		validator: validator,
		settings:  settings,
		fold:      foldsCase(runtime.GOOS),
	}
}

// Add validates and stores a new project.
func (s *ProjectService) Add(ctx context.Context, project domain.Project) (*domain.Project, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	if err := s.normalise(&project); err != nil {
		return nil, err
	}

	existing, err := s.store.GetByName(ctx, project.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("project %q: %w", project.Name, domain.ErrAlreadyExists)
	}

	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if err := s.store.Save(ctx, project); err != nil {
		return nil, err
	}
	return &project, nil
}

// Get retrieves a project by ID.
func (s *ProjectService) Get(ctx context.Context, id string) (*domain.Project, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.Get(ctx, id)
}

// GetByName retrieves a project by its unique name.
func (s *ProjectService) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.GetByName(ctx, strings.TrimSpace(name))
}

// Resolve retrieves a project by ID, falling back to its name.
func (s *ProjectService) Resolve(ctx context.Context, idOrName string) (*domain.Project, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	project, err := s.store.Get(ctx, idOrName)
	if err == nil {
		return project, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	return s.store.GetByName(ctx, idOrName)
}

// List returns all projects ordered by name.
func (s *ProjectService) List(ctx context.Context) ([]domain.Project, error) {
	if s.store == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.store.List(ctx)
}

// Update validates and stores changes to an existing project.
func (s *ProjectService) Update(ctx context.Context, project domain.Project) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	current, err := s.store.Get(ctx, project.ID)
	if err != nil {
		return err
	}
	if err := s.normalise(&project); err != nil {
		return err
	}

	other, err := s.store.GetByName(ctx, project.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if other != nil && other.ID != project.ID {
		return fmt.Errorf("project %q: %w", project.Name, domain.ErrAlreadyExists)
	}

	project.CreatedAt = current.CreatedAt
	if project.LastBackupAt.IsZero() {
		project.LastBackupAt = current.LastBackupAt
	}
	return s.store.Save(ctx, project)
}

// Remove deletes a project record. Backups on disk are kept.
func (s *ProjectService) Remove(ctx context.Context, id string) error {
	if s.store == nil {
		return domain.ErrNotImplemented
	}
	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// normalise trims and validates the project in place. Paths are replaced
// with their absolute form.
func (s *ProjectService) normalise(p *domain.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: project name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.SourcePath) == "" {
		return fmt.Errorf("%w: source path is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(p.BackupPath) == "" {
		return fmt.Errorf("%w: backup path is required", domain.ErrInvalidInput)
	}

	source, err := s.validateDir("source", p.SourcePath)
	if err != nil {
		return err
	}
	backup, err := s.validateDir("backup", p.BackupPath)
	if err != nil {
		return err
	}
	if depth := minBackupDepth(s.settings); pathDepth(backup) < depth {
		return &domain.PathRejectedError{
			Path:   backup,
			Reason: fmt.Sprintf("backup path must be at least %d levels below the filesystem root", depth),
		}
	}
	if err := s.checkSeparate("source", source, "backup", backup); err != nil {
		return err
	}

	var runtimeDir string
	if p.HasRuntime() {
		runtimeDir, err = s.validateDir("runtime", p.RuntimePath)
		if err != nil {
			return err
		}
		if err := s.checkSeparate("source", source, "runtime", runtimeDir); err != nil {
			return err
		}
	}

	patterns := domain.NewExclusionSet(p.ExcludePatterns).Patterns()
	if err := domain.ValidatePatterns(patterns); err != nil {
		return err
	}

	p.SourcePath = source
	p.BackupPath = backup
	p.RuntimePath = runtimeDir
	p.ExcludePatterns = patterns
	return nil
}

// validateDir runs the path validator and refuses existing non-directories.
func (s *ProjectService) validateDir(label, path string) (string, error) {
	if s.validator == nil {
		return "", domain.ErrNotImplemented
	}
	abs, err := s.validator.Validate(path)
	if err != nil {
		return "", fmt.Errorf("%s path: %w", label, err)
	}
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		return "", fmt.Errorf("%w: %s path %s is not a directory", domain.ErrInvalidInput, label, abs)
	}
	return abs, nil
}

// checkSeparate ensures two directories neither coincide nor nest.
func (s *ProjectService) checkSeparate(aLabel, a, bLabel, b string) error {
	switch {
	case samePath(a, b, s.fold):
		return fmt.Errorf("%w: %s and %s paths must differ", domain.ErrInvalidInput, aLabel, bLabel)
	case isWithin(a, b, s.fold):
		return fmt.Errorf("%w: %s path is inside the %s path", domain.ErrInvalidInput, bLabel, aLabel)
	case isWithin(b, a, s.fold):
		return fmt.Errorf("%w: %s path is inside the %s path", domain.ErrInvalidInput, aLabel, bLabel)
	}
	return nil
}
