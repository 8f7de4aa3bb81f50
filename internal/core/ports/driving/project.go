package driving

import (
	"context"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// ProjectService manages project records.
type ProjectService interface {
	// Add creates a new project. An empty ID is assigned.
	// Paths are validated before anything is stored.
	Add(ctx context.Context, project domain.Project) (*domain.Project, error)

	// Get retrieves a project by ID.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// GetByName retrieves a project by its unique name.
	GetByName(ctx context.Context, name string) (*domain.Project, error)

	// Resolve retrieves a project by ID, falling back to its name.
	Resolve(ctx context.Context, idOrName string) (*domain.Project, error)

	// List returns all projects ordered by name.
	List(ctx context.Context) ([]domain.Project, error)

	// Update modifies an existing project.
	Update(ctx context.Context, project domain.Project) error

	// Remove deletes a project record. Backups on disk are kept.
	Remove(ctx context.Context, id string) error
}
