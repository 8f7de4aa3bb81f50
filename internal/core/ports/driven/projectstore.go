package driven

import (
	"context"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
)

// ProjectStore persists project records.
type ProjectStore interface {
	// Save stores or updates a project.
	// Returns domain.ErrAlreadyExists if another project has the same name.
	Save(ctx context.Context, project domain.Project) error

	// Get retrieves a project by ID.
	Get(ctx context.Context, id string) (*domain.Project, error)

	// GetByName retrieves a project by its unique name.
	GetByName(ctx context.Context, name string) (*domain.Project, error)

	// Delete removes a project.
	Delete(ctx context.Context, id string) error

	// List returns all projects ordered by name.
	List(ctx context.Context) ([]domain.Project, error)
}
