package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/codekeeper/internal/core/domain"
	"github.com/custodia-labs/codekeeper/internal/core/ports/driven"
)

// Ensure ProjectStore implements the interface.
var _ driven.ProjectStore = (*ProjectStore)(nil)

// ProjectStore is an in-memory implementation of driven.ProjectStore.
type ProjectStore struct {
	mu       sync.RWMutex
	projects map[string]domain.Project
	now      func() time.Time
}

// NewProjectStore creates a new in-memory project store.
func NewProjectStore() *ProjectStore {
	return &ProjectStore{
		projects: make(map[string]domain.Project),
		now:      time.Now,
	}
}

// Save stores or updates a project.
func (s *ProjectStore) Save(_ context.Context, project domain.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, p := range s.projects {
		if id != project.ID && p.Name == project.Name {
			return fmt.Errorf("project %q: %w", project.Name, domain.ErrAlreadyExists)
		}
	}

	now := s.now()
	if existing, ok := s.projects[project.ID]; ok {
		project.CreatedAt = existing.CreatedAt
	} else if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	s.projects[project.ID] = cloneProject(project)
	return nil
}

// Get retrieves a project by ID.
func (s *ProjectStore) Get(_ context.Context, id string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	project = cloneProject(project)
	return &project, nil
}

// GetByName retrieves a project by name.
func (s *ProjectStore) GetByName(_ context.Context, name string) (*domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, project := range s.projects {
		if project.Name == name {
			project = cloneProject(project)
			return &project, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Delete removes a project.
func (s *ProjectStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
	return nil
}

// List returns all projects ordered by name.
func (s *ProjectStore) List(_ context.Context) ([]domain.Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Project, 0, len(s.projects))
	for _, project := range s.projects {
		result = append(result, cloneProject(project))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Name < result[j].Name
	})
	return result, nil
}

// cloneProject copies the pattern slice so callers cannot mutate stored state.
func cloneProject(p domain.Project) domain.Project {
	if p.ExcludePatterns != nil {
		patterns := make([]string, len(p.ExcludePatterns))
		copy(patterns, p.ExcludePatterns)
		p.ExcludePatterns = patterns
	}
	return p
}
