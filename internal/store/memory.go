package store

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"podforge/internal/core"
)

// MemoryStore implements ProjectStore with an in-process map. It backs tests
// and the zero-configuration development path.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*core.Project
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]*core.Project),
	}
}

// clone deep-copies a project through JSON so callers never share state
// with the store.
func clone(project *core.Project) *core.Project {
	data, _ := json.Marshal(project)
	var copied core.Project
	_ = json.Unmarshal(data, &copied)
	return &copied
}

// CreateProject inserts a new project record.
func (m *MemoryStore) CreateProject(ctx context.Context, project *core.Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	m.projects[project.ID] = clone(project)
	return nil
}

// GetProject retrieves a project by id.
func (m *MemoryStore) GetProject(ctx context.Context, id string) (*core.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	project, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(project), nil
}

// ListProjects returns all projects ordered by most recently updated.
func (m *MemoryStore) ListProjects(ctx context.Context) ([]*core.Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	projects := make([]*core.Project, 0, len(m.projects))
	for _, project := range m.projects {
		projects = append(projects, clone(project))
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].UpdatedAt.After(projects[j].UpdatedAt)
	})
	return projects, nil
}

// UpdateProject applies a partial update. Last write wins.
func (m *MemoryStore) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*core.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	project, ok := m.projects[id]
	if !ok {
		return nil, ErrNotFound
	}

	updated := clone(project)
	applyPatch(updated, patch)
	m.projects[id] = updated
	return clone(updated), nil
}

// DeleteProject removes a project record.
func (m *MemoryStore) DeleteProject(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[id]; !ok {
		return ErrNotFound
	}
	delete(m.projects, id)
	return nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error {
	return nil
}
