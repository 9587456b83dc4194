package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"podforge/internal/core"
)

// SQLiteStore implements ProjectStore on a SQLite database, storing each
// project as a JSON document column alongside a few queryable fields.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a store backed by a SQLite database under dataDir.
func NewSQLiteStore(dataDir string) (*SQLiteStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "podforge.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *SQLiteStore) initialize() error {
	projectsTable := `
	CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		title TEXT,
		raw_prompt TEXT,
		document TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`

	if _, err := s.db.Exec(projectsTable); err != nil {
		return fmt.Errorf("failed to create projects table: %w", err)
	}

	return nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping verifies the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateProject inserts a new project record.
func (s *SQLiteStore) CreateProject(ctx context.Context, project *core.Project) error {
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	document, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal project: %w", err)
	}

	query := `
	INSERT INTO projects (id, title, raw_prompt, document, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)`

	_, err = s.db.ExecContext(ctx, query,
		project.ID,
		project.Title,
		project.RawPrompt,
		string(document),
		project.CreatedAt,
		project.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

// GetProject retrieves a project by id.
func (s *SQLiteStore) GetProject(ctx context.Context, id string) (*core.Project, error) {
	row := s.db.QueryRowContext(ctx, `SELECT document FROM projects WHERE id = ?`, id)

	var document string
	if err := row.Scan(&document); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	var project core.Project
	if err := json.Unmarshal([]byte(document), &project); err != nil {
		return nil, fmt.Errorf("failed to unmarshal project: %w", err)
	}

	return &project, nil
}

// ListProjects returns all projects ordered by most recently updated.
func (s *SQLiteStore) ListProjects(ctx context.Context) ([]*core.Project, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT document FROM projects ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*core.Project
	for rows.Next() {
		var document string
		if err := rows.Scan(&document); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}

		var project core.Project
		if err := json.Unmarshal([]byte(document), &project); err != nil {
			return nil, fmt.Errorf("failed to unmarshal project: %w", err)
		}
		projects = append(projects, &project)
	}

	return projects, rows.Err()
}

// UpdateProject applies a partial update with read-then-replace semantics.
// There is no version check: the last writer wins.
func (s *SQLiteStore) UpdateProject(ctx context.Context, id string, patch ProjectPatch) (*core.Project, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	applyPatch(project, patch)

	document, err := json.Marshal(project)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal project: %w", err)
	}

	query := `
	UPDATE projects SET title = ?, raw_prompt = ?, document = ?, updated_at = ?
	WHERE id = ?`

	if _, err := s.db.ExecContext(ctx, query,
		project.Title,
		project.RawPrompt,
		string(document),
		project.UpdatedAt,
		id,
	); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject removes a project record.
func (s *SQLiteStore) DeleteProject(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}
