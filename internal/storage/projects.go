package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CreateProject inserts a new project. Project names are unique;
// returns ErrDuplicateName on collision.
func (s *SQLiteStorage) CreateProject(ctx context.Context, name, description string) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("project name cannot be empty")
	}

	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO projects (id, name, description) VALUES (?, ?, ?)",
		id.String(), name, description)
	if err != nil {
		if isConstraintViolation(err) {
			return nil, ErrDuplicateName
		}
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	project, err := s.GetProjectByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load created project: %w", err)
	}
	return project, nil
}

// GetProjectByID retrieves a project by its identifier.
// Returns ErrNotFound if no such project exists.
func (s *SQLiteStorage) GetProjectByID(ctx context.Context, id uuid.UUID) (*Project, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, description, created_at FROM projects WHERE id = ?",
		id.String())
	return scanProject(row)
}

// ListProjects returns all projects ordered by name.
func (s *SQLiteStorage) ListProjects(ctx context.Context) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description, created_at FROM projects ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return collectProjects(rows)
}

// ListProjectsForClient returns the projects a client can read or write,
// ordered by name.
func (s *SQLiteStorage) ListProjectsForClient(ctx context.Context, clientID uuid.UUID) ([]*Project, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT p.id, p.name, p.description, p.created_at
		FROM projects p
		JOIN client_permissions cp ON cp.project_id = p.id
		WHERE cp.client_id = ? AND (cp.can_read = 1 OR cp.can_write = 1)
		ORDER BY p.name ASC`,
		clientID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query projects for client: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	return collectProjects(rows)
}

func collectProjects(rows *sql.Rows) ([]*Project, error) {
	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating projects: %w", err)
	}

	if projects == nil {
		projects = make([]*Project, 0)
	}
	return projects, nil
}

func scanProject(row scanTarget) (*Project, error) {
	var p Project
	var idRaw string
	err := row.Scan(&idRaw, &p.Name, &p.Description, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan project row: %w", err)
	}

	p.ID, err = uuid.Parse(idRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid project id in database: %w", err)
	}
	return &p, nil
}
