package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SetPermission upserts the (client, project) permission row. At most one
// row exists per pair. Write access implies read access: canRead is forced
// to true whenever canWrite is set. Returns ErrNotFound if either the
// client or the project does not exist.
func (s *SQLiteStorage) SetPermission(ctx context.Context, clientID, projectID uuid.UUID, canRead, canWrite bool) (*Permission, error) {
	if _, err := s.GetClientByID(ctx, clientID); err != nil {
		return nil, err
	}
	if _, err := s.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}

	if canWrite {
		canRead = true
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO client_permissions (client_id, project_id, can_read, can_write)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(client_id, project_id) DO UPDATE SET
			can_read = excluded.can_read,
			can_write = excluded.can_write`,
		clientID.String(), projectID.String(), canRead, canWrite)
	if err != nil {
		return nil, fmt.Errorf("failed to set permission: %w", err)
	}

	perm, err := s.GetPermission(ctx, clientID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load permission: %w", err)
	}
	return perm, nil
}

// GetPermission retrieves the permission row for a (client, project) pair.
// Returns ErrNotFound if no permission has been granted.
func (s *SQLiteStorage) GetPermission(ctx context.Context, clientID, projectID uuid.UUID) (*Permission, error) {
	var p Permission
	var clientIDRaw, projectIDRaw string
	err := s.db.QueryRowContext(ctx, `
		SELECT client_id, project_id, can_read, can_write
		FROM client_permissions
		WHERE client_id = ? AND project_id = ?`,
		clientID.String(), projectID.String()).
		Scan(&clientIDRaw, &projectIDRaw, &p.CanRead, &p.CanWrite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get permission: %w", err)
	}

	p.ClientID, err = uuid.Parse(clientIDRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid client id in database: %w", err)
	}
	p.ProjectID, err = uuid.Parse(projectIDRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid project id in database: %w", err)
	}
	return &p, nil
}

// DeletePermission removes the permission row for a (client, project) pair.
// Returns false if no such row existed.
func (s *SQLiteStorage) DeletePermission(ctx context.Context, clientID, projectID uuid.UUID) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM client_permissions WHERE client_id = ? AND project_id = ?",
		clientID.String(), projectID.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete permission: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}
