package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UpsertConfig creates or replaces a config entry. On first write the entry
// starts at version 1; every subsequent write to the same (project, key)
// replaces the value and bumps the version by one in the same statement.
// Returns ErrNotFound if the project does not exist.
func (s *SQLiteStorage) UpsertConfig(ctx context.Context, projectID uuid.UUID, key, value string) (*ConfigItem, error) {
	if _, err := s.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("config key cannot be empty")
	}

	id := uuid.New()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO configs (id, project_id, key, value, version, updated_at)
		VALUES (?, ?, ?, ?, 1, CURRENT_TIMESTAMP)
		ON CONFLICT(project_id, key) DO UPDATE SET
			value = excluded.value,
			version = configs.version + 1,
			updated_at = CURRENT_TIMESTAMP`,
		id.String(), projectID.String(), key, value)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert config: %w", err)
	}

	item, err := s.GetConfigByKey(ctx, projectID, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load upserted config: %w", err)
	}
	return item, nil
}

// GetConfigByKey retrieves a single config entry.
// Returns ErrNotFound if the key has never been written.
func (s *SQLiteStorage) GetConfigByKey(ctx context.Context, projectID uuid.UUID, key string) (*ConfigItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, project_id, key, value, version, updated_at
		FROM configs
		WHERE project_id = ? AND key = ?`,
		projectID.String(), key)
	return scanConfig(row)
}

// ListConfigsForProject returns all config entries for a project ordered by
// key. Returns ErrNotFound if the project does not exist.
func (s *SQLiteStorage) ListConfigsForProject(ctx context.Context, projectID uuid.UUID) ([]*ConfigItem, error) {
	if _, err := s.GetProjectByID(ctx, projectID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, key, value, version, updated_at
		FROM configs
		WHERE project_id = ?
		ORDER BY key ASC`,
		projectID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query configs: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var items []*ConfigItem
	for rows.Next() {
		item, err := scanConfig(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating configs: %w", err)
	}

	if items == nil {
		items = make([]*ConfigItem, 0)
	}
	return items, nil
}

func scanConfig(row scanTarget) (*ConfigItem, error) {
	var item ConfigItem
	var idRaw, projectIDRaw string
	err := row.Scan(&idRaw, &projectIDRaw, &item.Key, &item.Value, &item.Version, &item.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan config row: %w", err)
	}

	item.ID, err = uuid.Parse(idRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid config id in database: %w", err)
	}
	item.ProjectID, err = uuid.Parse(projectIDRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid project id in database: %w", err)
	}
	return &item, nil
}
