package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CreateClient inserts a new client with the given base64-encoded public key.
// The name is trimmed and must be non-empty.
func (s *SQLiteStorage) CreateClient(ctx context.Context, name, publicKey string, isAdmin bool) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("client name cannot be empty")
	}

	id := uuid.New()
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO clients (id, name, public_key, is_admin) VALUES (?, ?, ?, ?)",
		id.String(), name, publicKey, isAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	client, err := s.GetClientByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load created client: %w", err)
	}
	return client, nil
}

// GetClientByID retrieves a client by its identifier.
// Returns ErrNotFound if no such client exists.
func (s *SQLiteStorage) GetClientByID(ctx context.Context, id uuid.UUID) (*Client, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, public_key, is_admin, created_at FROM clients WHERE id = ?",
		id.String())
	return scanClient(row)
}

// ListClients returns all clients, newest first.
// Returns empty slice if no clients exist.
func (s *SQLiteStorage) ListClients(ctx context.Context) ([]*Client, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, public_key, is_admin, created_at FROM clients ORDER BY created_at DESC, rowid DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close() //nolint:errcheck

	var clients []*Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating clients: %w", err)
	}

	if clients == nil {
		clients = make([]*Client, 0)
	}
	return clients, nil
}

// DeleteClient deletes a client by ID. Permissions and nonce history cascade
// via foreign key constraints. Returns false if the client did not exist.
func (s *SQLiteStorage) DeleteClient(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM clients WHERE id = ?", id.String())
	if err != nil {
		return false, fmt.Errorf("failed to delete client: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// GetAdminClient returns the oldest admin client, or ErrNotFound
// if no admin exists yet.
func (s *SQLiteStorage) GetAdminClient(ctx context.Context) (*Client, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, public_key, is_admin, created_at FROM clients WHERE is_admin = 1 ORDER BY created_at ASC, rowid ASC LIMIT 1")
	return scanClient(row)
}

// UpdateClientPublicKey replaces a client's stored public key.
// Used when regenerating the bootstrap admin's credentials.
func (s *SQLiteStorage) UpdateClientPublicKey(ctx context.Context, id uuid.UUID, publicKey string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE clients SET public_key = ? WHERE id = ?",
		publicKey, id.String())
	if err != nil {
		return fmt.Errorf("failed to update client public key: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanTarget abstracts *sql.Row and *sql.Rows for the scan helpers.
type scanTarget interface {
	Scan(dest ...any) error
}

func scanClient(row scanTarget) (*Client, error) {
	var c Client
	var idRaw string
	err := row.Scan(&idRaw, &c.Name, &c.PublicKey, &c.IsAdmin, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan client row: %w", err)
	}

	c.ID, err = uuid.Parse(idRaw)
	if err != nil {
		return nil, fmt.Errorf("invalid client id in database: %w", err)
	}
	return &c, nil
}
