// Package storage provides types and interfaces for SQLite persistence operations.
package storage

import (
	"context"

	"github.com/google/uuid"
)

// ClientStore manages client identities and their public keys.
type ClientStore interface {
	CreateClient(ctx context.Context, name, publicKey string, isAdmin bool) (*Client, error)
	GetClientByID(ctx context.Context, id uuid.UUID) (*Client, error)
	ListClients(ctx context.Context) ([]*Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) (bool, error)
}

// ProjectStore manages project containers.
type ProjectStore interface {
	CreateProject(ctx context.Context, name, description string) (*Project, error)
	GetProjectByID(ctx context.Context, id uuid.UUID) (*Project, error)
	ListProjects(ctx context.Context) ([]*Project, error)
	ListProjectsForClient(ctx context.Context, clientID uuid.UUID) ([]*Project, error)
}

// ConfigStore manages versioned configuration entries within a project.
type ConfigStore interface {
	UpsertConfig(ctx context.Context, projectID uuid.UUID, key, value string) (*ConfigItem, error)
	GetConfigByKey(ctx context.Context, projectID uuid.UUID, key string) (*ConfigItem, error)
	ListConfigsForProject(ctx context.Context, projectID uuid.UUID) ([]*ConfigItem, error)
}

// PermissionStore manages per-(client, project) read/write capabilities.
type PermissionStore interface {
	SetPermission(ctx context.Context, clientID, projectID uuid.UUID, canRead, canWrite bool) (*Permission, error)
	GetPermission(ctx context.Context, clientID, projectID uuid.UUID) (*Permission, error)
	DeletePermission(ctx context.Context, clientID, projectID uuid.UUID) (bool, error)
}

// NonceStore records used nonces for replay detection.
// RegisterNonce must be atomic per (client, nonce) pair: of two concurrent
// registrations with the same pair, exactly one succeeds.
type NonceStore interface {
	RegisterNonce(ctx context.Context, clientID uuid.UUID, nonce string, now int64) error
}

// Storage is the full persistence surface consumed by the server.
type Storage interface {
	ClientStore
	ProjectStore
	ConfigStore
	PermissionStore
	NonceStore

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}
