package storage

import (
	"time"

	"github.com/google/uuid"
)

// Client represents an identity that can sign requests.
// Clients are immutable except for deletion.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	PublicKey string    `json:"public_key"` // base64-encoded Ed25519 public key
	IsAdmin   bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
}

// Project is a named container for configuration entries.
type Project struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ConfigItem is a versioned key/value entry scoped to one project.
// The value is always a valid JSON document. Every write fully replaces
// the value and bumps Version by one.
type ConfigItem struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Permission grants a client read and/or write access to one project.
// CanWrite implies CanRead; SetPermission enforces the invariant.
type Permission struct {
	ClientID  uuid.UUID `json:"client_id"`
	ProjectID uuid.UUID `json:"project_id"`
	CanRead   bool      `json:"can_read"`
	CanWrite  bool      `json:"can_write"`
}
