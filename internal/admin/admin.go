// Package admin provides the administration endpoints: client lifecycle,
// projects, config upserts, and permission grants.
package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/cloudconfig/cloudconfig/internal/storage"
)

// Storage is the persistence surface the admin API needs.
type Storage interface {
	storage.ClientStore
	storage.ProjectStore
	storage.ConfigStore
	storage.PermissionStore

	Ping(ctx context.Context) error
}

// Handler provides admin endpoints.
type Handler struct {
	storage  Storage
	logger   *slog.Logger
	logLevel *slog.LevelVar
}

// NewHandler creates an admin handler.
func NewHandler(storage Storage, logLevel *slog.LevelVar, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}

	return &Handler{
		storage:  storage,
		logLevel: logLevel,
		logger:   logger,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		// Encoding errors are not critical once headers are sent
		_ = err
	}
}

// pathUUID parses a chi URL parameter as a UUID.
func pathUUID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	return id, err == nil
}
