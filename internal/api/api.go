// Package api provides the client-facing configuration endpoints, gated by
// per-project read/write permissions.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cloudconfig/cloudconfig/internal/auth"
	"github.com/cloudconfig/cloudconfig/internal/httperr"
	"github.com/cloudconfig/cloudconfig/internal/storage"
)

// Storage is the persistence surface the client API needs.
type Storage interface {
	storage.ProjectStore
	storage.ConfigStore
}

// Handler provides the client-facing endpoints.
type Handler struct {
	storage   Storage
	evaluator *auth.Evaluator
	logger    *slog.Logger
}

// NewHandler creates a client API handler.
func NewHandler(storage Storage, evaluator *auth.Evaluator, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		storage:   storage,
		evaluator: evaluator,
		logger:    logger,
	}
}

// Routes returns the client API routes. The caller mounts them behind the
// signature gate.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/projects", h.HandleListProjects)
	r.Get("/projects/{projectID}/configs", h.HandleListConfigs)
	r.Get("/projects/{projectID}/configs/{key}", h.HandleGetConfig)
	r.Put("/projects/{projectID}/configs/{key}", h.HandleUpdateConfig)

	return r
}

// HandleListProjects returns the projects the caller can read or write.
// GET /api/projects
func (h *Handler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	projects, err := h.storage.ListProjectsForClient(r.Context(), identity.ID)
	if err != nil {
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, projects)
}

// HandleListConfigs lists a project's config entries. Requires read access.
// GET /api/projects/{projectID}/configs
func (h *Handler) HandleListConfigs(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	projectID, ok := pathUUID(chi.URLParam(r, "projectID"))
	if !ok {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid project id"))
		return
	}

	if err := h.evaluator.RequireRead(r.Context(), identity.ID, projectID); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	items, err := h.storage.ListConfigsForProject(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, h.logger, httperr.NotFound("project not found"))
			return
		}
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, items)
}

// HandleGetConfig returns a single config entry. Requires read access.
// GET /api/projects/{projectID}/configs/{key}
func (h *Handler) HandleGetConfig(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	projectID, ok := pathUUID(chi.URLParam(r, "projectID"))
	if !ok {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid project id"))
		return
	}
	key := chi.URLParam(r, "key")

	if err := h.evaluator.RequireRead(r.Context(), identity.ID, projectID); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	item, err := h.storage.GetConfigByKey(r.Context(), projectID, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, h.logger, httperr.NotFound("config not found"))
			return
		}
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// UpdateConfigValueRequest is the request body for PUT config updates.
type UpdateConfigValueRequest struct {
	Value string `json:"value"`
}

// HandleUpdateConfig replaces a config value, bumping its version.
// Requires write access; the value must be a valid JSON document.
// PUT /api/projects/{projectID}/configs/{key}
func (h *Handler) HandleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	projectID, ok := pathUUID(chi.URLParam(r, "projectID"))
	if !ok {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid project id"))
		return
	}
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		httperr.Write(w, h.logger, httperr.BadRequest("config key cannot be empty"))
		return
	}

	if err := h.evaluator.RequireWrite(r.Context(), identity.ID, projectID); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	var req UpdateConfigValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid JSON body"))
		return
	}
	if !json.Valid([]byte(req.Value)) {
		httperr.Write(w, h.logger, httperr.BadRequest("config value must be valid JSON"))
		return
	}

	item, err := h.storage.UpsertConfig(r.Context(), projectID, key, req.Value)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, h.logger, httperr.NotFound("project not found"))
			return
		}
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	h.logger.Info("config updated", "project_id", projectID, "key", key, "version", item.Version, "client_id", identity.ID)
	writeJSON(w, http.StatusOK, item)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		// Encoding errors are not critical once headers are sent
		_ = err
	}
}

func pathUUID(raw string) (uuid.UUID, bool) {
	id, err := uuid.Parse(raw)
	return id, err == nil
}
