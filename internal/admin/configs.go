package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cloudconfig/cloudconfig/internal/auth"
	"github.com/cloudconfig/cloudconfig/internal/httperr"
	"github.com/cloudconfig/cloudconfig/internal/storage"
)

// UpsertConfigRequest is the request body for POST /admin/projects/{id}/configs.
type UpsertConfigRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// HandleUpsertConfig creates or replaces a config entry. The value must be
// a valid JSON document; every write bumps the version by one.
// POST /admin/projects/{projectID}/configs
func (h *Handler) HandleUpsertConfig(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	projectID, ok := pathUUID(chi.URLParam(r, "projectID"))
	if !ok {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid project id"))
		return
	}

	var req UpsertConfigRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid JSON body"))
		return
	}
	req.Key = strings.TrimSpace(req.Key)
	if req.Key == "" {
		httperr.Write(w, h.logger, httperr.BadRequest("config key cannot be empty"))
		return
	}
	if !json.Valid([]byte(req.Value)) {
		httperr.Write(w, h.logger, httperr.BadRequest("config value must be valid JSON"))
		return
	}

	item, err := h.storage.UpsertConfig(r.Context(), projectID, req.Key, req.Value)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, h.logger, httperr.NotFound("project not found"))
			return
		}
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	h.logger.Info("config upserted", "project_id", projectID, "key", item.Key, "version", item.Version)
	writeJSON(w, http.StatusOK, item)
}

// HandleListConfigs lists all config entries for a project.
// GET /admin/projects/{projectID}/configs
func (h *Handler) HandleListConfigs(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	projectID, ok := pathUUID(chi.URLParam(r, "projectID"))
	if !ok {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid project id"))
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
