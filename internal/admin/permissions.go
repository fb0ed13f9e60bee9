package admin

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cloudconfig/cloudconfig/internal/auth"
	"github.com/cloudconfig/cloudconfig/internal/httperr"
	"github.com/cloudconfig/cloudconfig/internal/storage"
)

// SetPermissionRequest is the request body for POST /admin/clients/{id}/permissions.
type SetPermissionRequest struct {
	ProjectID uuid.UUID `json:"project_id"`
	CanRead   bool      `json:"can_read"`
	CanWrite  bool      `json:"can_write"`
}

// HandleSetPermission upserts the (client, project) permission pair.
// Write access implies read access regardless of the supplied read flag.
// POST /admin/clients/{clientID}/permissions
func (h *Handler) HandleSetPermission(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	clientID, ok := pathUUID(chi.URLParam(r, "clientID"))
	if !ok {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid client id"))
		return
	}

	var req SetPermissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid JSON body"))
		return
	}
	if req.ProjectID == uuid.Nil {
		httperr.Write(w, h.logger, httperr.BadRequest("project_id is required"))
		return
	}

	perm, err := h.storage.SetPermission(r.Context(), clientID, req.ProjectID, req.CanRead, req.CanWrite)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			httperr.Write(w, h.logger, httperr.NotFound("client or project not found"))
			return
		}
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	h.logger.Info("permission set",
		"client_id", clientID, "project_id", req.ProjectID,
		"can_read", perm.CanRead, "can_write", perm.CanWrite)
	writeJSON(w, http.StatusOK, perm)
}

// HandleRevokePermission removes the (client, project) permission pair.
// DELETE /admin/clients/{clientID}/permissions/{projectID}
func (h *Handler) HandleRevokePermission(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	clientID, ok := pathUUID(chi.URLParam(r, "clientID"))
	if !ok {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid client id"))
		return
	}

	projectID, ok := pathUUID(chi.URLParam(r, "projectID"))
	if !ok {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid project id"))
		return
	}

	removed, err := h.storage.DeletePermission(r.Context(), clientID, projectID)
	if err != nil {
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}
	if !removed {
		httperr.Write(w, h.logger, httperr.NotFound("permission not found"))
		return
	}

	h.logger.Info("permission revoked", "client_id", clientID, "project_id", projectID)
	w.WriteHeader(http.StatusNoContent)
}
