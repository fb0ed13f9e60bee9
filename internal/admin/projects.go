package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/cloudconfig/cloudconfig/internal/auth"
	"github.com/cloudconfig/cloudconfig/internal/httperr"
	"github.com/cloudconfig/cloudconfig/internal/storage"
)

// CreateProjectRequest is the request body for POST /admin/projects.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// HandleCreateProject creates a new project. Project names are unique.
// POST /admin/projects
func (h *Handler) HandleCreateProject(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	var req CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid JSON body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httperr.Write(w, h.logger, httperr.BadRequest("project name cannot be empty"))
		return
	}

	project, err := h.storage.CreateProject(r.Context(), req.Name, req.Description)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateName) {
			httperr.Write(w, h.logger, httperr.Conflict("project name already exists"))
			return
		}
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	h.logger.Info("project created", "project_id", project.ID, "name", project.Name)
	writeJSON(w, http.StatusCreated, project)
}

// HandleListProjects returns all projects.
// GET /admin/projects
func (h *Handler) HandleListProjects(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	projects, err := h.storage.ListProjects(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, projects)
}
