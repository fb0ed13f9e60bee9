package admin

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the admin API routes. The caller mounts them behind the
// signature gate; each handler additionally requires an admin identity.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/clients", h.HandleCreateClient)
	r.Get("/clients", h.HandleListClients)
	r.Delete("/clients/{id}", h.HandleDeleteClient)

	r.Post("/projects", h.HandleCreateProject)
	r.Get("/projects", h.HandleListProjects)

	r.Post("/projects/{projectID}/configs", h.HandleUpsertConfig)
	r.Get("/projects/{projectID}/configs", h.HandleListConfigs)

	r.Post("/clients/{clientID}/permissions", h.HandleSetPermission)
	r.Delete("/clients/{clientID}/permissions/{projectID}", h.HandleRevokePermission)

	r.Post("/loglevel", h.HandleSetLogLevel)

	return r
}
