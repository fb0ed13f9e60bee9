package admin

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/cloudconfig/cloudconfig/internal/auth"
	"github.com/cloudconfig/cloudconfig/internal/httperr"
	"github.com/cloudconfig/cloudconfig/internal/signing"
	"github.com/cloudconfig/cloudconfig/internal/storage"
)

// CreateClientRequest is the request body for POST /admin/clients.
type CreateClientRequest struct {
	Name string `json:"name"`
}

// CreateClientResponse returns the new client and its private key.
// The private key is shown exactly once; the server stores only the
// public half.
type CreateClientResponse struct {
	Client        *storage.Client `json:"client"`
	PrivateKeyPEM string          `json:"private_key_pem"`
}

// HandleCreateClient creates a new non-admin client with a server-generated
// Ed25519 keypair.
// POST /admin/clients
func (h *Handler) HandleCreateClient(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid JSON body"))
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		httperr.Write(w, h.logger, httperr.BadRequest("client name cannot be empty"))
		return
	}

	keypair, err := signing.GenerateKeypair()
	if err != nil {
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	client, err := h.storage.CreateClient(r.Context(), req.Name, keypair.PublicKeyB64, false)
	if err != nil {
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	h.logger.Info("client created", "client_id", client.ID, "name", client.Name)

	writeJSON(w, http.StatusCreated, CreateClientResponse{
		Client:        client,
		PrivateKeyPEM: keypair.PrivateKeyPEM,
	})
}

// HandleListClients returns all clients.
// GET /admin/clients
func (h *Handler) HandleListClients(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	clients, err := h.storage.ListClients(r.Context())
	if err != nil {
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}

	writeJSON(w, http.StatusOK, clients)
}

// HandleDeleteClient deletes a client. Its permissions and nonce history
// cascade away with it. An admin cannot delete itself: the acting
// credential must stay valid for the remainder of the session.
// DELETE /admin/clients/{id}
func (h *Handler) HandleDeleteClient(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	clientID, ok := pathUUID(chi.URLParam(r, "id"))
	if !ok {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid client id"))
		return
	}

	if identity.ID == clientID {
		httperr.Write(w, h.logger, httperr.Conflict("cannot delete the currently authenticated admin client"))
		return
	}

	removed, err := h.storage.DeleteClient(r.Context(), clientID)
	if err != nil {
		httperr.Write(w, h.logger, httperr.Internal(err))
		return
	}
	if !removed {
		httperr.Write(w, h.logger, httperr.NotFound("client not found"))
		return
	}

	h.logger.Info("client deleted", "client_id", clientID)
	w.WriteHeader(http.StatusNoContent)
}
