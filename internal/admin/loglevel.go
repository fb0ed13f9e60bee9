package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cloudconfig/cloudconfig/internal/auth"
	"github.com/cloudconfig/cloudconfig/internal/httperr"
)

// SetLogLevelRequest is the request body for POST /admin/loglevel.
type SetLogLevelRequest struct {
	Level string `json:"level"`
}

// HandleSetLogLevel changes the server log level at runtime.
// POST /admin/loglevel
func (h *Handler) HandleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	if err := auth.RequireAdmin(identity); err != nil {
		httperr.Write(w, h.logger, err)
		return
	}

	var req SetLogLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httperr.Write(w, h.logger, httperr.BadRequest("invalid JSON body"))
		return
	}

	var level slog.Level
	switch req.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		httperr.Write(w, h.logger, httperr.BadRequest("invalid level (must be: debug, info, warn, error)"))
		return
	}

	h.logLevel.Set(level)
	h.logger.Info("log level changed", "new_level", req.Level)

	writeJSON(w, http.StatusOK, map[string]string{"level": req.Level})
}
