package handlers

import (
	"net/http"

	"github.com/bstrong/door-access/internal/http/response"
)

// Cleanup triggers the retention sweep. Invoked by an external scheduler
// with a shared-secret header.
func (h *Handlers) Cleanup(w http.ResponseWriter, r *http.Request) {
	if !secretMatches(r.Header.Get("X-Cleanup-Token"), h.cfg.Webhooks.CleanupToken) {
		response.Forbidden(w, "invalid cleanup token")
		return
	}

	deleted, err := h.engine.Sweep(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
