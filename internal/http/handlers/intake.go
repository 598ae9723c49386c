package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/bstrong/door-access/internal/domain"
	"github.com/bstrong/door-access/internal/http/response"
)

// IntakeWebhook receives signed form-submission events.
func (h *Handlers) IntakeWebhook(w http.ResponseWriter, r *http.Request) {
	if !secretMatches(r.Header.Get("X-Vagaro-Signature"), h.cfg.Webhooks.FormSecret) {
		response.Forbidden(w, "invalid signature")
		return
	}

	var envelope struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.NewDecoder(r.Body).Decode(&envelope); err != nil || len(envelope.Payload) == 0 {
		response.BadRequest(w, "no valid payload found")
		return
	}

	var event domain.FormEvent
	if err := json.Unmarshal(envelope.Payload, &event); err != nil {
		response.BadRequest(w, "malformed payload")
		return
	}

	outcome, err := h.engine.HandleIntake(r.Context(), event)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOutcome(w, outcome)
}
