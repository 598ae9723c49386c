package handlers

import (
	"net/http"

	"github.com/bstrong/door-access/internal/http/response"
	"github.com/bstrong/door-access/pkg/logger"
)

// SMSWebhook receives inbound reply texts from the messaging provider.
// The provider signs the externally-visible callback URL plus the posted
// form fields; behind the proxy that URL is reconstructed from the
// forwarded host header.
func (h *Handlers) SMSWebhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.BadRequest(w, "malformed form body")
		return
	}

	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	url := "https://" + host + r.URL.RequestURI()

	params := make(map[string]string, len(r.PostForm))
	for key, values := range r.PostForm {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	signature := r.Header.Get("X-Twilio-Signature")
	if !h.validator.Validate(url, params, signature) {
		logger.WarnContext(r.Context(), "Inbound SMS signature validation failed", "url", url)
		response.Forbidden(w, "invalid signature")
		return
	}

	from := r.PostForm.Get("From")
	body := r.PostForm.Get("Body")

	outcome, err := h.engine.HandlePinChange(r.Context(), from, body)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeOutcome(w, outcome)
}
