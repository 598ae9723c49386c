package handlers

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	twilioclient "github.com/twilio/twilio-go/client"

	"github.com/bstrong/door-access/internal/domain"
	"github.com/bstrong/door-access/internal/http/response"
	"github.com/bstrong/door-access/internal/service"
	"github.com/bstrong/door-access/pkg/config"
)

// Engine is the slice of the correlation engine the HTTP layer needs.
type Engine interface {
	HandleIntake(ctx context.Context, event domain.FormEvent) (service.Outcome, error)
	HandleTransaction(ctx context.Context, event domain.TransactionEvent, rawPayload []byte) (service.Outcome, error)
	HandlePinChange(ctx context.Context, from, body string) (service.Outcome, error)
	Sweep(ctx context.Context) (int64, error)
}

type Handlers struct {
	engine    Engine
	cfg       *config.Config
	validator twilioclient.RequestValidator
}

func New(engine Engine, cfg *config.Config) *Handlers {
	return &Handlers{
		engine:    engine,
		cfg:       cfg,
		validator: twilioclient.NewRequestValidator(cfg.Twilio.AuthToken),
	}
}

// Routes mounts all webhook endpoints.
func (h *Handlers) Routes(r chi.Router) {
	r.Post("/webhook-form", h.IntakeWebhook)
	r.Post("/webhook-transaction", h.TransactionWebhook)
	r.Post("/webhook-sms", h.SMSWebhook)
	r.Post("/cleanup", h.Cleanup)
	r.Get("/health", h.Health)
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// secretMatches compares a shared-secret header in constant time.
func secretMatches(received, expected string) bool {
	return subtle.ConstantTimeCompare([]byte(received), []byte(expected)) == 1
}

func writeOutcome(w http.ResponseWriter, outcome service.Outcome) {
	response.WriteJSON(w, http.StatusOK, map[string]string{"status": string(outcome)})
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, "internal error")
	}
}
