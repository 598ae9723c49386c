package notify

import (
	"context"

	"github.com/bstrong/door-access/pkg/logger"
)

// Alerter fans operational alerts out to the developer and owner phone
// numbers, plus the optional email channel for developer alerts. Delivery
// is best effort; a failed alert is logged and dropped.
type Alerter struct {
	messenger      Messenger
	mailer         *Mailer
	developerPhone string
	ownerPhones    []string
}

func NewAlerter(messenger Messenger, mailer *Mailer, developerPhone string, ownerPhones []string) *Alerter {
	return &Alerter{
		messenger:      messenger,
		mailer:         mailer,
		developerPhone: developerPhone,
		ownerPhones:    ownerPhones,
	}
}

// Developer alerts the on-call developer about an internal failure.
func (a *Alerter) Developer(ctx context.Context, message string) {
	if a.developerPhone != "" {
		if err := a.messenger.SendSMS(ctx, a.developerPhone, "DEV ALERT: "+message); err != nil {
			logger.ErrorContext(ctx, "Failed to notify developer", "error", err)
		}
	}

	if a.mailer != nil && a.mailer.Enabled {
		if err := a.mailer.SendAlert(ctx, "door-access dev alert", message); err != nil {
			logger.ErrorContext(ctx, "Failed to email developer alert", "error", err)
		}
	}
}

// Owners alerts both configured owner numbers about a customer-impacting
// failure.
func (a *Alerter) Owners(ctx context.Context, message string) {
	for _, number := range a.ownerPhones {
		if err := a.messenger.SendSMS(ctx, number, "ALERT: "+message); err != nil {
			logger.ErrorContext(ctx, "Failed to notify owner", "owner", number, "error", err)
		}
	}
}
