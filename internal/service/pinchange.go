package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/bstrong/door-access/internal/remotelock"
	"github.com/bstrong/door-access/pkg/events"
	"github.com/bstrong/door-access/pkg/logger"
)

var pinPattern = regexp.MustCompile(`^\d{4,5}$`)

const (
	expiredSMS       = "Sorry, the 48-hour window for changing your PIN has expired."
	invalidFormatSMS = "Invalid response. Please try again with just the 4 or 5 numbers you'd like for your door code."
	pinTakenSMS      = "Sorry, that code is already in use. Please try again."
	pinErrorSMS      = "Sorry, an error occurred while updating your code. Please contact staff."
)

// HandlePinChange processes an inbound reply text. The ticket keyed by
// the sender's phone decides whether a self-service window is open; the
// ticket is terminal on success or expiry but survives format errors and
// PIN collisions so the customer can retry.
func (e *Engine) HandlePinChange(ctx context.Context, from, body string) (Outcome, error) {
	ticket, err := e.store.GetTicket(ctx, from)
	if err != nil {
		e.alerter.Developer(ctx, fmt.Sprintf("Ticket lookup failed for %s: %v", from, err))
		return "", fmt.Errorf("ticket lookup: %v: %w", err, ErrDependency)
	}
	if ticket == nil {
		logger.InfoContext(ctx, "No PIN change ticket for sender, ignoring", "from", from)
		return OutcomeNoTicket, nil
	}

	if ticket.Expired(e.now(), e.cfg.Facility.PinChangeTTL) {
		e.sendSMS(ctx, from, expiredSMS)
		if err := e.store.DeleteTicket(ctx, from); err != nil {
			logger.ErrorContext(ctx, "Failed to delete expired ticket", "from", from, "error", err)
		}
		return OutcomeExpired, nil
	}

	pin := strings.ReplaceAll(strings.TrimSpace(body), "#", "")
	if !pinPattern.MatchString(pin) {
		e.sendSMS(ctx, from, invalidFormatSMS)
		return OutcomeInvalidFormat, nil
	}

	err = e.access.UpdatePIN(ctx, ticket.GuestID, pin)
	switch {
	case err == nil:
		e.sendSMS(ctx, from, fmt.Sprintf("Door code successfully set to %s#", pin))
		if err := e.store.DeleteTicket(ctx, from); err != nil {
			logger.ErrorContext(ctx, "Failed to delete ticket after PIN change", "from", from, "error", err)
		}
		e.publish(ctx, events.AccessPinChanged, events.AccessPinChangedEvent{
			GuestID:   ticket.GuestID,
			ChangedAt: e.now(),
		})
		return OutcomePinChanged, nil

	case errors.Is(err, remotelock.ErrPINInUse):
		e.sendSMS(ctx, from, pinTakenSMS)
		return OutcomePinTaken, nil

	default:
		e.alerter.Developer(ctx, fmt.Sprintf("Lock vendor error on PIN update for %s: %v", from, err))
		e.sendSMS(ctx, from, pinErrorSMS)
		return "", fmt.Errorf("update pin: %v: %w", err, ErrDependency)
	}
}

func (e *Engine) sendSMS(ctx context.Context, to, body string) {
	if err := e.messenger.SendSMS(ctx, to, body); err != nil {
		logger.ErrorContext(ctx, "Failed to send SMS", "to", to, "error", err)
	}
}
