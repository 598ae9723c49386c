package service

import (
	"context"
	"fmt"

	"github.com/bstrong/door-access/internal/domain"
	"github.com/bstrong/door-access/pkg/logger"
)

const (
	dayPassSMS = "Your B-STRONG door code is %s#. Be sure to hit the # after the numbers. " +
		"Access hours are 4am-10pm. Busiest times are 8am-11am, so if you arrive at 9, plan for it to be busy. " +
		"Please don't share your code with others or let anyone else in. Questions? Text the front desk. Enjoy your workout!"

	standardSMS = "Your B-STRONG door code is %s#. Be sure to hit the # after the numbers. " +
		"If you'd like to change your door code please respond to this text with the 4 or 5 digits to set it. " +
		"Your code will expire %s at 10:00 pm. Access hours are 4am-10pm. Busiest times are 8am-11am, " +
		"so if you arrive at 9, plan for it to be busy. Please don't share your code with others or let anyone else in. " +
		"Questions? Text the front desk. Enjoy your workout!"
)

// issueDoorCode computes the access window, mints a guest credential,
// attaches it to the lock and texts the customer their code.
//
// Credential issuance and customer notification are separate outcomes: a
// failed text after a successful grant is reported but does not undo or
// fail the grant, since the customer already has working access.
func (e *Engine) issueDoorCode(ctx context.Context, customer domain.ResolvedCustomer, label string) (domain.AccessGrant, error) {
	startsAt, endsAt, err := domain.AccessWindow(e.now(), e.loc, label, e.cfg.Facility.Memberships)
	if err != nil {
		e.alerter.Developer(ctx, fmt.Sprintf("No duration configured for membership %q", label))
		return domain.AccessGrant{}, err
	}

	name := customer.FirstName + " " + customer.LastName

	credential, err := e.access.CreateGuest(ctx, name, startsAt, endsAt)
	if err != nil {
		e.alerter.Developer(ctx, fmt.Sprintf("Lock vendor error for %s: %v", name, err))
		return domain.AccessGrant{}, err
	}

	if err := e.access.GrantAccess(ctx, credential.ID); err != nil {
		e.alerter.Developer(ctx, fmt.Sprintf("Lock vendor error for %s: %v", name, err))
		return domain.AccessGrant{}, err
	}

	var body string
	if domain.IsDayPassLabel(label) {
		body = fmt.Sprintf(dayPassSMS, credential.PIN)
	} else {
		expiry := endsAt.In(e.loc).Format("2006-01-02")
		body = fmt.Sprintf(standardSMS, credential.PIN, expiry)
	}

	notified := true
	if err := e.messenger.SendSMS(ctx, customer.Phone, body); err != nil {
		notified = false
		logger.ErrorContext(ctx, "Door code granted but SMS failed", "phone", customer.Phone, "error", err)
		e.alerter.Developer(ctx, fmt.Sprintf("Door code granted for %s but SMS delivery failed: %v", name, err))
	}

	return domain.AccessGrant{
		PIN:      credential.PIN,
		GuestID:  credential.ID,
		StartsAt: startsAt,
		EndsAt:   endsAt,
		Notified: notified,
	}, nil
}
