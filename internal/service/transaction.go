package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bstrong/door-access/internal/domain"
	"github.com/bstrong/door-access/internal/phone"
	"github.com/bstrong/door-access/pkg/events"
	"github.com/bstrong/door-access/pkg/logger"
)

// HandleTransaction correlates a POS transaction with a pending customer
// (or the CRM fallback) and issues a door code. rawPayload is the
// undecoded payload object, used for the dedup-key hash of last resort.
//
// The dedup marker is written atomically before any vendor call. If the
// transaction fails while still side-effect free (resolution stage), the
// marker is released again so an upstream webhook retry gets another
// attempt; once issuance has started the marker stays.
func (e *Engine) HandleTransaction(ctx context.Context, event domain.TransactionEvent, rawPayload []byte) (Outcome, error) {
	customerID := strings.TrimSpace(event.CustomerID)
	if customerID != "" && customerID == e.cfg.Webhooks.MiscPOSCustomerID {
		logger.InfoContext(ctx, "Ignoring transaction for POS miscellaneous account")
		return OutcomeIgnoredMisc, nil
	}

	purchase := domain.Purchase{
		ItemSold:     strings.ToLower(event.ItemSold),
		PurchaseType: event.PurchaseType,
		CustomerID:   customerID,
	}

	if !purchase.Relevant() {
		logger.InfoContext(ctx, "Ignoring irrelevant purchase",
			"purchase_type", event.PurchaseType, "item_sold", purchase.ItemSold)
		return OutcomeIrrelevant, nil
	}

	purchase.UniqueID = domain.DeriveUniqueID(event.UserPaymentID, event.TransactionID, rawPayload)

	alreadyProcessed, err := e.store.MarkTransaction(ctx, purchase.UniqueID)
	if err != nil {
		e.alerter.Developer(ctx, fmt.Sprintf("Dedup marker write failed for transaction %s: %v", purchase.UniqueID, err))
		return "", fmt.Errorf("mark transaction: %v: %w", err, ErrDependency)
	}
	if alreadyProcessed {
		logger.InfoContext(ctx, "Duplicate transaction ignored", "unique_id", purchase.UniqueID)
		return OutcomeDuplicate, nil
	}

	if customerID == "" {
		e.releaseMarker(ctx, purchase.UniqueID)
		e.alerter.Developer(ctx, "Received transaction webhook without a customerId")
		return "", fmt.Errorf("transaction event missing customerId: %w", ErrValidation)
	}

	resolved := e.resolveCustomer(ctx, customerID)

	if !resolved.PhoneValid {
		if err := e.resolveFromDirectory(ctx, customerID, &resolved); err != nil {
			e.releaseMarker(ctx, purchase.UniqueID)
			e.alerter.Owners(ctx, fmt.Sprintf("Failed to send code to %s", resolved.DisplayName()))
			return "", fmt.Errorf("resolve customer %s: %v: %w", customerID, err, ErrDependency)
		}
	}

	if !resolved.Complete() {
		e.releaseMarker(ctx, purchase.UniqueID)
		e.alerter.Owners(ctx, fmt.Sprintf("%s didn't get a door code", resolved.DisplayName()))
		return "", fmt.Errorf("incomplete customer data for %s: %w", customerID, ErrDependency)
	}

	logger.InfoContext(ctx, "Processing purchase",
		"customer_id", customerID, "item_sold", purchase.ItemSold)

	grant, err := e.issueDoorCode(ctx, resolved, purchase.ItemSold)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownMembership) {
			e.alerter.Owners(ctx, fmt.Sprintf("Unrecognized membership %q - %s didn't get a door code", purchase.ItemSold, resolved.DisplayName()))
		} else {
			e.alerter.Owners(ctx, fmt.Sprintf("%s didn't get a door code.", resolved.DisplayName()))
		}
		return "", fmt.Errorf("issue door code: %v: %w", err, ErrDependency)
	}

	if !purchase.IsDayPass() {
		ticket := domain.PinChangeTicket{Phone: resolved.Phone, GuestID: grant.GuestID}
		if err := e.store.UpsertTicket(ctx, ticket); err != nil {
			// The door code is already granted; losing the self-service
			// window is not worth failing the request over.
			logger.ErrorContext(ctx, "Failed to create PIN change ticket", "phone", resolved.Phone, "error", err)
			e.alerter.Developer(ctx, fmt.Sprintf("Failed to create PIN ticket for %s: %v", resolved.Phone, err))
		}
	}

	e.publish(ctx, events.AccessGranted, events.AccessGrantedEvent{
		CustomerID: customerID,
		GuestID:    grant.GuestID,
		ItemSold:   purchase.ItemSold,
		StartsAt:   grant.StartsAt,
		EndsAt:     grant.EndsAt,
		Notified:   grant.Notified,
		GrantedAt:  e.now(),
	})

	return OutcomeGranted, nil
}

// resolveCustomer consumes the pending-customer record if one exists.
// The record is deleted after the read either way; a failed phone parse
// just means the directory supplies the number instead.
func (e *Engine) resolveCustomer(ctx context.Context, customerID string) domain.ResolvedCustomer {
	var resolved domain.ResolvedCustomer

	pending, err := e.store.GetPendingCustomer(ctx, customerID)
	if err != nil {
		logger.ErrorContext(ctx, "Pending customer lookup failed", "customer_id", customerID, "error", err)
		e.alerter.Developer(ctx, fmt.Sprintf("Store access error for %s: %v", customerID, err))
		return resolved
	}
	if pending == nil {
		logger.InfoContext(ctx, "No pending form data, using directory fallback", "customer_id", customerID)
		return resolved
	}

	resolved.FirstName = pending.FirstName
	resolved.LastName = pending.LastName

	if e164, ok := phone.NormalizeUS(pending.Phone); ok {
		resolved.Phone = e164
		resolved.PhoneValid = true
	} else {
		logger.InfoContext(ctx, "Invalid phone in pending record, using directory for phone",
			"customer_id", customerID)
	}

	if err := e.store.DeletePendingCustomer(ctx, customerID); err != nil {
		logger.ErrorContext(ctx, "Failed to delete pending customer", "customer_id", customerID, "error", err)
	}

	return resolved
}

// resolveFromDirectory fills still-missing fields from the CRM. The phone
// returned by the directory must validate; otherwise the transaction is
// terminal for this delivery.
func (e *Engine) resolveFromDirectory(ctx context.Context, customerID string, resolved *domain.ResolvedCustomer) error {
	customer, err := e.directory.LookupCustomer(ctx, customerID)
	if err != nil {
		return fmt.Errorf("directory lookup: %w", err)
	}

	if resolved.FirstName == "" {
		resolved.FirstName = customer.FirstName
	}
	if resolved.LastName == "" {
		resolved.LastName = customer.LastName
	}

	if customer.MobilePhone == "" {
		return errors.New("no mobile phone on directory profile")
	}

	e164, ok := phone.NormalizeUS(customer.MobilePhone)
	if !ok {
		return fmt.Errorf("invalid phone number from directory: %s", customer.MobilePhone)
	}

	resolved.Phone = e164
	resolved.PhoneValid = true
	return nil
}

func (e *Engine) releaseMarker(ctx context.Context, uniqueID string) {
	if err := e.store.ReleaseTransaction(ctx, uniqueID); err != nil {
		logger.ErrorContext(ctx, "Failed to release dedup marker", "unique_id", uniqueID, "error", err)
	}
}
