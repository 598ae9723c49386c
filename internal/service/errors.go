package service

import "errors"

// Error taxonomy. Handlers map these onto HTTP statuses; anything the
// upstream webhook sender should not retry is an Outcome, not an error.
var (
	// ErrValidation marks a missing or malformed required field (400).
	ErrValidation = errors.New("validation failure")
	// ErrDependency marks a vendor API, store or credential failure (500).
	ErrDependency = errors.New("dependency failure")
)

// Outcome describes a request that completed without error, including
// all the explicitly-not-an-error acknowledgements that keep the webhook
// sender from retrying.
type Outcome string

const (
	OutcomeStored        Outcome = "stored"
	OutcomeIgnoredForm   Outcome = "ignored_wrong_form"
	OutcomeIgnoredMisc   Outcome = "ignored_misc_account"
	OutcomeIrrelevant    Outcome = "ignored_irrelevant_purchase"
	OutcomeDuplicate     Outcome = "duplicate_transaction"
	OutcomeGranted       Outcome = "door_code_created"
	OutcomeNoTicket      Outcome = "no_ticket"
	OutcomeExpired       Outcome = "ticket_expired"
	OutcomeInvalidFormat Outcome = "invalid_pin_format"
	OutcomePinChanged    Outcome = "pin_updated"
	OutcomePinTaken      Outcome = "pin_taken"
)
