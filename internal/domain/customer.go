package domain

import "time"

// PendingCustomer is an intake-captured identity waiting to be matched
// with a purchase. Keyed by the CRM customer id; at most one live record
// per customer (last intake wins).
type PendingCustomer struct {
	CustomerID string
	FirstName  string
	LastName   string
	Phone      string // raw free-text answer, not yet validated
	CreatedAt  time.Time
}

// ResolvedCustomer is the merge of intake data and the CRM fallback,
// ready for door-code issuance.
type ResolvedCustomer struct {
	FirstName  string
	LastName   string
	Phone      string // E.164
	PhoneValid bool
}

func (c ResolvedCustomer) Complete() bool {
	return c.FirstName != "" && c.LastName != "" && c.Phone != "" && c.PhoneValid
}

func (c ResolvedCustomer) DisplayName() string {
	first, last := c.FirstName, c.LastName
	if first == "" {
		first = "Unknown"
	}
	if last == "" {
		last = "Customer"
	}
	return first + " " + last
}
