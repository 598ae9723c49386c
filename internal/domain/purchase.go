package domain

import (
	"crypto/sha256"
	"fmt"
	"strings"
)

// Purchase types as they appear in the POS transaction payload.
const (
	PurchaseMembership = "Membership"
	PurchaseClass      = "Class"
	PurchasePackage    = "Package"
)

// Purchase is the relevant slice of a POS transaction event.
type Purchase struct {
	ItemSold     string // case-folded item label
	PurchaseType string
	CustomerID   string
	UniqueID     string
}

// Relevant reports whether this purchase should produce a door code:
// any membership, a class whose label mentions a day pass, or the
// day-pass package itself.
func (p Purchase) Relevant() bool {
	switch p.PurchaseType {
	case PurchaseMembership:
		return true
	case PurchaseClass:
		return strings.Contains(p.ItemSold, "day pass")
	case PurchasePackage:
		return p.ItemSold == "day pass"
	}
	return false
}

// IsDayPass matches any day-pass label variant.
func (p Purchase) IsDayPass() bool {
	return IsDayPassLabel(p.ItemSold)
}

func IsDayPassLabel(label string) bool {
	return strings.Contains(strings.ToLower(label), "day pass")
}

// DeriveUniqueID picks the dedup key for a transaction: the payment id,
// else the transaction id, else a stable hash of the raw payload so
// replayed deliveries of the same event still collapse to one key.
func DeriveUniqueID(userPaymentID, transactionID string, rawPayload []byte) string {
	if userPaymentID != "" {
		return userPaymentID
	}
	if transactionID != "" {
		return transactionID
	}
	return fmt.Sprintf("%x", sha256.Sum256(rawPayload))
}
