package store

import (
	"context"
	"time"

	"github.com/bstrong/door-access/internal/domain"
)

// Store is the single durable-persistence surface for the correlation
// engine. All handlers coordinate exclusively through it; there is no
// other cross-request state.
type Store interface {
	// Pending customers (intake form capture, keyed by CRM customer id).
	UpsertPendingCustomer(ctx context.Context, c domain.PendingCustomer) error
	GetPendingCustomer(ctx context.Context, customerID string) (*domain.PendingCustomer, error)
	DeletePendingCustomer(ctx context.Context, customerID string) error

	// Dedup markers for processed transactions. MarkTransaction is an
	// atomic create-if-absent: it returns true when the marker already
	// existed, so concurrent duplicate deliveries cannot both win.
	MarkTransaction(ctx context.Context, uniqueID string) (alreadyProcessed bool, err error)
	// ReleaseTransaction removes a marker after a terminal failure that
	// happened before any externally-visible side effect, so an upstream
	// webhook retry can run the transaction again.
	ReleaseTransaction(ctx context.Context, uniqueID string) error

	// PIN-change tickets, keyed by E.164 phone.
	UpsertTicket(ctx context.Context, t domain.PinChangeTicket) error
	GetTicket(ctx context.Context, phone string) (*domain.PinChangeTicket, error)
	DeleteTicket(ctx context.Context, phone string) error

	// DeleteOlderThan sweeps all three collections for records created
	// before cutoff and reports how many rows went away.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
