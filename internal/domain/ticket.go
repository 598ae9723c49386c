package domain

import "time"

// PinChangeTicket maps a phone number to the guest credential it may
// self-service modify. At most one live ticket per phone; terminal on
// the first successful PIN change, on expiry, or via retention sweep.
type PinChangeTicket struct {
	Phone     string // E.164
	GuestID   string
	CreatedAt time.Time
}

// Expired reports whether the self-service window closed.
func (t PinChangeTicket) Expired(now time.Time, ttl time.Duration) bool {
	return now.After(t.CreatedAt.Add(ttl))
}
