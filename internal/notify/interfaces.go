package notify

import "context"

// Messenger delivers a single text message. Pass/fail only; there is no
// delivery tracking and failures are never retried.
type Messenger interface {
	SendSMS(ctx context.Context, to, body string) error
}
