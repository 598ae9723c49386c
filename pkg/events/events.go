package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/bstrong/door-access/pkg/logger"
)

type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSEventBus struct {
	conn *nats.Conn
}

func NewNATSEventBus(url string) (*NATSEventBus, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSEventBus{conn: conn}, nil
}

func (n *NATSEventBus) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSEventBus) Close() error {
	n.conn.Close()
	return nil
}

// NoopBus is used when no NATS URL is configured; publishing is a silent
// success so the webhook path never depends on the bus being up.
type NoopBus struct{}

func NewNoopBus() *NoopBus { return &NoopBus{} }

func (n *NoopBus) Publish(ctx context.Context, subject string, data interface{}) error {
	return nil
}

func (n *NoopBus) Close() error { return nil }

// Event subjects
const (
	CustomerPending  = "customer.pending"
	AccessGranted    = "access.granted"
	AccessPinChanged = "access.pin_changed"
	AccessSwept      = "access.swept"
)

// Event payloads
type CustomerPendingEvent struct {
	CustomerID string    `json:"customer_id"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	ReceivedAt time.Time `json:"received_at"`
}

type AccessGrantedEvent struct {
	CustomerID string    `json:"customer_id"`
	GuestID    string    `json:"guest_id"`
	ItemSold   string    `json:"item_sold"`
	StartsAt   time.Time `json:"starts_at"`
	EndsAt     time.Time `json:"ends_at"`
	Notified   bool      `json:"notified"`
	GrantedAt  time.Time `json:"granted_at"`
}

type AccessPinChangedEvent struct {
	GuestID   string    `json:"guest_id"`
	ChangedAt time.Time `json:"changed_at"`
}

type AccessSweptEvent struct {
	Deleted int64     `json:"deleted"`
	SweptAt time.Time `json:"swept_at"`
}
