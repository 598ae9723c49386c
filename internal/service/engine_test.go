package service

import (
	"context"
	"testing"
	"time"

	"github.com/bstrong/door-access/internal/domain"
	"github.com/bstrong/door-access/internal/remotelock"
	"github.com/bstrong/door-access/internal/vagaro"
	"github.com/bstrong/door-access/pkg/config"
)

// ---------- Mocks ----------

type mockStore struct {
	pending map[string]domain.PendingCustomer
	markers map[string]bool
	tickets map[string]domain.PinChangeTicket

	upsertPendingErr error
	getPendingErr    error
	markErr          error
	upsertTicketErr  error
	getTicketErr     error
	sweepErr         error

	sweepDeleted int64
	sweepCutoff  time.Time
}

func newMockStore() *mockStore {
	return &mockStore{
		pending: make(map[string]domain.PendingCustomer),
		markers: make(map[string]bool),
		tickets: make(map[string]domain.PinChangeTicket),
	}
}

func (m *mockStore) UpsertPendingCustomer(_ context.Context, c domain.PendingCustomer) error {
	if m.upsertPendingErr != nil {
		return m.upsertPendingErr
	}
	c.CreatedAt = time.Now()
	m.pending[c.CustomerID] = c
	return nil
}

func (m *mockStore) GetPendingCustomer(_ context.Context, customerID string) (*domain.PendingCustomer, error) {
	if m.getPendingErr != nil {
		return nil, m.getPendingErr
	}
	c, ok := m.pending[customerID]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *mockStore) DeletePendingCustomer(_ context.Context, customerID string) error {
	delete(m.pending, customerID)
	return nil
}

func (m *mockStore) MarkTransaction(_ context.Context, uniqueID string) (bool, error) {
	if m.markErr != nil {
		return false, m.markErr
	}
	if m.markers[uniqueID] {
		return true, nil
	}
	m.markers[uniqueID] = true
	return false, nil
}

func (m *mockStore) ReleaseTransaction(_ context.Context, uniqueID string) error {
	delete(m.markers, uniqueID)
	return nil
}

func (m *mockStore) UpsertTicket(_ context.Context, t domain.PinChangeTicket) error {
	if m.upsertTicketErr != nil {
		return m.upsertTicketErr
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	m.tickets[t.Phone] = t
	return nil
}

func (m *mockStore) GetTicket(_ context.Context, phoneNumber string) (*domain.PinChangeTicket, error) {
	if m.getTicketErr != nil {
		return nil, m.getTicketErr
	}
	t, ok := m.tickets[phoneNumber]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (m *mockStore) DeleteTicket(_ context.Context, phoneNumber string) error {
	delete(m.tickets, phoneNumber)
	return nil
}

func (m *mockStore) DeleteOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.sweepCutoff = cutoff
	if m.sweepErr != nil {
		return 0, m.sweepErr
	}
	return m.sweepDeleted, nil
}

type createdGuest struct {
	name     string
	startsAt time.Time
	endsAt   time.Time
}

type mockAccess struct {
	guestID string
	pin     string

	createErr error
	grantErr  error
	updateErr error

	created     []createdGuest
	granted     []string
	updatedPINs []string
}

func (m *mockAccess) CreateGuest(_ context.Context, name string, startsAt, endsAt time.Time) (remotelock.GuestCredential, error) {
	if m.createErr != nil {
		return remotelock.GuestCredential{}, m.createErr
	}
	m.created = append(m.created, createdGuest{name: name, startsAt: startsAt, endsAt: endsAt})
	return remotelock.GuestCredential{ID: m.guestID, PIN: m.pin}, nil
}

func (m *mockAccess) GrantAccess(_ context.Context, guestID string) error {
	if m.grantErr != nil {
		return m.grantErr
	}
	m.granted = append(m.granted, guestID)
	return nil
}

func (m *mockAccess) UpdatePIN(_ context.Context, guestID, pin string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updatedPINs = append(m.updatedPINs, guestID+":"+pin)
	return nil
}

type mockDirectory struct {
	customer vagaro.Customer
	err      error
	calls    int
}

func (m *mockDirectory) LookupCustomer(_ context.Context, _ string) (vagaro.Customer, error) {
	m.calls++
	if m.err != nil {
		return vagaro.Customer{}, m.err
	}
	return m.customer, nil
}

type sentSMS struct {
	to   string
	body string
}

type mockMessenger struct {
	sent    []sentSMS
	sendErr error
}

func (m *mockMessenger) SendSMS(_ context.Context, to, body string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentSMS{to: to, body: body})
	return nil
}

type mockAlerter struct {
	developer []string
	owners    []string
}

func (m *mockAlerter) Developer(_ context.Context, message string) {
	m.developer = append(m.developer, message)
}

func (m *mockAlerter) Owners(_ context.Context, message string) {
	m.owners = append(m.owners, message)
}

type mockBus struct {
	subjects []string
}

func (m *mockBus) Publish(_ context.Context, subject string, _ interface{}) error {
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockBus) Close() error { return nil }

// ---------- Test fixture ----------

type fixture struct {
	engine    *Engine
	store     *mockStore
	access    *mockAccess
	directory *mockDirectory
	messenger *mockMessenger
	alerter   *mockAlerter
	bus       *mockBus
	cfg       *config.Config
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		store:     newMockStore(),
		access:    &mockAccess{guestID: "guest-1", pin: "8421"},
		directory: &mockDirectory{},
		messenger: &mockMessenger{},
		alerter:   &mockAlerter{},
		bus:       &mockBus{},
		cfg:       config.Load(),
	}

	engine, err := NewEngine(f.store, f.access, f.directory, f.messenger, f.alerter, f.bus, f.cfg)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	f.engine = engine
	return f
}

// setNow pins the engine clock.
func (f *fixture) setNow(t time.Time) {
	f.engine.now = func() time.Time { return t }
}
