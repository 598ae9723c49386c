package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bstrong/door-access/internal/notify"
	"github.com/bstrong/door-access/internal/remotelock"
	"github.com/bstrong/door-access/internal/store"
	"github.com/bstrong/door-access/internal/vagaro"
	"github.com/bstrong/door-access/pkg/config"
	"github.com/bstrong/door-access/pkg/events"
)

// AccessClient mints and maintains guest credentials on the lock vendor.
type AccessClient interface {
	CreateGuest(ctx context.Context, name string, startsAt, endsAt time.Time) (remotelock.GuestCredential, error)
	GrantAccess(ctx context.Context, guestID string) error
	UpdatePIN(ctx context.Context, guestID, pin string) error
}

// DirectoryClient resolves a customer id to name and phone in the CRM.
type DirectoryClient interface {
	LookupCustomer(ctx context.Context, customerID string) (vagaro.Customer, error)
}

// Alerter is the operational notification channel (developer + owners).
type Alerter interface {
	Developer(ctx context.Context, message string)
	Owners(ctx context.Context, message string)
}

// Engine is the correlation core: it ties the three webhook streams
// together through the durable store and drives a customer from unknown
// to door code to expiry.
type Engine struct {
	store     store.Store
	access    AccessClient
	directory DirectoryClient
	messenger notify.Messenger
	alerter   Alerter
	bus       events.Publisher
	cfg       *config.Config
	loc       *time.Location
	now       func() time.Time
}

func NewEngine(
	st store.Store,
	access AccessClient,
	directory DirectoryClient,
	messenger notify.Messenger,
	alerter Alerter,
	bus events.Publisher,
	cfg *config.Config,
) (*Engine, error) {
	loc, err := time.LoadLocation(cfg.Facility.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load facility timezone %q: %w", cfg.Facility.Timezone, err)
	}

	return &Engine{
		store:     st,
		access:    access,
		directory: directory,
		messenger: messenger,
		alerter:   alerter,
		bus:       bus,
		cfg:       cfg,
		loc:       loc,
		now:       time.Now,
	}, nil
}
