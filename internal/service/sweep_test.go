package service

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSweepDeletesStaleRecords(t *testing.T) {
	f := newFixture(t)
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	f.setNow(now)
	f.store.sweepDeleted = 7

	deleted, err := f.engine.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if deleted != 7 {
		t.Fatalf("deleted = %d, want 7", deleted)
	}

	wantCutoff := now.Add(-f.cfg.Webhooks.RetentionAge)
	if !f.store.sweepCutoff.Equal(wantCutoff) {
		t.Fatalf("cutoff = %v, want %v", f.store.sweepCutoff, wantCutoff)
	}
}

func TestSweepFailureAlertsDeveloper(t *testing.T) {
	f := newFixture(t)
	f.store.sweepErr = errors.New("store down")

	_, err := f.engine.Sweep(context.Background())
	if !errors.Is(err, ErrDependency) {
		t.Fatalf("err = %v, want ErrDependency", err)
	}
	if len(f.alerter.developer) != 1 {
		t.Fatalf("developer alerts = %v, want 1", f.alerter.developer)
	}
}
