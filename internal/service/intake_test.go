package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bstrong/door-access/internal/domain"
	"github.com/bstrong/door-access/pkg/events"
)

func intakeEvent(formID, customerID string, answers ...string) domain.FormEvent {
	event := domain.FormEvent{FormID: formID, CustomerID: customerID}
	for _, a := range answers {
		event.QuestionsAndAnswers = append(event.QuestionsAndAnswers, domain.QuestionAnswer{Answer: []string{a}})
	}
	return event
}

func TestHandleIntakeStoresPendingCustomer(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.engine.HandleIntake(context.Background(),
		intakeEvent(f.cfg.Webhooks.FormID, "C1", "Jane", "Doe", "508-555-0100"))
	if err != nil {
		t.Fatalf("HandleIntake: %v", err)
	}
	if outcome != OutcomeStored {
		t.Fatalf("outcome = %q, want %q", outcome, OutcomeStored)
	}

	stored, ok := f.store.pending["C1"]
	if !ok {
		t.Fatal("pending customer not stored")
	}
	if stored.FirstName != "Jane" || stored.LastName != "Doe" || stored.Phone != "508-555-0100" {
		t.Fatalf("stored = %+v", stored)
	}

	if len(f.bus.subjects) != 1 || f.bus.subjects[0] != events.CustomerPending {
		t.Fatalf("published subjects = %v", f.bus.subjects)
	}
}

func TestHandleIntakeIgnoresOtherForms(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.engine.HandleIntake(context.Background(),
		intakeEvent("some-other-form", "C1", "Jane", "Doe", "508-555-0100"))
	if err != nil {
		t.Fatalf("HandleIntake: %v", err)
	}
	if outcome != OutcomeIgnoredForm {
		t.Fatalf("outcome = %q, want %q", outcome, OutcomeIgnoredForm)
	}
	if len(f.store.pending) != 0 {
		t.Fatal("unexpected pending record stored")
	}
}

func TestHandleIntakeMissingCustomerID(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.HandleIntake(context.Background(),
		intakeEvent(f.cfg.Webhooks.FormID, "", "Jane", "Doe", "508-555-0100"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestHandleIntakeMalformedAnswers(t *testing.T) {
	f := newFixture(t)

	_, err := f.engine.HandleIntake(context.Background(),
		intakeEvent(f.cfg.Webhooks.FormID, "C1", "Jane"))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
	if len(f.alerter.developer) != 1 {
		t.Fatalf("developer alerts = %v, want 1", f.alerter.developer)
	}
}

func TestHandleIntakeResubmissionOverwrites(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.engine.HandleIntake(ctx,
		intakeEvent(f.cfg.Webhooks.FormID, "C1", "Jane", "Doe", "bad number")); err != nil {
		t.Fatalf("first intake: %v", err)
	}
	if _, err := f.engine.HandleIntake(ctx,
		intakeEvent(f.cfg.Webhooks.FormID, "C1", "Jane", "Doe", "508-555-0100")); err != nil {
		t.Fatalf("second intake: %v", err)
	}

	if len(f.store.pending) != 1 {
		t.Fatalf("pending records = %d, want 1", len(f.store.pending))
	}
	if got := f.store.pending["C1"].Phone; got != "508-555-0100" {
		t.Fatalf("phone = %q, want last submission to win", got)
	}
}

func TestHandleIntakeStoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.upsertPendingErr = errors.New("store down")

	_, err := f.engine.HandleIntake(context.Background(),
		intakeEvent(f.cfg.Webhooks.FormID, "C1", "Jane", "Doe", "508-555-0100"))
	if !errors.Is(err, ErrDependency) {
		t.Fatalf("err = %v, want ErrDependency", err)
	}
	if len(f.alerter.developer) != 1 {
		t.Fatalf("developer alerts = %v, want 1", f.alerter.developer)
	}
}
