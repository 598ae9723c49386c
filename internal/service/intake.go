package service

import (
	"context"
	"fmt"

	"github.com/bstrong/door-access/internal/domain"
	"github.com/bstrong/door-access/pkg/events"
	"github.com/bstrong/door-access/pkg/logger"
)

// HandleIntake stores a pending customer captured by the intake form.
// Events for other forms are acknowledged and dropped; re-submissions for
// the same customer overwrite the earlier record.
func (e *Engine) HandleIntake(ctx context.Context, event domain.FormEvent) (Outcome, error) {
	if event.FormID != e.cfg.Webhooks.FormID {
		logger.InfoContext(ctx, "Ignoring intake webhook for other form", "form_id", event.FormID)
		return OutcomeIgnoredForm, nil
	}

	if event.CustomerID == "" {
		return "", fmt.Errorf("intake event missing customerId: %w", ErrValidation)
	}

	first, last, phoneRaw, ok := extractAnswers(event.QuestionsAndAnswers)
	if !ok {
		e.alerter.Developer(ctx, fmt.Sprintf("Failed to process intake form for customer %s: malformed answers", event.CustomerID))
		return "", fmt.Errorf("intake event has malformed answers: %w", ErrValidation)
	}

	pending := domain.PendingCustomer{
		CustomerID: event.CustomerID,
		FirstName:  first,
		LastName:   last,
		Phone:      phoneRaw,
	}

	if err := e.store.UpsertPendingCustomer(ctx, pending); err != nil {
		e.alerter.Developer(ctx, fmt.Sprintf("Failed to store intake form for customer %s: %v", event.CustomerID, err))
		return "", fmt.Errorf("store pending customer: %v: %w", err, ErrDependency)
	}

	logger.InfoContext(ctx, "Stored pending customer", "customer_id", event.CustomerID)

	e.publish(ctx, events.CustomerPending, events.CustomerPendingEvent{
		CustomerID: event.CustomerID,
		FirstName:  first,
		LastName:   last,
		ReceivedAt: e.now(),
	})

	return OutcomeStored, nil
}

// extractAnswers pulls first name, last name and raw phone out of the
// positional question list.
func extractAnswers(answers []domain.QuestionAnswer) (first, last, phoneRaw string, ok bool) {
	if len(answers) < 3 {
		return "", "", "", false
	}
	for _, qa := range answers[:3] {
		if len(qa.Answer) == 0 {
			return "", "", "", false
		}
	}
	return answers[0].Answer[0], answers[1].Answer[0], answers[2].Answer[0], true
}

func (e *Engine) publish(ctx context.Context, subject string, payload interface{}) {
	if err := e.bus.Publish(ctx, subject, payload); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
