package service

import (
	"context"
	"fmt"

	"github.com/bstrong/door-access/pkg/events"
	"github.com/bstrong/door-access/pkg/logger"
)

// Sweep deletes records older than the retention age across all three
// collections and reports the count. Best-effort housekeeping; partial
// deletion before a failure is acceptable.
func (e *Engine) Sweep(ctx context.Context) (int64, error) {
	cutoff := e.now().Add(-e.cfg.Webhooks.RetentionAge)

	deleted, err := e.store.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		e.alerter.Developer(ctx, fmt.Sprintf("Retention sweep failed: %v", err))
		return 0, fmt.Errorf("retention sweep: %v: %w", err, ErrDependency)
	}

	logger.InfoContext(ctx, "Retention sweep completed", "deleted", deleted)

	e.publish(ctx, events.AccessSwept, events.AccessSweptEvent{
		Deleted: deleted,
		SweptAt: e.now(),
	})

	return deleted, nil
}
