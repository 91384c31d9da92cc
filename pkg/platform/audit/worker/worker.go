package worker

import (
	"context"
	"log/slog"

	audit "signet/pkg/platform/audit"
)

// Worker consumes audit events from a channel and persists them. A write
// failure is logged and the worker keeps draining; audit delivery is
// best-effort and must not take the server down.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func New(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run drains the inbox until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.store.Append(ctx, event); err != nil {
				w.logger.ErrorContext(ctx, "audit append failed",
					"type", event.Type,
					"error", err,
				)
			}
		}
	}
}
