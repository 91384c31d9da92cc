package audit

import (
	"context"
	"log/slog"
	"time"

	"signet/pkg/requestcontext"
)

// Log is the channel-backed Recorder used by the authorization flow. Events
// are enriched with request metadata and handed to the worker's inbox; when
// the inbox is full the event is dropped and counted rather than blocking
// the request.
type Log struct {
	inbox  chan Event
	logger *slog.Logger
}

// NewLog builds a Recorder with the given inbox capacity.
func NewLog(capacity int, logger *slog.Logger) *Log {
	if capacity <= 0 {
		capacity = 1024
	}
	return &Log{
		inbox:  make(chan Event, capacity),
		logger: logger,
	}
}

// Inbox exposes the consuming side for the worker.
func (l *Log) Inbox() <-chan Event {
	return l.inbox
}

// Record enriches the event from context and enqueues it without blocking.
func (l *Log) Record(ctx context.Context, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}

	select {
	case l.inbox <- event:
	default:
		l.logger.WarnContext(ctx, "audit inbox full, event dropped",
			"type", event.Type,
			"subject", event.Subject,
		)
	}
}
