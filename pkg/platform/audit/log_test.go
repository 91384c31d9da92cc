package audit

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signet/pkg/requestcontext"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRecordEnrichesFromContext(t *testing.T) {
	l := NewLog(4, discardLogger())

	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	ctx = requestcontext.WithClientIP(ctx, "203.0.113.7")
	l.Record(ctx, Event{Type: EventLoginFailed, Subject: "alice"})

	event := <-l.Inbox()
	assert.Equal(t, EventLoginFailed, event.Type)
	assert.Equal(t, "alice", event.Subject)
	assert.Equal(t, "req-1", event.RequestID)
	assert.Equal(t, "203.0.113.7", event.ClientIP)
	assert.False(t, event.Timestamp.IsZero())
}

func TestRecordPreservesExplicitMetadata(t *testing.T) {
	l := NewLog(4, discardLogger())

	ctx := requestcontext.WithRequestID(context.Background(), "req-1")
	l.Record(ctx, Event{Type: EventTokenIssued, RequestID: "preset", ClientIP: "198.51.100.1"})

	event := <-l.Inbox()
	assert.Equal(t, "preset", event.RequestID)
	assert.Equal(t, "198.51.100.1", event.ClientIP)
}

func TestRecordDropsWhenFull(t *testing.T) {
	l := NewLog(1, discardLogger())
	ctx := context.Background()

	l.Record(ctx, Event{Type: EventLoginFailed, Subject: "first"})
	l.Record(ctx, Event{Type: EventLoginFailed, Subject: "second"}) // dropped, must not block

	event := <-l.Inbox()
	require.Equal(t, "first", event.Subject)
	select {
	case leftover := <-l.Inbox():
		t.Fatalf("expected empty inbox, got %+v", leftover)
	default:
	}
}
