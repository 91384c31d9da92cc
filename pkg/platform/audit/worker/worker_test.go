package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "signet/pkg/platform/audit"
	"signet/pkg/platform/audit/store/memory"
)

func TestWorkerDrainsInbox(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.New()
	inbox := make(chan audit.Event, 8)
	w := New(store, inbox, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	inbox <- audit.Event{Type: audit.EventLoginSucceeded, Subject: "alice"}
	inbox <- audit.Event{Type: audit.EventCodeIssued, Subject: "alice", ClientID: "abc"}

	require.Eventually(t, func() bool {
		return len(store.Events()) == 2
	}, time.Second, 10*time.Millisecond)

	events := store.Events()
	assert.Equal(t, audit.EventLoginSucceeded, events[0].Type)
	assert.Equal(t, audit.EventCodeIssued, events[1].Type)
	assert.Equal(t, "abc", events[1].ClientID)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
