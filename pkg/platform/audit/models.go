// Package audit defines the audit event model shared by publishers, stores,
// and the background worker. Domain code emits events through a Recorder;
// delivery and retention are infrastructure concerns behind the Store
// interface.
package audit

import (
	"context"
	"time"
)

// EventType names an auditable action.
type EventType string

const (
	// Security events - feed into SIEM and alerting.
	EventLoginFailed EventType = "login_failed"
	EventTOTPFailed  EventType = "totp_failed"
	EventBadRedirect EventType = "oauth2_bad_redirect"

	// Operations events - routine activity.
	EventLoginSucceeded EventType = "login_succeeded"
	EventTokenIssued    EventType = "token_issued"
	EventCodeIssued     EventType = "code_issued"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	// Subject identifies the entity involved: a user ID when resolved,
	// otherwise the claimed username or client ID.
	Subject   string `json:"subject,omitempty"`
	ClientID  string `json:"client_id,omitempty"`
	ClientIP  string `json:"client_ip,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// Store persists audit events. Implementations must be safe for concurrent
// use; Append may block on I/O.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Recorder is the emission side handed to domain services. Record must not
// block the request path; losing an event under pressure is preferred over
// stalling an authorization.
type Recorder interface {
	Record(ctx context.Context, event Event)
}
