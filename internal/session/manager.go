package session

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"signet/internal/user"
	"signet/pkg/platform/sentinel"
)

const cookieName = "signet_session"

// Manager turns the session cookie into an explicit handle the authorize
// flow can branch on. Handlers call Current to learn whether the browser is
// already authenticated and Establish after a successful login; neither the
// state machine nor the stores touch cookies.
type Manager struct {
	sessions Store
	users    user.Store
	ttl      time.Duration
}

// NewManager constructs a Manager over the given stores.
func NewManager(sessions Store, users user.Store, ttl time.Duration) *Manager {
	return &Manager{sessions: sessions, users: users, ttl: ttl}
}

// Current resolves the request's session cookie to its user. Missing
// cookies, unknown or expired sessions, and vanished users all read as "no
// session"; infrastructure failures are returned so callers do not silently
// downgrade an outage into a login prompt.
func (m *Manager) Current(ctx context.Context, r *http.Request) (*user.User, error) {
	cookie, err := r.Cookie(cookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	sess, err := m.sessions.FindByID(ctx, cookie.Value)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(time.Now()) {
		_ = m.sessions.Delete(ctx, sess.ID)
		return nil, nil
	}

	u, err := m.users.FindByID(ctx, sess.UserID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// Establish creates a session for the authenticated user and sets the
// cookie on the response.
func (m *Manager) Establish(ctx context.Context, w http.ResponseWriter, u *user.User) error {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(m.ttl),
	}
	if err := m.sessions.Save(ctx, sess); err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
