// Package handler exposes the authorize endpoint over HTTP. It owns
// transport concerns only: parameter extraction, status codes, headers, and
// the login page; protocol decisions live in the authorize service.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"signet/internal/authorize"
	"signet/internal/client"
	"signet/internal/platform/metrics"
	"signet/internal/platform/middleware"
	"signet/internal/user"
	dErrors "signet/pkg/domain-errors"
	"signet/pkg/requestcontext"
)

// Service is the authorization state machine consumed by this handler.
type Service interface {
	Resolve(ctx context.Context, req authorize.Request) (*client.Client, error)
	Authenticate(ctx context.Context, creds authorize.Credentials) (*user.User, error)
	Grant(ctx context.Context, c *client.Client, u *user.User, req authorize.Request) (string, error)
}

// SessionHandle is the explicit session access the flow branches on.
type SessionHandle interface {
	Current(ctx context.Context, r *http.Request) (*user.User, error)
	Establish(ctx context.Context, w http.ResponseWriter, u *user.User) error
}

// Handler serves GET and POST /authorize.
type Handler struct {
	service  Service
	sessions SessionHandle
	form     *LoginForm
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// New constructs the authorize Handler.
func New(service Service, sessions SessionHandle, logger *slog.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		form:     NewLoginForm(),
		logger:   logger,
		metrics:  m,
	}
}

// Register mounts the authorize routes with the standard middleware chain.
func (h *Handler) Register(r chi.Router) {
	router := chi.NewRouter()
	router.Use(middleware.Recovery(h.logger))
	router.Use(middleware.RequestID)
	router.Use(middleware.Metadata)
	router.Use(middleware.Logger(h.logger))
	router.Use(middleware.Latency(h.metrics))
	router.Use(middleware.Timeout(30 * time.Second))
	router.Get("/authorize", h.handleGet)
	router.Post("/authorize", h.handlePost)

	r.Mount("/", router)
}

// handleGet either issues a grant directly (existing session) or renders
// the login form. Validation and trust resolution run first; their failures
// are terminal 400s with no Location header.
func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := authorize.ParseRequest(r.URL.Query())
	if err != nil {
		h.metrics.AuthorizeRequests.WithLabelValues("malformed").Inc()
		h.writeProtocolError(w, r, err)
		return
	}

	c, err := h.service.Resolve(ctx, req)
	if err != nil {
		h.writeProtocolError(w, r, err)
		return
	}

	u, err := h.sessions.Current(ctx, r)
	if err != nil {
		h.writeInternalError(w, r, "session lookup failed", err)
		return
	}
	if u != nil {
		h.redirectGrant(w, r, c, u, req)
		return
	}

	h.metrics.AuthorizeRequests.WithLabelValues("login_form").Inc()
	h.renderLogin(w, r, r.URL.Query().Get("msg"), req)
}

// handlePost authenticates the submitted credentials. Credential failures
// redirect back to /authorize so a fresh GET re-renders the form with the
// message; protocol errors terminate without any redirect.
func (h *Handler) handlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseForm(); err != nil {
		h.metrics.AuthorizeRequests.WithLabelValues("malformed").Inc()
		h.writeProtocolError(w, r, dErrors.New(dErrors.CodeBadRequest, "invalid form body"))
		return
	}

	req, err := authorize.ParseRequest(r.PostForm)
	if err != nil {
		h.metrics.AuthorizeRequests.WithLabelValues("malformed").Inc()
		h.writeProtocolError(w, r, err)
		return
	}

	c, err := h.service.Resolve(ctx, req)
	if err != nil {
		h.writeProtocolError(w, r, err)
		return
	}

	u, err := h.service.Authenticate(ctx, authorize.ParseCredentials(r.PostForm))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			h.metrics.AuthorizeRequests.WithLabelValues("credential_retry").Inc()
			http.Redirect(w, r, authorize.LoginRedirect(req, dErrors.MessageOf(err)), http.StatusFound)
			return
		}
		h.writeInternalError(w, r, "authentication failed", err)
		return
	}

	if err := h.sessions.Establish(ctx, w, u); err != nil {
		h.writeInternalError(w, r, "session establishment failed", err)
		return
	}

	h.redirectGrant(w, r, c, u, req)
}

func (h *Handler) redirectGrant(w http.ResponseWriter, r *http.Request, c *client.Client, u *user.User, req authorize.Request) {
	location, err := h.service.Grant(r.Context(), c, u, req)
	if err != nil {
		h.writeInternalError(w, r, "grant issuance failed", err)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.Redirect(w, r, location, http.StatusFound)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, msg string, req authorize.Request) {
	fields := []HiddenField{
		{"client_id", req.ClientID},
		{"state", req.State},
		{"redirect_uri", req.RedirectURI},
		{"response_type", req.ResponseType.String()},
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.form.Render(w, msg, "", fields); err != nil {
		h.logger.ErrorContext(r.Context(), "login form render failed",
			"error", err,
			"request_id", requestcontext.RequestID(r.Context()),
		)
	}
}

// writeProtocolError surfaces malformed-request and trust failures as local
// 400s. These paths must never set a Location header: the redirect target
// has not passed (or has failed) the trust check.
func (h *Handler) writeProtocolError(w http.ResponseWriter, r *http.Request, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.writeInternalError(w, r, "authorize request failed", err)
		return
	}
	h.logger.WarnContext(r.Context(), "authorize request rejected",
		"error", err.Error(),
		"request_id", requestcontext.RequestID(r.Context()),
	)
	http.Error(w, dErrors.MessageOf(err), dErrors.StatusOf(err))
}

func (h *Handler) writeInternalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.ErrorContext(r.Context(), msg,
		"error", err.Error(),
		"request_id", requestcontext.RequestID(r.Context()),
	)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
