package authorize

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"signet/internal/client"
	"signet/internal/platform/metrics"
	"signet/internal/token"
	"signet/internal/user"
	dErrors "signet/pkg/domain-errors"
	"signet/pkg/platform/audit"
	"signet/pkg/platform/sentinel"
	"signet/pkg/requestcontext"
)

var tracer = otel.Tracer("signet/internal/authorize")

// ClientDirectory resolves a client identifier to its registered metadata.
type ClientDirectory interface {
	FindByClientID(ctx context.Context, clientID string) (*client.Client, error)
}

// CredentialVerifier checks a user's identity claim.
type CredentialVerifier interface {
	FindByUsername(ctx context.Context, username string) (*user.User, error)
	VerifyPassword(u *user.User, password string) bool
	VerifyTOTP(u *user.User, code string) bool
}

// GrantIssuer mints the artifacts a successful authorization produces.
type GrantIssuer interface {
	IssueToken(ctx context.Context, c *client.Client, u *user.User) (*token.Token, error)
	IssueCode(ctx context.Context, c *client.Client, u *user.User) (*token.Code, error)
}

// Service is the authorization state machine. Each request runs
// validation, trust resolution, then either grant issuance (session or
// fresh login) or a re-prompt; collaborator calls are sequential because
// each step's outcome gates the next.
type Service struct {
	clients  ClientDirectory
	verifier CredentialVerifier
	issuer   GrantIssuer
	auditor  audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// NewService wires the state machine's collaborators.
func NewService(
	clients ClientDirectory,
	verifier CredentialVerifier,
	issuer GrantIssuer,
	auditor audit.Recorder,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		clients:  clients,
		verifier: verifier,
		issuer:   issuer,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
	}
}

// Resolve runs client trust resolution for a validated request. It must
// succeed before any redirect is constructed anywhere in the flow; an
// unvalidated redirect target is an open redirect.
//
// Unknown clients surface as a generic bad request so callers cannot probe
// which client IDs exist.
func (s *Service) Resolve(ctx context.Context, req Request) (*client.Client, error) {
	ctx, span := tracer.Start(ctx, "authorize.Resolve",
		trace.WithAttributes(attribute.String("oauth2.client_id", req.ClientID)))
	defer span.End()

	c, err := s.clients.FindByClientID(ctx, req.ClientID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.AuthorizeRequests.WithLabelValues("unknown_client").Inc()
			return nil, dErrors.New(dErrors.CodeBadRequest, "Client id incorrect")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "client lookup failed")
	}

	if !c.IsRedirectTrusted(req.RedirectURI) {
		s.metrics.AuthorizeRequests.WithLabelValues("untrusted_redirect").Inc()
		s.auditor.Record(ctx, audit.Event{
			Type:     audit.EventBadRedirect,
			Subject:  req.ClientID,
			ClientID: req.ClientID,
			Reason:   req.RedirectURI,
		})
		return nil, dErrors.New(dErrors.CodeBadRequest, `This value for "redirect_uri" is not permitted.`)
	}

	return c, nil
}

// Authenticate verifies the submitted credentials. All credential failures
// carry CodeUnauthorized and a message safe to show the user; unknown
// usernames and wrong passwords are indistinguishable from outside.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (*user.User, error) {
	ctx, span := tracer.Start(ctx, "authorize.Authenticate")
	defer span.End()

	u, err := s.verifier.FindByUsername(ctx, creds.Username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.recordLoginFailure(ctx, audit.EventLoginFailed, creds.Username, "unknown username")
			return nil, dErrors.New(dErrors.CodeUnauthorized, "Incorrect username or password")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "user lookup failed")
	}

	if !s.verifier.VerifyPassword(u, creds.Password) {
		s.recordLoginFailure(ctx, audit.EventLoginFailed, u.ID, "invalid password")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Incorrect username or password")
	}

	if !s.verifier.VerifyTOTP(u, creds.TOTP) {
		s.recordLoginFailure(ctx, audit.EventTOTPFailed, u.ID, "invalid totp code")
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Incorrect TOTP code")
	}

	s.metrics.LoginSuccesses.Inc()
	s.auditor.Record(ctx, audit.Event{
		Type:    audit.EventLoginSucceeded,
		Subject: u.ID,
	})
	return u, nil
}

// Grant produces the redirect location for a trusted client, an
// authenticated user, and a validated request. The caller must only pass a
// client returned by Resolve for the same request.
func (s *Service) Grant(ctx context.Context, c *client.Client, u *user.User, req Request) (string, error) {
	ctx, span := tracer.Start(ctx, "authorize.Grant",
		trace.WithAttributes(attribute.String("oauth2.response_type", req.ResponseType.String())))
	defer span.End()

	var location string
	switch req.ResponseType {
	case ResponseTypeToken:
		tok, err := s.issuer.IssueToken(ctx, c, u)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "token issuance failed")
		}
		location = req.RedirectURI + "#" + encodeParams(tokenParams(tok, req.State, requestcontext.Now(ctx)))
		s.auditor.Record(ctx, audit.Event{
			Type:     audit.EventTokenIssued,
			Subject:  u.ID,
			ClientID: c.ClientID,
		})
	case ResponseTypeCode:
		code, err := s.issuer.IssueCode(ctx, c, u)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "code issuance failed")
		}
		location = req.RedirectURI + "?" + encodeParams(codeParams(code, req.State))
		s.auditor.Record(ctx, audit.Event{
			Type:     audit.EventCodeIssued,
			Subject:  u.ID,
			ClientID: c.ClientID,
		})
	}

	s.metrics.GrantsIssued.WithLabelValues(req.ResponseType.String()).Inc()
	s.metrics.AuthorizeRequests.WithLabelValues("granted").Inc()
	return location, nil
}

func tokenParams(tok *token.Token, state string, now time.Time) []param {
	expiresIn := int64(tok.ExpiresAt.Sub(now).Round(time.Second).Seconds())
	if expiresIn < 0 {
		expiresIn = 0
	}
	params := []param{
		{"access_token", tok.AccessToken},
		{"token_type", tok.TokenType},
		{"expires_in", strconv.FormatInt(expiresIn, 10)},
	}
	if state != "" {
		params = append(params, param{"state", state})
	}
	return params
}

func codeParams(code *token.Code, state string) []param {
	params := []param{{"code", code.Code}}
	if state != "" {
		params = append(params, param{"state", state})
	}
	return params
}

func (s *Service) recordLoginFailure(ctx context.Context, eventType audit.EventType, subject, reason string) {
	s.metrics.LoginFailures.Inc()
	s.auditor.Record(ctx, audit.Event{
		Type:    eventType,
		Subject: subject,
		Reason:  reason,
	})
	s.logger.WarnContext(ctx, "login attempt failed",
		"reason", reason,
		"request_id", requestcontext.RequestID(ctx),
	)
}
