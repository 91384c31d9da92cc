package authorize

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/suite"

	"signet/internal/client"
	"signet/internal/platform/metrics"
	"signet/internal/token"
	"signet/internal/user"
	dErrors "signet/pkg/domain-errors"
	"signet/pkg/platform/audit"
	"signet/pkg/requestcontext"
)

// Collectors register on the default registry, so the package shares one set.
var testMetrics = metrics.New()

// recorderStub captures audit events synchronously for assertions.
type recorderStub struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorderStub) Record(_ context.Context, event audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recorderStub) byType(t audit.EventType) []audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Event
	for _, e := range r.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type ServiceSuite struct {
	suite.Suite
	ctx      context.Context
	clients  *client.InMemoryDirectory
	users    *user.InMemoryStore
	issuer   *token.Issuer
	auditor  *recorderStub
	service  *Service
	alice    *user.User
	totpUser *user.User
	totpKey  string
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctx = context.Background()
	s.clients = client.NewInMemory()
	s.users = user.NewInMemory()
	s.auditor = &recorderStub{}

	codes := token.NewInMemoryCodeStore()
	s.issuer = token.NewIssuer([]byte("test-signing-key"), "signet-test", time.Hour, 10*time.Minute, codes)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = NewService(s.clients, user.NewVerifier(s.users), s.issuer, s.auditor, testMetrics, logger)

	now := time.Now()
	c, err := client.New("abc", "Test App", []string{"https://app.example/cb"}, []string{"code", "token"}, now)
	s.Require().NoError(err)
	s.Require().NoError(s.clients.Register(s.ctx, c))

	hash, err := user.HashPassword("correct horse")
	s.Require().NoError(err)
	s.alice = &user.User{ID: "user-alice", Username: "alice", PasswordHash: hash, CreatedAt: now}
	s.Require().NoError(s.users.Save(s.ctx, s.alice))

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "signet-test", AccountName: "bob"})
	s.Require().NoError(err)
	s.totpKey = key.Secret()
	s.totpUser = &user.User{ID: "user-bob", Username: "bob", PasswordHash: hash, TOTPSecret: s.totpKey, CreatedAt: now}
	s.Require().NoError(s.users.Save(s.ctx, s.totpUser))
}

func (s *ServiceSuite) request(rt ResponseType, state string) Request {
	return Request{
		ResponseType: rt,
		ClientID:     "abc",
		RedirectURI:  "https://app.example/cb",
		State:        state,
	}
}

func (s *ServiceSuite) TestResolve() {
	s.Run("resolves a registered client with a trusted redirect", func() {
		c, err := s.service.Resolve(s.ctx, s.request(ResponseTypeCode, "xyz"))
		s.Require().NoError(err)
		s.Equal("abc", c.ClientID)
	})

	s.Run("unknown client surfaces as generic bad request", func() {
		req := s.request(ResponseTypeCode, "")
		req.ClientID = "nope"
		_, err := s.service.Resolve(s.ctx, req)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		s.Equal("Client id incorrect", dErrors.MessageOf(err))
	})

	s.Run("redirect match is exact and case-sensitive", func() {
		for _, uri := range []string{
			"https://app.example/cb/",
			"https://app.example/CB",
			"https://app.example/cb?extra=1",
			"https://evil.example/cb",
		} {
			req := s.request(ResponseTypeCode, "")
			req.RedirectURI = uri
			_, err := s.service.Resolve(s.ctx, req)
			s.Require().Error(err, "redirect_uri=%q", uri)
			s.True(dErrors.HasCode(err, dErrors.CodeBadRequest))
		}
	})

	s.Run("untrusted redirect emits an audit event", func() {
		req := s.request(ResponseTypeCode, "")
		req.RedirectURI = "https://evil.example/cb"
		_, err := s.service.Resolve(s.ctx, req)
		s.Require().Error(err)

		events := s.auditor.byType(audit.EventBadRedirect)
		s.Require().NotEmpty(events)
		s.Equal("https://evil.example/cb", events[len(events)-1].Reason)
	})
}

func (s *ServiceSuite) TestAuthenticate() {
	s.Run("valid password succeeds without TOTP enrollment", func() {
		u, err := s.service.Authenticate(s.ctx, Credentials{Username: "alice", Password: "correct horse"})
		s.Require().NoError(err)
		s.Equal(s.alice.ID, u.ID)
		s.NotEmpty(s.auditor.byType(audit.EventLoginSucceeded))
	})

	s.Run("unknown username and wrong password are indistinguishable", func() {
		_, errUnknown := s.service.Authenticate(s.ctx, Credentials{Username: "ghost", Password: "whatever"})
		_, errWrong := s.service.Authenticate(s.ctx, Credentials{Username: "alice", Password: "wrong"})

		for _, err := range []error{errUnknown, errWrong} {
			s.Require().Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
			s.Equal("Incorrect username or password", dErrors.MessageOf(err))
		}
		s.Len(s.auditor.byType(audit.EventLoginFailed), 2)
	})

	s.Run("enrolled user must present a valid TOTP code", func() {
		_, err := s.service.Authenticate(s.ctx, Credentials{Username: "bob", Password: "correct horse", TOTP: "000000"})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUnauthorized))
		s.Equal("Incorrect TOTP code", dErrors.MessageOf(err))
		s.NotEmpty(s.auditor.byType(audit.EventTOTPFailed))

		code, err := totp.GenerateCode(s.totpKey, time.Now())
		s.Require().NoError(err)
		u, err := s.service.Authenticate(s.ctx, Credentials{Username: "bob", Password: "correct horse", TOTP: code})
		s.Require().NoError(err)
		s.Equal(s.totpUser.ID, u.ID)
	})
}

func (s *ServiceSuite) TestGrantCode() {
	c, err := s.service.Resolve(s.ctx, s.request(ResponseTypeCode, "xyz"))
	s.Require().NoError(err)

	s.Run("encodes code and state in the query string", func() {
		location, err := s.service.Grant(s.ctx, c, s.alice, s.request(ResponseTypeCode, "xyz"))
		s.Require().NoError(err)
		s.True(strings.HasPrefix(location, "https://app.example/cb?code="), location)
		s.True(strings.HasSuffix(location, "&state=xyz"), location)
	})

	s.Run("omits state when absent", func() {
		location, err := s.service.Grant(s.ctx, c, s.alice, s.request(ResponseTypeCode, ""))
		s.Require().NoError(err)
		s.NotContains(location, "state=")
	})

	s.Run("sequential grants yield distinct codes", func() {
		first, err := s.service.Grant(s.ctx, c, s.alice, s.request(ResponseTypeCode, ""))
		s.Require().NoError(err)
		second, err := s.service.Grant(s.ctx, c, s.alice, s.request(ResponseTypeCode, ""))
		s.Require().NoError(err)
		s.NotEqual(first, second)
	})
}

func (s *ServiceSuite) TestGrantToken() {
	c, err := s.service.Resolve(s.ctx, s.request(ResponseTypeToken, "xyz"))
	s.Require().NoError(err)

	ctx := requestcontext.WithTime(s.ctx, time.Now())
	location, err := s.service.Grant(ctx, c, s.alice, s.request(ResponseTypeToken, "xyz"))
	s.Require().NoError(err)

	s.True(strings.HasPrefix(location, "https://app.example/cb#access_token="), location)
	s.Contains(location, "&token_type=bearer")
	s.True(strings.HasSuffix(location, "&state=xyz"), location)

	expiresIn := extractParam(s.T(), location, "expires_in")
	seconds, err := strconv.Atoi(expiresIn)
	s.Require().NoError(err)
	s.GreaterOrEqual(seconds, 3600)
	s.LessOrEqual(seconds, 3601)
}

func extractParam(t *testing.T, location, key string) string {
	t.Helper()
	for _, part := range strings.Split(location, "&") {
		if i := strings.Index(part, key+"="); i >= 0 {
			return part[i+len(key)+1:]
		}
	}
	t.Fatalf("parameter %q not found in %q", key, location)
	return ""
}
