package token

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"signet/internal/client"
	"signet/internal/user"
)

// Issuer mints access tokens and authorization codes. Tokens are HS256 JWTs
// carrying the (user, client) binding; codes are opaque UUIDs persisted in
// the code store for the later exchange step.
type Issuer struct {
	signingKey []byte
	issuer     string
	tokenTTL   time.Duration
	codeTTL    time.Duration
	codes      CodeStore
}

// NewIssuer constructs an Issuer.
func NewIssuer(signingKey []byte, issuer string, tokenTTL, codeTTL time.Duration, codes CodeStore) *Issuer {
	return &Issuer{
		signingKey: signingKey,
		issuer:     issuer,
		tokenTTL:   tokenTTL,
		codeTTL:    codeTTL,
		codes:      codes,
	}
}

// IssueToken mints a bearer access token for the (client, user) pair.
func (i *Issuer) IssueToken(_ context.Context, c *client.Client, u *user.User) (*Token, error) {
	now := time.Now()
	expiresAt := now.Add(i.tokenTTL)

	claims := jwt.RegisteredClaims{
		Issuer:    i.issuer,
		Subject:   u.ID,
		Audience:  jwt.ClaimStrings{c.ClientID},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.signingKey)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &Token{
		AccessToken: signed,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	}, nil
}

// IssueCode mints a single-use authorization code bound to the
// (client, user) pair and persists it for the exchange step.
func (i *Issuer) IssueCode(ctx context.Context, c *client.Client, u *user.User) (*Code, error) {
	now := time.Now()
	record := &CodeRecord{
		Code:      uuid.NewString(),
		UserID:    u.ID,
		ClientID:  c.ClientID,
		ExpiresAt: now.Add(i.codeTTL),
	}
	if err := i.codes.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("persist authorization code: %w", err)
	}
	return &Code{Code: record.Code, ExpiresAt: record.ExpiresAt}, nil
}
