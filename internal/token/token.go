// Package token mints the artifacts a successful authorization produces:
// bearer access tokens for the implicit flow and single-use authorization
// codes for the code flow.
package token

import (
	"context"
	"time"
)

// Token is an issued access token with its absolute expiry.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Code is an issued authorization code.
type Code struct {
	Code      string
	ExpiresAt time.Time
}

// CodeRecord is the persisted form of an authorization code, bound to the
// (user, client) pair it was issued for.
type CodeRecord struct {
	Code      string     `json:"code"`
	UserID    string     `json:"user_id"`
	ClientID  string     `json:"client_id"`
	ExpiresAt time.Time  `json:"expires_at"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
}

// MarkUsed stamps the record as consumed.
func (r *CodeRecord) MarkUsed(now time.Time) {
	r.UsedAt = &now
}

// CodeStore persists authorization codes and enforces single use.
//
// Error contract:
//   - Consume returns sentinel.ErrNotFound for unknown codes,
//     sentinel.ErrExpired past expiry, sentinel.ErrAlreadyUsed on reuse
//   - correctness under two requests racing to consume one code lies here,
//     not in the issuer
type CodeStore interface {
	Create(ctx context.Context, record *CodeRecord) error
	Consume(ctx context.Context, code string, now time.Time) (*CodeRecord, error)
}
