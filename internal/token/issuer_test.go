package token

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signet/internal/client"
	"signet/internal/user"
	"signet/pkg/platform/sentinel"
)

var signingKey = []byte("test-signing-key")

func testIssuer(codes CodeStore) *Issuer {
	return NewIssuer(signingKey, "signet-test", time.Hour, 10*time.Minute, codes)
}

func testPair(t *testing.T) (*client.Client, *user.User) {
	t.Helper()
	c, err := client.New("abc", "Test App", []string{"https://app.example/cb"}, []string{"code", "token"}, time.Now())
	require.NoError(t, err)
	return c, &user.User{ID: "user-alice", Username: "alice"}
}

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	c, u := testPair(t)
	issuer := testIssuer(NewInMemoryCodeStore())

	tok, err := issuer.IssueToken(ctx, c, u)
	require.NoError(t, err)

	assert.Equal(t, "bearer", tok.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tok.AccessToken, claims, func(*jwt.Token) (any, error) {
		return signingKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)

	assert.Equal(t, "signet-test", claims.Issuer)
	assert.Equal(t, "user-alice", claims.Subject)
	assert.Equal(t, jwt.ClaimStrings{"abc"}, claims.Audience)
	assert.NotEmpty(t, claims.ID)

	// Each token carries a fresh JTI.
	again, err := issuer.IssueToken(ctx, c, u)
	require.NoError(t, err)
	assert.NotEqual(t, tok.AccessToken, again.AccessToken)
}

func TestIssueCode(t *testing.T) {
	ctx := context.Background()
	c, u := testPair(t)
	codes := NewInMemoryCodeStore()
	issuer := testIssuer(codes)

	code, err := issuer.IssueCode(ctx, c, u)
	require.NoError(t, err)
	require.NotEmpty(t, code.Code)

	record, err := codes.Consume(ctx, code.Code, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "user-alice", record.UserID)
	assert.Equal(t, "abc", record.ClientID)
	assert.NotNil(t, record.UsedAt)
}

func TestInMemoryCodeStoreConsume(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	t.Run("unknown code", func(t *testing.T) {
		_, err := NewInMemoryCodeStore().Consume(ctx, "nope", now)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))
	})

	t.Run("single use", func(t *testing.T) {
		store := NewInMemoryCodeStore()
		record := &CodeRecord{Code: "c1", UserID: "u1", ClientID: "abc", ExpiresAt: now.Add(time.Minute)}
		require.NoError(t, store.Create(ctx, record))

		_, err := store.Consume(ctx, "c1", now)
		require.NoError(t, err)

		_, err = store.Consume(ctx, "c1", now)
		assert.True(t, errors.Is(err, sentinel.ErrAlreadyUsed))
	})

	t.Run("expired code", func(t *testing.T) {
		store := NewInMemoryCodeStore()
		record := &CodeRecord{Code: "c2", UserID: "u1", ClientID: "abc", ExpiresAt: now.Add(-time.Second)}
		require.NoError(t, store.Create(ctx, record))

		_, err := store.Consume(ctx, "c2", now)
		assert.True(t, errors.Is(err, sentinel.ErrExpired))
	})
}
