//go:build integration

package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"signet/internal/session"
	"signet/pkg/platform/sentinel"
	"signet/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *session.RedisStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = session.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func makeSession(ttl time.Duration) *session.Session {
	now := time.Now()
	return &session.Session{
		ID:        uuid.NewString(),
		UserID:    "user-" + uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

func (s *RedisStoreSuite) TestSaveAndFindByID() {
	ctx := context.Background()
	sess := makeSession(time.Hour)

	s.Require().NoError(s.store.Save(ctx, sess))

	got, err := s.store.FindByID(ctx, sess.ID)
	s.Require().NoError(err)
	s.Equal(sess.ID, got.ID)
	s.Equal(sess.UserID, got.UserID)
	s.WithinDuration(sess.ExpiresAt, got.ExpiresAt, time.Second)
}

func (s *RedisStoreSuite) TestFindByIDUnknown() {
	_, err := s.store.FindByID(context.Background(), "not-a-session")
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}

func (s *RedisStoreSuite) TestDelete() {
	ctx := context.Background()
	sess := makeSession(time.Hour)
	s.Require().NoError(s.store.Save(ctx, sess))

	s.Require().NoError(s.store.Delete(ctx, sess.ID))

	_, err := s.store.FindByID(ctx, sess.ID)
	s.True(errors.Is(err, sentinel.ErrNotFound))

	// Deleting an absent session is not an error.
	s.Require().NoError(s.store.Delete(ctx, sess.ID))
}

func (s *RedisStoreSuite) TestTTLReclaimsExpiredSessions() {
	ctx := context.Background()
	sess := makeSession(time.Second)
	s.Require().NoError(s.store.Save(ctx, sess))

	s.Eventually(func() bool {
		_, err := s.store.FindByID(ctx, sess.ID)
		return errors.Is(err, sentinel.ErrNotFound)
	}, 5*time.Second, 100*time.Millisecond)
}
