package token

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"signet/pkg/platform/sentinel"
)

const codeKeyPrefix = "authcode:"

// RedisCodeStore is the production code store for multi-instance
// deployments. Single use is enforced with GETDEL, which is atomic, so two
// instances racing to consume one code cannot both succeed.
type RedisCodeStore struct {
	client *redis.Client
}

// NewRedisCodeStore constructs a Redis-backed code store.
func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func (s *RedisCodeStore) Create(ctx context.Context, record *CodeRecord) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal code record: %w", err)
	}
	ttl := time.Until(record.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := s.client.Set(ctx, codeKeyPrefix+record.Code, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save code record: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Consume(ctx context.Context, code string, now time.Time) (*CodeRecord, error) {
	raw, err := s.client.GetDel(ctx, codeKeyPrefix+code).Bytes()
	if errors.Is(err, redis.Nil) {
		// Unknown, already consumed, or reclaimed by TTL; all read the same
		// from outside the store.
		return nil, fmt.Errorf("authorization code: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("consume code: %w", err)
	}

	var record CodeRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("unmarshal code record: %w", err)
	}
	if now.After(record.ExpiresAt) {
		return nil, fmt.Errorf("authorization code: %w", sentinel.ErrExpired)
	}
	record.MarkUsed(now)
	return &record, nil
}
