package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"audittrail/pkg/platform/sentinel"
)

const redisKeyPrefix = "payment:"

// RedisStore keeps payments in Redis so multiple service instances share
// lookup state. Values are JSON; expiry matches the memory store's TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. The caller owns the client's
// lifecycle; a ping at construction surfaces misconfiguration early.
func NewRedisStore(client *redis.Client, ttl time.Duration) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("%w: redis ping: %w", sentinel.ErrUnavailable, err)
	}
	return &RedisStore{client: client, ttl: ttl}, nil
}

// Put saves or replaces a payment.
func (s *RedisStore) Put(ctx context.Context, resp Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("marshal payment %s: %w", resp.PaymentID, err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+resp.PaymentID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("store payment %s: %w", resp.PaymentID, err)
	}
	return nil
}

// Get returns a payment by ID, or sentinel.ErrNotFound.
func (s *RedisStore) Get(ctx context.Context, paymentID string) (Response, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+paymentID).Bytes()
	if errors.Is(err, redis.Nil) {
		return Response{}, fmt.Errorf("%w: payment %s", sentinel.ErrNotFound, paymentID)
	}
	if err != nil {
		return Response{}, fmt.Errorf("load payment %s: %w", paymentID, err)
	}

	var resp Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return Response{}, fmt.Errorf("unmarshal payment %s: %w", paymentID, err)
	}
	return resp, nil
}
