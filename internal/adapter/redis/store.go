// Package redis stores intake payloads in Redis, letting key expiry enforce
// the payload lifetime.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

const payloadKeyPrefix = "sendstack:payload:"

// Open connects to the Redis server at url and pings it.
func Open(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

type record struct {
	Payload   domain.IntakePayload `json:"payload"`
	ExpiresAt time.Time            `json:"expires_at"`
}

// PayloadStore implements domain.PayloadStore with SET ... PX.
type PayloadStore struct {
	client *redis.Client
	clock  clock.Clock
}

// NewPayloadStore constructs a Redis-backed payload store.
func NewPayloadStore(client *redis.Client, clk clock.Clock) *PayloadStore {
	return &PayloadStore{client: client, clock: clk}
}

// Put stores p until its ExpiresAt. An already expired payload is not stored.
func (s *PayloadStore) Put(ctx context.Context, p domain.TransientPayload) error {
	ttl := p.ExpiresAt.Sub(s.clock.Now())
	if ttl <= 0 {
		return nil
	}
	body, err := json.Marshal(record{Payload: p.Payload, ExpiresAt: p.ExpiresAt.UTC()})
	if err != nil {
		return fmt.Errorf("encoding payload: %w", err)
	}
	if err := s.client.Set(ctx, payloadKeyPrefix+p.SessionKey, body, ttl).Err(); err != nil {
		return fmt.Errorf("storing payload: %w", err)
	}
	return nil
}

func (s *PayloadStore) Get(ctx context.Context, sessionKey string) (domain.TransientPayload, error) {
	body, err := s.client.Get(ctx, payloadKeyPrefix+sessionKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.TransientPayload{}, domain.ErrPayloadNotFound
		}
		return domain.TransientPayload{}, fmt.Errorf("reading payload: %w", err)
	}

	var rec record
	if err := json.Unmarshal(body, &rec); err != nil {
		return domain.TransientPayload{}, fmt.Errorf("decoding payload: %w", err)
	}
	p := domain.TransientPayload{SessionKey: sessionKey, Payload: rec.Payload, ExpiresAt: rec.ExpiresAt}
	if p.Expired(s.clock.Now()) {
		return domain.TransientPayload{}, domain.ErrPayloadNotFound
	}
	return p, nil
}

func (s *PayloadStore) Delete(ctx context.Context, sessionKey string) error {
	if err := s.client.Del(ctx, payloadKeyPrefix+sessionKey).Err(); err != nil {
		return fmt.Errorf("deleting payload: %w", err)
	}
	return nil
}

// PurgeExpired is a no-op: Redis expires the keys itself.
func (s *PayloadStore) PurgeExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}
