//go:build integration

package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	adapter "github.com/neomorfeo/sendstack/internal/adapter/redis"
	"github.com/neomorfeo/sendstack/internal/clock"
	"github.com/neomorfeo/sendstack/internal/domain"
)

type PayloadStoreSuite struct {
	suite.Suite
	container *tcredis.RedisContainer
	client    *redis.Client
	now       time.Time
	store     *adapter.PayloadStore
}

func TestPayloadStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PayloadStoreSuite))
}

func (s *PayloadStoreSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	s.Require().NoError(err)
	s.container = container

	url, err := container.ConnectionString(ctx)
	s.Require().NoError(err)

	s.client, err = adapter.Open(ctx, url)
	s.Require().NoError(err)
}

func (s *PayloadStoreSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	s.Require().NoError(testcontainers.TerminateContainer(s.container))
}

func (s *PayloadStoreSuite) SetupTest() {
	s.Require().NoError(s.client.FlushAll(context.Background()).Err())
	s.now = time.Now().UTC().Truncate(time.Second)
	s.store = adapter.NewPayloadStore(s.client, clock.NewFixed(s.now))
}

func (s *PayloadStoreSuite) TestPutGetDelete() {
	ctx := context.Background()
	in := domain.TransientPayload{
		SessionKey: "cs_1",
		Payload: domain.IntakePayload{
			Accounts: []domain.AccountIdentity{{FirstName: "Jo", LastName: "Lee", Login: "jo.lee@a.com"}},
			Domains:  []string{"a.com"},
		},
		ExpiresAt: s.now.Add(domain.PayloadTTL),
	}
	s.Require().NoError(s.store.Put(ctx, in))

	got, err := s.store.Get(ctx, "cs_1")
	s.Require().NoError(err)
	s.Equal(in.Payload, got.Payload)
	s.True(got.ExpiresAt.Equal(in.ExpiresAt))

	ttl, err := s.client.TTL(ctx, "sendstack:payload:cs_1").Result()
	s.Require().NoError(err)
	s.InDelta(domain.PayloadTTL.Seconds(), ttl.Seconds(), 60)

	s.Require().NoError(s.store.Delete(ctx, "cs_1"))
	_, err = s.store.Get(ctx, "cs_1")
	s.ErrorIs(err, domain.ErrPayloadNotFound)
}

func (s *PayloadStoreSuite) TestMissingKey() {
	_, err := s.store.Get(context.Background(), "cs_missing")
	s.ErrorIs(err, domain.ErrPayloadNotFound)
}

func (s *PayloadStoreSuite) TestKeyExpires() {
	ctx := context.Background()
	store := adapter.NewPayloadStore(s.client, clock.NewSystem())
	err := store.Put(ctx, domain.TransientPayload{
		SessionKey: "cs_short",
		Payload:    domain.IntakePayload{Domains: []string{"a.com"}},
		ExpiresAt:  time.Now().Add(1500 * time.Millisecond),
	})
	s.Require().NoError(err)

	s.Eventually(func() bool {
		_, err := store.Get(ctx, "cs_short")
		return err == domain.ErrPayloadNotFound
	}, 5*time.Second, 100*time.Millisecond)
}

func (s *PayloadStoreSuite) TestExpiredPayloadIsNotStored() {
	ctx := context.Background()
	err := s.store.Put(ctx, domain.TransientPayload{SessionKey: "cs_old", ExpiresAt: s.now.Add(-time.Minute)})
	s.Require().NoError(err)

	n, err := s.client.Exists(ctx, "sendstack:payload:cs_old").Result()
	s.Require().NoError(err)
	s.Zero(n)
}
