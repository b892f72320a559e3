package limiter_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/foliosite/folio/src/lib/shttp/limiter"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
)

type RedisStoreSuite struct {
	suite.Suite
	mr     *miniredis.Miniredis
	client *redis.Client
	clock  *clock
}

func (s *RedisStoreSuite) BeforeTest(_, _ string) {
	s.mr = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.clock = &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (s *RedisStoreSuite) AfterTest(_, _ string) {
	s.client.Close()
}

func (s *RedisStoreSuite) newStore() *limiter.RedisStore {
	return limiter.NewRedisStore(s.client, &limiter.Options{
		Limit:  5,
		Window: time.Minute,
		Prefix: "contact",
		Now:    s.clock.Now,
	})
}

func (s *RedisStoreSuite) Test_FiveAllowedThenRejected() {
	store := s.newStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := store.Allow(ctx, "1.1.1.1")
		s.NoError(err)
		s.True(d.Allowed)
		s.Equal(4-i, d.Remaining)
	}

	d, err := store.Allow(ctx, "1.1.1.1")
	s.NoError(err)
	s.False(d.Allowed)
	s.Equal(0, d.Remaining)
	s.Equal(s.clock.Now().Add(time.Minute), d.Reset)

	members, err := s.mr.ZMembers("ratelimit:contact:1.1.1.1")
	s.NoError(err)
	s.Len(members, 5)
}

func (s *RedisStoreSuite) Test_RecoversAfterWindow() {
	store := s.newStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := store.Allow(ctx, "1.1.1.1")
		s.NoError(err)
		s.True(d.Allowed)
	}

	s.clock.Advance(time.Minute)

	d, err := store.Allow(ctx, "1.1.1.1")
	s.NoError(err)
	s.True(d.Allowed)
	s.Equal(4, d.Remaining)
}

func (s *RedisStoreSuite) Test_SharedAcrossInstances() {
	first, second := s.newStore(), s.newStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := first.Allow(ctx, "1.1.1.1")
		s.NoError(err)
		s.True(d.Allowed)
	}

	for i := 0; i < 2; i++ {
		d, err := second.Allow(ctx, "1.1.1.1")
		s.NoError(err)
		s.True(d.Allowed)
	}

	d, err := first.Allow(ctx, "1.1.1.1")
	s.NoError(err)
	s.False(d.Allowed)

	d, err = second.Allow(ctx, "2.2.2.2")
	s.NoError(err)
	s.True(d.Allowed)
}

func (s *RedisStoreSuite) Test_Key() {
	s.Equal("ratelimit:contact:1.1.1.1", s.newStore().Key("1.1.1.1"))
	s.Equal("ratelimit:unknown", limiter.NewRedisStore(s.client, nil).Key("unknown"))
}

func (s *RedisStoreSuite) Test_Error() {
	store := s.newStore()
	s.mr.Close()

	d, err := store.Allow(context.Background(), "1.1.1.1")
	s.Error(err)
	s.Nil(d)
}

func TestRedisStore(t *testing.T) {
	suite.Run(t, &RedisStoreSuite{})
}
