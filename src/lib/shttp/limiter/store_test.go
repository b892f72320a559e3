package limiter_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/foliosite/folio/src/lib/shttp/limiter"
	"github.com/stretchr/testify/suite"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type StoreSuite struct {
	suite.Suite
	clock *clock
	store *limiter.Store
}

func (s *StoreSuite) BeforeTest(_, _ string) {
	s.clock = &clock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s.store = limiter.NewStore(&limiter.Options{
		Limit:  5,
		Window: time.Minute,
		Now:    s.clock.Now,
	})
}

func (s *StoreSuite) allow(key string) *limiter.Decision {
	d, err := s.store.Allow(context.Background(), key)
	s.NoError(err)
	s.NotNil(d)
	return d
}

func (s *StoreSuite) Test_FiveAllowedThenRejected() {
	for i := 0; i < 5; i++ {
		d := s.allow("1.1.1.1")
		s.True(d.Allowed, "request %d should be allowed", i+1)
		s.Equal(4-i, d.Remaining)
		s.Equal(5, d.Limit)
	}

	d := s.allow("1.1.1.1")
	s.False(d.Allowed)
	s.Equal(0, d.Remaining)
	s.Equal(s.clock.Now().Add(time.Minute), d.Reset)
	s.Equal(time.Minute, d.RetryAfter(s.clock.Now()))
}

func (s *StoreSuite) Test_RejectedAttemptsAreNotRecorded() {
	for i := 0; i < 5; i++ {
		s.True(s.allow("1.1.1.1").Allowed)
	}

	for i := 0; i < 10; i++ {
		s.False(s.allow("1.1.1.1").Allowed)
	}

	s.Len(s.store.Visits["1.1.1.1"], 5)
}

func (s *StoreSuite) Test_RecoversAfterWindow() {
	for i := 0; i < 5; i++ {
		s.True(s.allow("1.1.1.1").Allowed)
	}

	s.clock.Advance(59 * time.Second)
	s.False(s.allow("1.1.1.1").Allowed)

	s.clock.Advance(time.Second)
	d := s.allow("1.1.1.1")
	s.True(d.Allowed)
	s.Equal(4, d.Remaining)
}

func (s *StoreSuite) Test_SlidingNotFixed() {
	// Three at t=0, two at t=30s: the first three expire at t=60s
	// while the last two keep counting until t=90s.
	for i := 0; i < 3; i++ {
		s.True(s.allow("1.1.1.1").Allowed)
	}

	s.clock.Advance(30 * time.Second)

	for i := 0; i < 2; i++ {
		s.True(s.allow("1.1.1.1").Allowed)
	}

	s.False(s.allow("1.1.1.1").Allowed)

	s.clock.Advance(30 * time.Second)

	for i := 0; i < 3; i++ {
		s.True(s.allow("1.1.1.1").Allowed)
	}

	s.False(s.allow("1.1.1.1").Allowed)
}

func (s *StoreSuite) Test_IdentifiersAreIndependent() {
	for i := 0; i < 5; i++ {
		s.True(s.allow("1.1.1.1").Allowed)
	}

	s.False(s.allow("1.1.1.1").Allowed)
	s.True(s.allow("2.2.2.2").Allowed)
	s.True(s.allow(limiter.UnknownClient).Allowed)
}

func (s *StoreSuite) Test_Sweep() {
	s.allow("1.1.1.1")
	s.clock.Advance(30 * time.Second)
	s.allow("2.2.2.2")
	s.Equal(2, s.store.Len())

	s.clock.Advance(30 * time.Second)
	s.Equal(1, s.store.Sweep())
	s.Equal(1, s.store.Len())

	s.clock.Advance(30 * time.Second)
	s.NoError(limiter.Sweep(context.Background()))
	s.Equal(0, s.store.Len())
}

func (s *StoreSuite) Test_ConcurrentCallsNeverExceedLimit() {
	var wg sync.WaitGroup
	var allowed atomic.Int32

	for i := 0; i < 50; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			d, err := s.store.Allow(context.Background(), "1.1.1.1")

			if err == nil && d.Allowed {
				allowed.Add(1)
			}
		}()
	}

	wg.Wait()
	s.Equal(int32(5), allowed.Load())
}

func TestStore(t *testing.T) {
	suite.Run(t, &StoreSuite{})
}
