package limiter

import (
	"context"
	"sync"
	"time"
)

// Keep a copy of created stores for the sweep function.
var (
	stores    = []*Store{}
	storesMux sync.Mutex
)

// Store is an in-memory sliding window log. It is correct for a single
// process only; use RedisStore when several instances serve the endpoint.
type Store struct {
	// Visits maps an identifier to the ordered timestamps of its accepted events.
	Visits map[string][]time.Time

	// Limit is the number of events an identifier can perform during Window.
	Limit int

	// Window is the amount of time which the limit will be applied.
	Window time.Duration

	now func() time.Time
	mtx sync.Mutex
}

// NewStore creates a new store instance. For instance, Limit: 5 and
// Window: time.Minute allow 5 events per minute, per identifier.
func NewStore(opts *Options) *Store {
	opts = opts.defaults()

	store := &Store{
		Visits: make(map[string][]time.Time),
		Limit:  opts.Limit,
		Window: opts.Window,
		now:    opts.Now,
	}

	storesMux.Lock()
	stores = append(stores, store)
	storesMux.Unlock()

	return store
}

// Allow prunes the timestamps that left the window and records a new one
// if the identifier is still under the limit. The whole read-modify-write
// happens under the store lock.
func (s *Store) Allow(_ context.Context, key string) (*Decision, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	visits := prune(s.Visits[key], now, s.Window)

	if len(visits) >= s.Limit {
		s.Visits[key] = visits

		return &Decision{
			Allowed:   false,
			Limit:     s.Limit,
			Remaining: 0,
			Reset:     visits[0].Add(s.Window),
		}, nil
	}

	visits = append(visits, now)
	s.Visits[key] = visits

	return &Decision{
		Allowed:   true,
		Limit:     s.Limit,
		Remaining: s.Limit - len(visits),
		Reset:     visits[0].Add(s.Window),
	}, nil
}

// Len returns the number of tracked identifiers.
func (s *Store) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.Visits)
}

// Sweep removes identifiers that have no event left within the window.
// It returns the number of removed identifiers.
func (s *Store) Sweep() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	now := s.now()
	removed := 0

	for key, visits := range s.Visits {
		if len(visits) == 0 || now.Sub(visits[len(visits)-1]) >= s.Window {
			delete(s.Visits, key)
			removed++
		}
	}

	return removed
}

// Sweep runs Store.Sweep on every store created by NewStore.
func Sweep(_ context.Context) error {
	storesMux.Lock()
	list := make([]*Store, len(stores))
	copy(list, stores)
	storesMux.Unlock()

	for _, s := range list {
		s.Sweep()
	}

	return nil
}

// prune drops the timestamps that are at least window old. The slice is
// ordered, so everything before the first fresh entry is stale.
func prune(visits []time.Time, now time.Time, window time.Duration) []time.Time {
	for i, ts := range visits {
		if now.Sub(ts) < window {
			return visits[i:]
		}
	}

	return visits[:0]
}
