package limiter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/foliosite/folio/src/lib/errors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow prunes, counts and conditionally records in one atomic step.
// KEYS[1] = window key
// ARGV[1] = now (ms), ARGV[2] = window (ms), ARGV[3] = limit, ARGV[4] = unique member
// Returns {allowed, count, oldest score}.
var slidingWindow = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])

redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)

local count = redis.call('ZCARD', key)
local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
local first = now

if oldest[2] then
	first = tonumber(oldest[2])
end

if count >= limit then
	return {0, count, first}
end

redis.call('ZADD', key, now, ARGV[4])
redis.call('PEXPIRE', key, window)

return {1, count + 1, first}
`)

// RedisStore is a sliding window log shared by every process connected to
// the same Redis. Each identifier is a sorted set of event timestamps.
type RedisStore struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisStore returns a store backed by the given client.
func NewRedisStore(client *redis.Client, opts *Options) *RedisStore {
	opts = opts.defaults()

	return &RedisStore{
		client: client,
		limit:  opts.Limit,
		window: opts.Window,
		prefix: opts.Prefix,
		now:    opts.Now,
	}
}

// Key returns the redis key for the given identifier.
func (s *RedisStore) Key(id string) string {
	if s.prefix == "" {
		return fmt.Sprintf("ratelimit:%s", id)
	}

	return fmt.Sprintf("ratelimit:%s:%s", s.prefix, id)
}

// Allow implements the Limiter interface.
func (s *RedisStore) Allow(ctx context.Context, key string) (*Decision, error) {
	now := s.now()

	res, err := slidingWindow.Run(
		ctx,
		s.client,
		[]string{s.Key(key)},
		now.UnixMilli(),
		s.window.Milliseconds(),
		s.limit,
		uuid.NewString(),
	).Slice()

	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrorTypeExternal, "failed to evaluate rate limit script: key=%s", key)
	}

	if len(res) != 3 {
		return nil, errors.New(errors.ErrorTypeExternal, fmt.Sprintf("unexpected rate limit script reply: %v", res))
	}

	allowed, count, first := toInt64(res[0]), toInt64(res[1]), toInt64(res[2])
	remaining := s.limit - int(count)

	if remaining < 0 {
		remaining = 0
	}

	return &Decision{
		Allowed:   allowed == 1,
		Limit:     s.limit,
		Remaining: remaining,
		Reset:     time.UnixMilli(first).Add(s.window),
	}, nil
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}
