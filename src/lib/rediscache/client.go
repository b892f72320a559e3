package rediscache

import (
	"context"
	"sync"
	"time"

	"github.com/foliosite/folio/src/lib/config"
	"github.com/foliosite/folio/src/lib/shutdown"
	"github.com/foliosite/folio/src/lib/slog"
	"github.com/redis/go-redis/v9"
)

var (
	_client *redis.Client
	_once   sync.Once
)

// DefaultClient overrides the client returned by Client. It is used by tests.
var DefaultClient *redis.Client

// Client returns the process wide redis client, or nil when REDIS_ADDR is
// not configured.
func Client() *redis.Client {
	if DefaultClient != nil {
		return DefaultClient
	}

	_once.Do(func() {
		conf := config.Get().Redis

		if conf == nil || conf.Addr == "" {
			return
		}

		_client = redis.NewClient(&redis.Options{
			Addr:         conf.Addr,
			Password:     conf.Password,
			DB:           conf.DB,
			DialTimeout:  2 * time.Second,
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		})

		shutdown.Subscribe(func() error {
			slog.Info("closing redis connection")
			return _client.Close()
		})
	})

	return _client
}

// Ping checks whether the configured redis is reachable. It returns nil
// when redis is not configured.
func Ping(ctx context.Context) error {
	client := Client()

	if client == nil {
		return nil
	}

	return client.Ping(ctx).Err()
}
