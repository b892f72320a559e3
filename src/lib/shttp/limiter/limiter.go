package limiter

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/foliosite/folio/src/lib/utils"
)

// UnknownClient is the identifier used when a request carries neither
// X-Forwarded-For nor X-Real-IP. All such requests share one bucket.
const UnknownClient = "unknown"

// Options represents the rate limit options.
type Options struct {
	// Limit is the maximum number of accepted events for a single
	// identifier within Window.
	Limit int

	// Window is the sliding time span Limit applies to.
	Window time.Duration

	// Prefix namespaces the keys so that multiple endpoints can share
	// a backend without influencing each other.
	Prefix string

	// Backend overrides the default in-memory store.
	Backend Limiter

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (o *Options) defaults() *Options {
	if o == nil {
		o = &Options{}
	}

	if o.Limit <= 0 {
		o.Limit = 5
	}

	if o.Window <= 0 {
		o.Window = time.Minute
	}

	if o.Now == nil {
		o.Now = time.Now
	}

	return o
}

// Decision is the outcome of a single check.
type Decision struct {
	Allowed bool

	// Limit is the configured maximum for the window.
	Limit int

	// Remaining is the number of events still allowed in the current window.
	Remaining int

	// Reset is the time when the oldest counted event leaves the window.
	Reset time.Time
}

// RetryAfter returns how long the client should wait before retrying.
func (d *Decision) RetryAfter(now time.Time) time.Duration {
	if d.Allowed || d.Reset.Before(now) {
		return 0
	}

	return d.Reset.Sub(now)
}

// Limiter decides whether an identifier may perform one more event.
// Implementations record the event when, and only when, it is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Decision, error)
}

// ClientID derives the rate limit identifier of a request: the first entry of
// X-Forwarded-For, then X-Real-IP, then UnknownClient.
func ClientID(r *http.Request) string {
	if r == nil {
		return UnknownClient
	}

	if first := utils.FirstCSV(r.Header.Get("X-Forwarded-For")); first != "" {
		return first
	}

	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}

	return UnknownClient
}
