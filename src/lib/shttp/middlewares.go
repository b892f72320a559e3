package shttp

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/NYTimes/gziphandler"
	"github.com/foliosite/folio/src/lib/shttp/limiter"
	"github.com/foliosite/folio/src/lib/slog"
	"github.com/google/uuid"
)

// TooManyRequestsMessage is the error returned to rate limited clients.
const TooManyRequestsMessage = "Too many requests. Please wait a moment and try again."

// contextHandler assigns a request id to every request and passes it down
// to the flow through the request context.
func contextHandler(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-Id")

		if id == "" {
			id = uuid.NewString()
		}

		w.Header().Set("X-Request-Id", id)
		ctx := context.WithValue(r.Context(), requestIDKey, id)
		h.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GzipHandler performs a gzip compression whenever the client can handle it.
func gzipHandler(h http.Handler) http.Handler {
	return gziphandler.GzipHandler(h)
}

// WithRateLimit limits a given endpoint.
// The limit applies per client identifier (see limiter.ClientID) and uses a
// sliding window: a client may perform opts.Limit requests during any
// opts.Window long interval. Rejected requests are not counted. Once the
// client is out of budget a 429 response is returned without calling handler.
//
// When the backend fails the request is let through and the error is logged.
func WithRateLimit(handler RequestFunc, options ...*limiter.Options) RequestFunc {
	var opts *limiter.Options

	if len(options) > 0 && options[0] != nil {
		opts = options[0]
	} else {
		opts = &limiter.Options{}
	}

	backend := opts.Backend

	if backend == nil {
		backend = limiter.NewStore(opts)
	}

	now := opts.Now

	if now == nil {
		now = time.Now
	}

	return func(req *RequestContext) *Response {
		ctx := context.Background()

		if req.Request != nil {
			ctx = req.Context()
		}

		key := limiter.ClientID(req.Request)
		decision, err := backend.Allow(ctx, key)

		if err != nil {
			slog.Errorf("rate limiter unavailable, letting request through: key=%s err=%v", key, err)
			return handler(req)
		}

		headers := rateLimitHeaders(decision, now())

		if !decision.Allowed {
			res := TooManyRequests(TooManyRequestsMessage)
			res.Headers = headers
			return res
		}

		if req.writer != nil {
			for k, v := range headers {
				req.writer.Header()[k] = v
			}
		}

		return handler(req)
	}
}

func rateLimitHeaders(d *limiter.Decision, now time.Time) http.Header {
	headers := http.Header{}
	headers.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	headers.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
	headers.Set("X-RateLimit-Reset", strconv.FormatInt(d.Reset.Unix(), 10))

	if !d.Allowed {
		seconds := math.Ceil(d.RetryAfter(now).Seconds())
		headers.Set("Retry-After", strconv.FormatInt(int64(seconds), 10))
	}

	return headers
}
