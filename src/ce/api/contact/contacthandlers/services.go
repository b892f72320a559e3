package contacthandlers

import (
	"github.com/foliosite/folio/src/lib/config"
	"github.com/foliosite/folio/src/lib/rediscache"
	"github.com/foliosite/folio/src/lib/shttp"
	"github.com/foliosite/folio/src/lib/shttp/limiter"
	"github.com/foliosite/folio/src/lib/slog"
)

// Services installs the contact form services.
func Services(r *shttp.Router) *shttp.Service {
	s := r.NewService()
	conf := config.Get().Contact

	opts := &limiter.Options{
		Limit:  conf.RateLimitMax,
		Window: conf.RateLimitWindow,
		Prefix: "contact",
	}

	if client := rediscache.Client(); client != nil {
		slog.Infof("contact rate limiter uses redis at %s", client.Options().Addr)
		opts.Backend = limiter.NewRedisStore(client, opts)
	}

	s.NewEndpoint("/api/contact").
		Handler(shttp.MethodPost, "", withOutcome(shttp.WithRateLimit(HandlerContact, opts)))

	return s
}
