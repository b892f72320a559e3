package status

import (
	"context"
	"net/http"
	"time"

	"github.com/foliosite/folio/src/lib/config"
	"github.com/foliosite/folio/src/lib/rediscache"
	"github.com/foliosite/folio/src/lib/shttp"
	"github.com/foliosite/folio/src/lib/slog"
)

// Services installs the api-status handlers.
func Services(r *shttp.Router) *shttp.Service {
	s := r.NewService()
	e := s.NewEndpoint("/")

	e.Handler(shttp.MethodGet, "", handlerAPIStatus)
	e.Handler(shttp.MethodHead, "", handlerAPIStatus)
	e.Handler(shttp.MethodGet, "health", handlerAPIHealth)

	return s
}

func handlerAPIStatus(req *shttp.RequestContext) *shttp.Response {
	return &shttp.Response{
		Status: http.StatusOK,
		Data: map[string]any{
			"ok":  true,
			"env": config.Get().Env,
		},
	}
}

// handlerAPIHealth reports whether the dependencies of the api are reachable.
// The mailer is not checked: it is read from the environment on every send.
func handlerAPIHealth(req *shttp.RequestContext) *shttp.Response {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	if err := rediscache.Ping(ctx); err != nil {
		slog.Errorf("health check failed, redis unreachable: %v", err)

		return &shttp.Response{
			Status: http.StatusServiceUnavailable,
			Data:   map[string]any{"ok": false, "redis": "unreachable"},
		}
	}

	return &shttp.Response{
		Status: http.StatusOK,
		Data:   map[string]any{"ok": true},
	}
}
