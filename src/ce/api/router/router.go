package router

import (
	"github.com/foliosite/folio/src/ce/api/contact/contacthandlers"
	"github.com/foliosite/folio/src/ce/api/status"
	"github.com/foliosite/folio/src/lib/shttp"
	"github.com/foliosite/folio/src/lib/slog"
	"go.uber.org/zap"
)

// Get returns the api router with every service registered.
func Get() *shttp.Router {
	r := shttp.NewRouter()
	r.RegisterMiddleware(WithCors)
	r.RegisterMiddleware(WithTimeout)

	// Enable cors
	_ = Cors()

	for _, service := range []shttp.ServiceFunc{status.Services, contacthandlers.Services} {
		slog.Debug(slog.LogOpts{
			Msg:     "registered endpoints",
			Level:   slog.DL1,
			Payload: []zap.Field{zap.Strings("endpoints", r.RegisterService(service).HandlerKeys())},
		})
	}

	return r
}
