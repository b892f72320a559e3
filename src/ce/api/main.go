package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/foliosite/folio/src/ce/api/router"
	"github.com/foliosite/folio/src/lib/config"
	"github.com/foliosite/folio/src/lib/rediscache"
	"github.com/foliosite/folio/src/lib/scheduler"
	"github.com/foliosite/folio/src/lib/shttp/limiter"
	"github.com/foliosite/folio/src/lib/shutdown"
	"github.com/foliosite/folio/src/lib/slog"
	"github.com/foliosite/folio/src/lib/tracking"
)

// registerTasks starts the periodic maintenance jobs of the api.
func registerTasks(ctx context.Context) {
	s, err := scheduler.NewScheduler()

	if err != nil {
		return
	}

	s.Register(ctx, scheduler.TaskDefinition{
		Name:    "limiter-sweep",
		Handler: limiter.Sweep,
		Def:     scheduler.Every(scheduler.EVERY_MINUTE),
	})

	s.Start()
	shutdown.Subscribe(s.Stop)
}

func registerServices() {
	c := config.Get()
	r := router.Get()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", c.Port),
		ReadTimeout:  c.HTTPTimeouts.ReadTimeout,
		WriteTimeout: c.HTTPTimeouts.WriteTimeout,
		IdleTimeout:  c.HTTPTimeouts.IdleTimeout,
		Handler:      r.WithGzip().WithContext().Handler(),
	}

	shutdown.Subscribe(func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	})

	go func() {
		slog.Infof("api server listening on :%s", c.Port)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Errorf("api server stopped: %v", err)
			shutdown.Shutdown()
			os.Exit(1)
		}
	}()
}

func main() {
	c := config.Get()
	ctx, cancel := context.WithCancel(context.Background())

	shutdown.Subscribe(func() error {
		cancel()
		return slog.Sync()
	})

	if c.Tracking.Prometheus {
		srv := tracking.Prometheus()

		shutdown.Subscribe(func() error {
			return tracking.Stop(context.Background(), srv)
		})
	}

	if err := rediscache.Ping(ctx); err != nil {
		slog.Warnf("redis is not reachable, rate limiting will fail open until it recovers: %v", err)
	}

	if config.IsProduction() && len(c.Contact.AllowedOrigins) == 0 {
		slog.Warnf("CONTACT_ALLOWED_ORIGINS is empty, browsers on other origins cannot reach /api/contact")
	}

	if missing := config.Mailer().Missing(); len(missing) > 0 {
		slog.Infof("contact mailer is not fully configured, submissions will not be relayed: missing=%v", missing)
	}

	registerTasks(ctx)
	registerServices()

	shutdown.Wait()
}
