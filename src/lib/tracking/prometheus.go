package tracking

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/foliosite/folio/src/lib/config"
	"github.com/foliosite/folio/src/lib/slog"
	"github.com/foliosite/folio/src/lib/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Registry returns a registry holding the folio collectors and the
// standard process and runtime collectors.
func Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()

	reg.MustRegister(RTHistogramEndpoints, ContactSubmissions, RelayDuration)

	// Add Go module build info.
	reg.MustRegister(collectors.NewBuildInfoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	reg.MustRegister(collectors.NewGoCollector(
		collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{
			Matcher: regexp.MustCompile("/.*"),
		}),
	))

	return reg
}

// Prometheus starts the metrics server in the background and returns it so
// that the caller can shut it down.
func Prometheus() *http.Server {
	conf := config.Get()

	for i := 0; i < 10; i++ {
		port := utils.StringToInt(conf.Tracking.PrometheusPort)

		if !utils.IsPortInUse(port) {
			break
		}

		slog.Debug(slog.LogOpts{
			Msg:   "prometheus port is already in use, picking a new one",
			Level: slog.DL1,
			Payload: []zap.Field{
				zap.String("port", conf.Tracking.PrometheusPort),
			},
		})

		conf.Tracking.PrometheusPort = utils.Int64ToString(int64(port + 1))
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		Registry(),
		promhttp.HandlerOpts{
			// Opt into OpenMetrics to support exemplars.
			EnableOpenMetrics: true,
		},
	))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", conf.Tracking.PrometheusPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Infof("prometheus metrics available at /metrics, port: %s", conf.Tracking.PrometheusPort)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Errorf("prometheus server stopped: %v", err)
		}
	}()

	return srv
}

// Stop shuts the metrics server down.
func Stop(ctx context.Context, srv *http.Server) error {
	if srv == nil {
		return nil
	}

	return srv.Shutdown(ctx)
}
