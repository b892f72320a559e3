package tracking

import (
	"fmt"
	"net/http"
	"time"

	"github.com/foliosite/folio/src/lib/slog"
	"github.com/foliosite/folio/src/lib/utils"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Contact submission outcomes.
const (
	OutcomeSent        = "sent"
	OutcomeSkipped     = "skipped"
	OutcomeRateLimited = "rate_limited"
	OutcomeMalformed   = "malformed"
	OutcomeInvalid     = "invalid"
	OutcomeFailed      = "relay_failed"
)

var (
	// RTHistogramEndpoints tracks HTTP response times
	RTHistogramEndpoints = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "folio",
			Subsystem: "api",
			Name:      "response_time_ms",
			Help:      "HTTP response time in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// ContactSubmissions counts contact submissions by outcome.
	ContactSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Subsystem: "contact",
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome",
		},
		[]string{"outcome"},
	)

	// RelayDuration tracks how long relaying a single mail takes.
	RelayDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "folio",
			Subsystem: "contact",
			Name:      "relay_duration_seconds",
			Help:      "Time spent relaying a contact submission",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"transport", "result"},
	)
)

// RecordSubmission increments the submission counter for the given outcome.
func RecordSubmission(outcome string) {
	ContactSubmissions.WithLabelValues(outcome).Inc()
}

// RecordRelay observes the duration of a relay attempt.
func RecordRelay(transport string, err error, duration time.Duration) {
	result := "ok"

	if err != nil {
		result = "error"
	}

	RelayDuration.WithLabelValues(transport, result).Observe(duration.Seconds())
}

// RecordResponseTime records the response time for a request
func RecordResponseTime(method, endpoint string, status int, duration time.Duration) {
	statusCode := fmt.Sprintf("%d", utils.GetInt(status, 200))

	if method != http.MethodGet && method != http.MethodPost && method != http.MethodOptions {
		method = "OTHER"
	}

	if statusCode != "200" && statusCode != "204" && statusCode != "429" {
		switch statusCode[0] {
		case '2':
			statusCode = "2xx"
		case '3':
			statusCode = "3xx"
		case '4':
			statusCode = "4xx"
		case '5':
			statusCode = "5xx"
		default:
			slog.Debug(slog.LogOpts{
				Msg:   "metrics unknown status code",
				Level: slog.DL3,
				Payload: []zap.Field{
					zap.String("method", method),
					zap.String("endpoint", endpoint),
					zap.String("status_code", statusCode),
				},
			})

			statusCode = "other"
		}
	}

	RTHistogramEndpoints.WithLabelValues(method, endpoint, statusCode).Observe(float64(duration.Milliseconds()))
}
