package tracking_test

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/foliosite/folio/src/lib/tracking"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
)

type MetricsSuite struct {
	suite.Suite
}

func (s *MetricsSuite) BeforeTest(_, _ string) {
	tracking.ContactSubmissions.Reset()
	tracking.RelayDuration.Reset()
	tracking.RTHistogramEndpoints.Reset()
}

func (s *MetricsSuite) Test_RecordSubmission() {
	tracking.RecordSubmission(tracking.OutcomeSent)
	tracking.RecordSubmission(tracking.OutcomeSent)
	tracking.RecordSubmission(tracking.OutcomeRateLimited)

	s.Equal(float64(2), testutil.ToFloat64(tracking.ContactSubmissions.WithLabelValues(tracking.OutcomeSent)))
	s.Equal(float64(1), testutil.ToFloat64(tracking.ContactSubmissions.WithLabelValues(tracking.OutcomeRateLimited)))
	s.Equal(float64(0), testutil.ToFloat64(tracking.ContactSubmissions.WithLabelValues(tracking.OutcomeInvalid)))
}

func (s *MetricsSuite) Test_RecordRelay() {
	tracking.RecordRelay("smtp", nil, 120*time.Millisecond)
	tracking.RecordRelay("smtp", errors.New("dial tcp: i/o timeout"), 10*time.Second)

	s.Equal(2, testutil.CollectAndCount(tracking.RelayDuration))
}

func (s *MetricsSuite) Test_RecordResponseTime() {
	tracking.RecordResponseTime("POST", "/api/contact", 200, 15*time.Millisecond)
	tracking.RecordResponseTime("POST", "/api/contact", 400, 2*time.Millisecond)
	tracking.RecordResponseTime("POST", "/api/contact", 429, time.Millisecond)
	tracking.RecordResponseTime("PATCH", "/api/contact", 0, time.Millisecond)

	s.Equal(4, testutil.CollectAndCount(tracking.RTHistogramEndpoints))
}

func (s *MetricsSuite) Test_Registry() {
	tracking.RecordSubmission(tracking.OutcomeInvalid)

	rec := httptest.NewRecorder()
	promhttp.HandlerFor(tracking.Registry(), promhttp.HandlerOpts{}).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	s.True(strings.Contains(rec.Body.String(), `folio_contact_submissions_total{outcome="invalid"} 1`))
}

func TestMetrics(t *testing.T) {
	suite.Run(t, &MetricsSuite{})
}
