package shttp_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/foliosite/folio/src/lib/shttp"
	"github.com/foliosite/folio/src/lib/shttp/limiter"
	"github.com/foliosite/folio/src/lib/shttp/shttptest"
	"github.com/stretchr/testify/suite"
)

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (*limiter.Decision, error) {
	return nil, errors.New("connection refused")
}

type MiddlewaresSuite struct {
	suite.Suite
	now time.Time
}

func (s *MiddlewaresSuite) BeforeTest(_, _ string) {
	s.now = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
}

func (s *MiddlewaresSuite) request(ip string) *shttp.RequestContext {
	req := shttp.NewRequestContext(httptest.NewRequest(http.MethodPost, "/api/contact", nil))
	req.Header.Set("X-Forwarded-For", ip)
	return req
}

func (s *MiddlewaresSuite) Test_WithRateLimit() {
	calls := 0
	handler := func(req *shttp.RequestContext) *shttp.Response {
		calls++
		return shttp.OK()
	}

	mdw := shttp.WithRateLimit(handler, &limiter.Options{
		Limit:  5,
		Window: time.Minute,
		Now:    func() time.Time { return s.now },
	})

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		req := s.request("8.8.8.8")
		req.SetWriter(rec)

		res := mdw(req)
		s.Equal(http.StatusOK, res.Status)
		s.Equal("5", rec.Header().Get("X-RateLimit-Limit"))
		s.Equal(strconv.Itoa(4-i), rec.Header().Get("X-RateLimit-Remaining"))
		s.Empty(rec.Header().Get("Retry-After"))
	}

	res := mdw(s.request("8.8.8.8"))
	s.Equal(http.StatusTooManyRequests, res.Status)
	s.Equal(shttp.ErrorBody{Error: shttp.TooManyRequestsMessage}, res.Data)
	s.Equal("0", res.Headers.Get("X-RateLimit-Remaining"))
	s.Equal("60", res.Headers.Get("Retry-After"))
	s.Equal(5, calls)

	// Another client is not affected.
	res = mdw(s.request("9.9.9.9"))
	s.Equal(http.StatusOK, res.Status)
	s.Equal(6, calls)
}

func (s *MiddlewaresSuite) Test_WithRateLimit_FailsOpen() {
	calls := 0
	handler := func(req *shttp.RequestContext) *shttp.Response {
		calls++
		return shttp.OK()
	}

	mdw := shttp.WithRateLimit(handler, &limiter.Options{Backend: failingLimiter{}})

	for i := 0; i < 10; i++ {
		s.Equal(http.StatusOK, mdw(s.request("8.8.8.8")).Status)
	}

	s.Equal(10, calls)
}

func (s *MiddlewaresSuite) Test_RequestID() {
	r := shttp.NewRouter().WithContext()
	ids := []string{}

	r.RegisterService(func(r *shttp.Router) *shttp.Service {
		svc := r.NewService()
		svc.NewEndpoint("/ping").Handler(shttp.MethodGet, "", func(req *shttp.RequestContext) *shttp.Response {
			ids = append(ids, req.RequestID())
			return shttp.OK()
		})
		return svc
	})

	res := shttptest.Request(r.Handler(), http.MethodGet, "/ping", nil)
	s.Equal(http.StatusOK, res.Code)
	s.NotEmpty(res.Header().Get("X-Request-Id"))
	s.Equal(res.Header().Get("X-Request-Id"), ids[0])

	res = shttptest.RequestWithHeaders(r.Handler(), http.MethodGet, "/ping", nil, map[string]string{
		"X-Request-Id": "abc",
	})

	s.Equal("abc", res.Header().Get("X-Request-Id"))
	s.Equal("abc", ids[1])
	s.JSONEq(`{"ok":true}`, res.String())
}

func TestMiddlewares(t *testing.T) {
	suite.Run(t, &MiddlewaresSuite{})
}
