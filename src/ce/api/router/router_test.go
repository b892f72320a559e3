package router_test

import (
	"net/http"
	"testing"

	"github.com/foliosite/folio/src/ce/api/contact/contacthandlers"
	"github.com/foliosite/folio/src/ce/api/router"
	"github.com/foliosite/folio/src/ce/api/status"
	"github.com/foliosite/folio/src/lib/config"
	"github.com/foliosite/folio/src/lib/shttp"
	"github.com/foliosite/folio/src/lib/shttp/shttptest"
	"github.com/stretchr/testify/suite"
)

type RouterSuite struct {
	suite.Suite
}

func (s *RouterSuite) BeforeTest(_, _ string) {
	config.Reset()
	router.AllowedHosts = []string{}
}

func (s *RouterSuite) Test_Services() {
	handler := router.Get().WithContext().Handler()

	res := shttptest.Request(handler, shttp.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, res.Code)
	s.NotEmpty(res.Header().Get("X-Request-Id"))

	res = shttptest.RequestWithHeaders(handler, shttp.MethodPost, "/api/contact", map[string]any{"name": ""}, map[string]string{
		"X-Forwarded-For": "10.10.10.10",
	})

	s.Equal(http.StatusBadRequest, res.Code)
	s.Equal("5", res.Header().Get("X-RateLimit-Limit"))
}

func (s *RouterSuite) Test_Endpoints() {
	r := shttp.NewRouter()

	s.Equal([]string{"GET:/", "GET:/health", "HEAD:/"}, r.RegisterService(status.Services).HandlerKeys())
	s.Equal([]string{"POST:/api/contact"}, r.RegisterService(contacthandlers.Services).HandlerKeys())
}

func TestRouter(t *testing.T) {
	suite.Run(t, &RouterSuite{})
}
