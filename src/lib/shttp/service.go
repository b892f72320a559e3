package shttp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/foliosite/folio/src/lib/config"
	"github.com/foliosite/folio/src/lib/slog"
	"github.com/foliosite/folio/src/lib/tracking"
)

// ServiceFunc represents a service function signature.
type ServiceFunc func(r *Router) *Service

// RequestFunc represents a request function signature.
type RequestFunc func(*RequestContext) *Response

// Service is a service wrapper for the given endpoints.
type Service struct {
	router   *Router
	handlers map[string]RequestFunc
}

// NewEndpoint returns a new endpoint handler.
// The returned instance can be used to attach handlers to various endpoints.
func (s *Service) NewEndpoint(ep string) *ServiceEndpoint {
	return &ServiceEndpoint{
		service: s,
		prefix:  ep,
	}
}

// HandlerKeys returns the registered handler endpoints.
func (s *Service) HandlerKeys() []string {
	handlers := []string{}

	for k := range s.handlers {
		handlers = append(handlers, k)
	}

	sort.Strings(handlers)

	return handlers
}

// Router returns the associated router.
func (s *Service) Router() *Router {
	return s.router
}

// ServiceEndpoint is a handler for endpoints. It allows attaching
// handlers to various endpoints
type ServiceEndpoint struct {
	service *Service
	prefix  string
}

// Handler is a middleware for generic routes.
func (se *ServiceEndpoint) Handler(method, path string, handler RequestFunc) *ServiceEndpoint {
	endpoint := se.prefix + path

	se.service.router.mux.HandleFunc(
		endpoint,
		func(w http.ResponseWriter, r *http.Request) {
			req := requestContext(w, r)
			res := handler(req)
			se.Send(w, req, res)

			if res != nil && config.Get().Tracking.Prometheus {
				tracking.RecordResponseTime(r.Method, endpoint, res.Status, time.Since(req.StartTime))
			}
		},
	).Methods(method)

	if se.service.handlers == nil {
		se.service.handlers = map[string]RequestFunc{}
	}

	se.service.handlers[fmt.Sprintf("%s:%s", method, endpoint)] = handler

	return se
}

// Send sends a response to the client.
func (se *ServiceEndpoint) Send(w http.ResponseWriter, req *RequestContext, res *Response) {
	if res == nil {
		return
	}

	if res.Headers == nil {
		res.Headers = make(http.Header)
	}

	if res.Headers.Get("Content-Type") == "" {
		res.Headers.Set("Content-Type", "application/json")
	}

	for k, v := range res.Headers {
		for _, h := range v {
			w.Header().Add(k, h)
		}
	}

	if res.Status == 0 {
		res.Status = http.StatusOK
	}

	w.WriteHeader(res.Status)

	switch data := res.Data.(type) {
	case []byte:
		w.Write(data)

	case string:
		w.Write([]byte(data))

	case io.Reader:
		if _, err := io.Copy(w, data); err != nil {
			slog.Errorf("failed writing response body: path=%s err=%v", req.URL().Path, err)
		}

	default:
		if res.Data == nil {
			return
		}

		if err := json.NewEncoder(w).Encode(res.Data); err != nil {
			slog.Errorf("failed encoding response: path=%s err=%v", req.URL().Path, err)
		}
	}
}

func requestContext(w http.ResponseWriter, r *http.Request) *RequestContext {
	return &RequestContext{
		writer:    w,
		Request:   r,
		StartTime: time.Now(),
	}
}
