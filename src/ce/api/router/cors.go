package router

import (
	"net/http"
	"regexp"
	"strings"
	"sync"

	"github.com/foliosite/folio/src/lib/config"
)

var hostsMux sync.Mutex

// AllowedHosts is the list of origin patterns that receive cors headers.
var AllowedHosts = []string{}

var AllowedHeaders = []string{
	"Content-Type",
	"Cache-Control",
	"X-Request-Id",
	"Access-Control-Request-Headers",
	"Access-Control-Request-Method",
}

var ExposedHeaders = []string{
	"X-Request-Id",
	"X-RateLimit-Limit",
	"X-RateLimit-Remaining",
	"X-RateLimit-Reset",
	"Retry-After",
}

var AllowedMethods = []string{
	"POST",
	"GET",
	"OPTIONS",
}

// Cors builds the allowed hosts from the configured origins. Origins are
// matched exactly, while development also accepts any localhost port.
func Cors() []string {
	hostsMux.Lock()
	defer hostsMux.Unlock()

	for _, origin := range config.Get().Contact.AllowedOrigins {
		AllowedHosts = append(AllowedHosts, "^"+regexp.QuoteMeta(strings.TrimSuffix(origin, "/"))+"$")
	}

	if config.IsDevelopment() {
		AllowedHosts = append(AllowedHosts,
			"^https?://localhost:[0-9]+$",
			"^https?://127\\.0\\.0\\.1:[0-9]+$",
		)
	}

	return AllowedHosts
}

// ResetCors clears the allowed hosts and re-applies the cors settings.
func ResetCors() {
	hostsMux.Lock()
	AllowedHosts = []string{}
	hostsMux.Unlock()

	Cors()
}

// WithTimeout bounds the time spent in a handler. Timed out requests
// receive a 503 with a json error body.
func WithTimeout(h http.Handler) http.Handler {
	th := http.TimeoutHandler(h, config.Get().HTTPTimeouts.HandlerTimeout, `{"error":"Request timed out."}`)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		th.ServeHTTP(&timeoutWriter{ResponseWriter: w}, r)
	})
}

type timeoutWriter struct {
	http.ResponseWriter
}

func (tw *timeoutWriter) WriteHeader(code int) {
	if code == http.StatusServiceUnavailable && tw.Header().Get("Content-Type") == "" {
		tw.Header().Set("Content-Type", "application/json")
	}

	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timeoutWriter) Unwrap() http.ResponseWriter {
	return tw.ResponseWriter
}

// WithCors enables cors headers for the api.
func WithCors(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		if origin != "" {
			for _, host := range AllowedHosts {
				if match, _ := regexp.MatchString(host, origin); !match {
					continue
				}

				w.Header().Add("Vary", "Origin")
				w.Header().Add("Access-Control-Allow-Origin", origin)
				w.Header().Add("Access-Control-Allow-Headers", strings.Join(AllowedHeaders, ","))
				w.Header().Add("Access-Control-Allow-Methods", strings.Join(AllowedMethods, ","))
				w.Header().Add("Access-Control-Expose-Headers", strings.Join(ExposedHeaders, ","))
				w.Header().Add("Access-Control-Max-Age", "86400")

				if r.Method == http.MethodOptions {
					w.WriteHeader(http.StatusOK)
					return
				}

				break
			}
		}

		// Otherwise continue
		h.ServeHTTP(w, r)
	})
}
