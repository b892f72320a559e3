package shttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/foliosite/folio/src/lib/errors"
)

// DefaultMaxBodyBytes is used by Post when no limit is set on the request.
const DefaultMaxBodyBytes int64 = 1 << 20

type ctxKey string

const requestIDKey ctxKey = "request-id"

// RequestContext is the context for the current request.
type RequestContext struct {
	*http.Request
	writer http.ResponseWriter

	// StartTime is the time when the request was first received.
	StartTime time.Time

	// MaxBodyBytes limits the number of bytes Post reads from the body.
	MaxBodyBytes int64
}

// NewRequestContext returns a new context object.
func NewRequestContext(req *http.Request) *RequestContext {
	if req == nil {
		req = &http.Request{}
	}

	return &RequestContext{
		Request:   req,
		StartTime: time.Now(),
	}
}

// Http methods
const (
	MethodPost    = http.MethodPost
	MethodGet     = http.MethodGet
	MethodPut     = http.MethodPut
	MethodDelete  = http.MethodDelete
	MethodOptions = http.MethodOptions
	MethodHead    = http.MethodHead
)

// SetWriter allows setting a different writer than http.ResponseWriter.
// It is mostly used for test purposes.
func (r *RequestContext) SetWriter(w http.ResponseWriter) {
	r.writer = w
}

// URL returns the current request's url.
func (r *RequestContext) URL() *url.URL {
	if r.Request == nil || r.Request.URL == nil {
		return &url.URL{}
	}

	return r.Request.URL
}

// RequestID returns the id assigned by the context handler, or an empty
// string when the request did not go through it.
func (r *RequestContext) RequestID() string {
	if r.Request == nil {
		return ""
	}

	return RequestIDFrom(r.Request.Context())
}

// RequestIDFrom extracts the request id from the given context.
func RequestIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}

	return ""
}

// Post reads the request body and decodes the JSON into out. Decoding
// errors, empty bodies and bodies larger than MaxBodyBytes are reported
// as errors.ErrorTypeMalformed.
func (r *RequestContext) Post(out any) error {
	if r.Request == nil || r.Request.Body == nil {
		return errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeMalformed, "request body is empty")
	}

	limit := r.MaxBodyBytes

	if limit <= 0 {
		limit = DefaultMaxBodyBytes
	}

	// Read one byte past the limit to detect oversized bodies.
	contents, err := io.ReadAll(io.LimitReader(r.Request.Body, limit+1))

	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeMalformed, fmt.Sprintf("failed to read request body: method=%s path=%s", r.Method, r.URL().Path))
	}

	defer func() {
		r.Request.Body = io.NopCloser(bytes.NewBuffer(contents))
	}()

	if int64(len(contents)) > limit {
		return errors.New(errors.ErrorTypeMalformed, fmt.Sprintf("request body exceeds %d bytes: method=%s path=%s", limit, r.Method, r.URL().Path))
	}

	if err = json.Unmarshal(contents, out); err != nil {
		return errors.Wrap(err, errors.ErrorTypeMalformed, fmt.Sprintf("failed to parse request JSON: method=%s path=%s", r.Method, r.URL().Path))
	}

	return nil
}
