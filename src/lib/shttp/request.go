package shttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/foliosite/folio/src/lib/errors"
	"github.com/foliosite/folio/src/lib/slog"
)

// DefaultRequest replaces the requests created by NewRequest when set.
// It is used by tests to mock outgoing calls.
var DefaultRequest RequestInterface

// RequestInterface describes an outgoing http request.
type RequestInterface interface {
	URL(url string) RequestInterface
	Method(method string) RequestInterface
	Payload(payload any) RequestInterface
	Headers(headers http.Header) RequestInterface
	WithExponentialBackoff(maxDelay time.Duration, maxRetries int) RequestInterface
	WithTimeout(duration time.Duration) RequestInterface
	WithContext(ctx context.Context) RequestInterface
	Do() (*HTTPResponse, error)
}

// HTTPResponse is a wrapper around http.Response struct.
type HTTPResponse struct {
	*http.Response
}

// String returns the string representation of the response.
func (hr *HTTPResponse) String() string {
	b, _ := io.ReadAll(hr.Body)
	return string(b)
}

// Request represents an http request to be sent.
type Request struct {
	ctx                   context.Context
	timeout               time.Duration
	method                string
	payload               []byte
	headers               http.Header
	url                   string
	backoffCurrentDelay   time.Duration
	backoffMaxDelay       time.Duration
	backoffMaxRetries     int
	backoffCurrentAttempt int
}

// NewRequest returns a new request object.
func NewRequest(method, url string) RequestInterface {
	if DefaultRequest != nil {
		return DefaultRequest.URL(url).Method(method)
	}

	return &Request{
		ctx:     context.Background(),
		method:  method,
		url:     url,
		timeout: 10 * time.Second,
	}
}

// WithTimeout bounds the whole request, including reading the headers.
func (r *Request) WithTimeout(duration time.Duration) RequestInterface {
	r.timeout = duration
	return r
}

// WithContext binds the request to the given context.
func (r *Request) WithContext(ctx context.Context) RequestInterface {
	if ctx != nil {
		r.ctx = ctx
	}

	return r
}

// WithExponentialBackoff retries transport failures. Responses, whatever
// their status code, are never retried.
func (r *Request) WithExponentialBackoff(maxDelay time.Duration, maxRetries int) RequestInterface {
	r.backoffCurrentDelay = time.Second * 1
	r.backoffMaxDelay = maxDelay
	r.backoffMaxRetries = maxRetries
	return r
}

// Headers sets the request headers.
func (r *Request) Headers(headers http.Header) RequestInterface {
	r.headers = headers
	return r
}

// Payload sets the payload for the request.
func (r *Request) Payload(payload any) RequestInterface {
	r.payload, _ = toByteArray(payload)
	return r
}

// Method sets the request method.
func (r *Request) Method(method string) RequestInterface {
	r.method = method
	return r
}

// URL sets the request URL.
func (r *Request) URL(url string) RequestInterface {
	r.url = url
	return r
}

// Do triggers a request.
func (r *Request) Do() (*HTTPResponse, error) {
	req, err := http.NewRequestWithContext(r.ctx, r.method, r.url, bytes.NewBuffer(r.payload))

	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeExternal, fmt.Sprintf("failed to create HTTP request: method=%s url=%s", r.method, r.url))
	}

	if r.headers != nil {
		req.Header = r.headers
	}

	client := &http.Client{
		Timeout: r.timeout,
	}

	res, err := client.Do(req)

	if err == nil && res != nil {
		return &HTTPResponse{res}, nil
	}

	if r.ctx.Err() == nil && r.backoffCurrentDelay > 0 && r.backoffMaxRetries > r.backoffCurrentAttempt {
		r.backoffCurrentAttempt = r.backoffCurrentAttempt + 1
		r.backoffCurrentDelay = time.Duration(
			math.Min(
				float64(r.backoffMaxDelay),
				float64(r.backoffCurrentDelay)*math.Pow(2, float64(r.backoffCurrentAttempt)),
			),
		)

		slog.Infof("request failed, retrying in: %v, current retry: %d, endpoint: %s", r.backoffCurrentDelay, r.backoffCurrentAttempt, r.url)

		select {
		case <-time.After(r.backoffCurrentDelay):
			return r.Do()
		case <-r.ctx.Done():
		}
	}

	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeExternal, fmt.Sprintf("HTTP request failed: method=%s url=%s", r.method, r.url))
	}

	return nil, errors.New(errors.ErrorTypeExternal, fmt.Sprintf("response object is empty: method=%s url=%s", r.method, r.url))
}

// toByteArray casts the given interface value into an array of bytes.
func toByteArray(v any) ([]byte, error) {
	switch data := v.(type) {
	case io.Reader:
		return io.ReadAll(data)

	case string:
		return []byte(data), nil

	case []byte:
		return data, nil

	default:
		return json.Marshal(v)
	}
}
