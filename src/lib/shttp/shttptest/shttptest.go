package shttptest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
)

// Response wraps httptest.ResponseRecorder
type Response struct {
	*httptest.ResponseRecorder
}

// String returns the response as a string.
func (r *Response) String() string {
	b := r.Byte()
	return strings.TrimSpace(string(b))
}

// Byte returns the response as an array of bytes.
func (r *Response) Byte() []byte {
	b, err := io.ReadAll(r.Body)

	if err != nil {
		panic(err)
	}

	return b
}

// Map decodes the JSON response into a map.
func (r *Response) Map() map[string]any {
	data := map[string]any{}

	if err := json.Unmarshal(r.Byte(), &data); err != nil {
		panic("Was expecting a JSON object response but could not decode it")
	}

	return data
}

// Request is used to test a generic endpoint.
func Request(h http.Handler, method, target string, body any) Response {
	return RequestWithHeaders(h, method, target, body, nil)
}

// RequestWithHeaders is used to test a generic endpoint. The body is JSON encoded.
func RequestWithHeaders(h http.Handler, method, target string, body any, headers map[string]string) Response {
	data, err := json.Marshal(body)

	if err != nil {
		panic("Was expecting to marshal request data but could not")
	}

	return RawRequest(h, method, target, data, headers)
}

// RawRequest sends the given bytes as-is. It is used to test malformed bodies.
func RawRequest(h http.Handler, method, target string, body []byte, headers map[string]string) Response {
	var httpBody io.Reader

	if body != nil {
		httpBody = bytes.NewReader(body)
	}

	httpHeaders := make(http.Header)

	for k, v := range headers {
		httpHeaders.Add(k, v)
	}

	if httpHeaders.Get("Content-Type") == "" {
		httpHeaders.Set("Content-Type", "application/json")
	}

	r := httptest.NewRequest(method, target, httpBody)
	w := httptest.NewRecorder()

	r.Header = httpHeaders

	h.ServeHTTP(w, r)
	return Response{w}
}
