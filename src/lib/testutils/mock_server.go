package testutils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockServerInstance represents a mock server instance.
type MockServerInstance struct {
	ts  *httptest.Server
	mux sync.Mutex

	// Responses holds the array of mock responses given the url.
	responses map[string]*MockResponse

	// OnClose is a list of listeners that will be trigger by the close function.
	onClose []func()
}

// MockResponse represents a mock response instance.
type MockResponse struct {
	Status        int
	Headers       http.Header
	Data          any
	DataText      string
	Method        string
	Expect        func(r *http.Request)
	NumberOfCalls int
}

// MockServer creates a new mock server instance. Requests without a
// registered response receive a 404.
func MockServer() *MockServerInstance {
	ms := &MockServerInstance{responses: map[string]*MockResponse{}}

	ms.ts = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ms.mux.Lock()
		res, ok := ms.responses[strings.ToUpper(r.Method)+" "+r.URL.Path]

		if ok {
			res.NumberOfCalls = res.NumberOfCalls + 1
		}

		ms.mux.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		if res.Expect != nil {
			res.Expect(r)
		}

		for k, v := range res.Headers {
			for _, h := range v {
				w.Header().Add(k, h)
			}
		}

		w.WriteHeader(res.Status)

		if res.Data != nil {
			json.NewEncoder(w).Encode(res.Data)
		} else if res.DataText != "" {
			w.Write([]byte(res.DataText))
		}
	}))

	return ms
}

// Close stops the server and runs the OnClose listeners. It panics when a
// registered response was never requested.
func (ms *MockServerInstance) Close() {
	ms.ts.Close()

	for _, c := range ms.onClose {
		c()
	}

	for key, res := range ms.responses {
		if res.NumberOfCalls == 0 {
			panic(fmt.Sprintf("Response for %s is not called", key))
		}
	}
}

// OnClose adds a new onClose listener.
func (ms *MockServerInstance) OnClose(fn func()) {
	ms.onClose = append(ms.onClose, fn)
}

// URL returns the mock server url.
func (ms *MockServerInstance) URL() string {
	return ms.ts.URL
}

// NewResponse adds a new mock response for the given path.
func (ms *MockServerInstance) NewResponse(path string, mr *MockResponse) {
	ms.mux.Lock()
	defer ms.mux.Unlock()

	if mr.Method == "" {
		mr.Method = http.MethodGet
	}

	ms.responses[strings.ToUpper(mr.Method)+" "+path] = mr
}

// Calls returns how many times the response for the given method and path was served.
func (ms *MockServerInstance) Calls(method, path string) int {
	ms.mux.Lock()
	defer ms.mux.Unlock()

	if res, ok := ms.responses[strings.ToUpper(method)+" "+path]; ok {
		return res.NumberOfCalls
	}

	return 0
}
