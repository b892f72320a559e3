package shttp

import (
	"net/http"

	"github.com/foliosite/folio/src/lib/shttp/shttperr"
	"github.com/foliosite/folio/src/lib/slog"
)

// Response is the http response.
type Response struct {
	// Status is the status code.
	Status int

	// Data is the payload to return.
	// Strings and byte slices are written as-is, everything else is JSON encoded.
	Data any

	// Headers are the response headers.
	Headers http.Header

	// Error is the error that will be logged. It is never sent to the client.
	Error error
}

// ErrorBody is the payload of every failed response.
type ErrorBody struct {
	Error  string            `json:"error"`
	Issues map[string]string `json:"issues,omitempty"`
}

// OK returns an ok response.
func OK() *Response {
	return &Response{
		Status: http.StatusOK,
		Data: map[string]bool{
			"ok": true,
		},
	}
}

// BadRequest returns a 400 response with the given message.
func BadRequest(msg string) *Response {
	return &Response{
		Status: http.StatusBadRequest,
		Data:   ErrorBody{Error: msg},
	}
}

// TooManyRequests returns a 429 response with the given message.
func TooManyRequests(msg string) *Response {
	return &Response{
		Status: http.StatusTooManyRequests,
		Data:   ErrorBody{Error: msg},
	}
}

// ValidationError returns a 400 response listing the field issues.
func ValidationError(msg string, verr *shttperr.ValidationError) *Response {
	body := ErrorBody{Error: msg, Issues: map[string]string{}}

	if verr != nil {
		for k, v := range verr.Errors {
			body.Issues[k] = v
		}
	}

	return &Response{
		Status: http.StatusBadRequest,
		Data:   body,
	}
}

// UnexpectedError logs the error and returns a generic 500 response.
// The error itself is never exposed to the client.
func UnexpectedError(err error, msg string) *Response {
	if err != nil {
		slog.Errorf("http response error: %s", err.Error())
	}

	return &Response{
		Status: http.StatusInternalServerError,
		Error:  err,
		Data:   ErrorBody{Error: msg},
	}
}
