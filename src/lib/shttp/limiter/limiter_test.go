package limiter_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/foliosite/folio/src/lib/shttp/limiter"
)

func TestClientID_XForwardedFor(t *testing.T) {
	req := &http.Request{
		Header: http.Header{
			"X-Forwarded-For": []string{" 1.1.1.1, 10.0.0.1"},
			"X-Real-Ip":       []string{"2.2.2.2"},
		},
	}

	if id := limiter.ClientID(req); id != "1.1.1.1" {
		t.Fatalf("Was expecting id to be 1.1.1.1 but received: %s", id)
	}
}

func TestClientID_XRealIP(t *testing.T) {
	hdr := http.Header{}
	req := &http.Request{
		Header: hdr,
	}

	hdr.Set("X-Forwarded-For", " , 10.0.0.1")
	hdr.Set("X-Real-IP", "127.0.0.1")

	if id := limiter.ClientID(req); id != "127.0.0.1" {
		t.Fatalf("Was expecting id to be 127.0.0.1 but received: %s", id)
	}
}

func TestClientID_Fallback(t *testing.T) {
	req := &http.Request{
		Header:     http.Header{},
		RemoteAddr: "127.0.0.1:51234",
	}

	if id := limiter.ClientID(req); id != limiter.UnknownClient {
		t.Fatalf("Was expecting id to be %s but received: %s", limiter.UnknownClient, id)
	}

	if id := limiter.ClientID(nil); id != limiter.UnknownClient {
		t.Fatalf("Was expecting id to be %s but received: %s", limiter.UnknownClient, id)
	}
}

func TestDecision_RetryAfter(t *testing.T) {
	now := time.Now()
	d := &limiter.Decision{Allowed: false, Reset: now.Add(15 * time.Second)}

	if got := d.RetryAfter(now); got != 15*time.Second {
		t.Fatalf("Was expecting 15s but received: %s", got)
	}

	d.Allowed = true

	if got := d.RetryAfter(now); got != 0 {
		t.Fatalf("Was expecting 0 but received: %s", got)
	}
}
