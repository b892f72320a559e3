package discord

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/foliosite/folio/src/lib/errors"
	"github.com/foliosite/folio/src/lib/shttp"
)

type PayloadField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type PayloadEmbed struct {
	URL         string         `json:"url,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Timestamp   string         `json:"timestamp"` // ISO8601 format
	Fields      []PayloadField `json:"fields"`
}

// Payload represents a discord message payload. For more
// information see the following documentation:
// https://discord.com/developers/docs/resources/webhook#edit-webhook-message-jsonform-params
type Payload struct {
	Embeds []PayloadEmbed `json:"embeds"`
}

// Notify posts the payload to the given webhook. An empty webhook is a no-op.
func Notify(ctx context.Context, webhook string, payload Payload) error {
	if webhook == "" {
		return nil
	}

	headers := make(http.Header)
	headers.Add("Content-Type", "application/json")

	res, err := shttp.NewRequest(shttp.MethodPost, webhook).
		WithContext(ctx).
		WithTimeout(5*time.Second).
		WithExponentialBackoff(4*time.Second, 2).
		Headers(headers).
		Payload(payload).
		Do()

	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeExternal, "failed while posting a request to Discord")
	}

	if res == nil || res.Body == nil {
		return nil
	}

	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return errors.New(errors.ErrorTypeExternal, fmt.Sprintf("discord responded with status %d", res.StatusCode))
	}

	return nil
}
