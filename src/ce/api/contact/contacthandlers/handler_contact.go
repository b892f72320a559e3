package contacthandlers

import (
	"context"
	"net/http"
	"time"

	"github.com/foliosite/folio/src/ce/api/contact"
	"github.com/foliosite/folio/src/lib/config"
	"github.com/foliosite/folio/src/lib/shttp"
	"github.com/foliosite/folio/src/lib/shttp/limiter"
	"github.com/foliosite/folio/src/lib/slog"
	"github.com/foliosite/folio/src/lib/tracking"
	"go.uber.org/zap"
)

const (
	msgInvalidJSON      = "Invalid JSON body."
	msgValidationFailed = "Validation failed."
	msgRelayFailed      = "Failed to send message. Please try again later."
	msgReceived         = "Message received. If email delivery is configured, it has been forwarded."
)

// ContactResponse is the payload of a successful submission.
type ContactResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`

	relayed bool
}

// HandlerContact accepts a contact form submission. It runs after the
// rate limiter: the body is parsed, validated and relayed by mail.
func HandlerContact(req *shttp.RequestContext) *shttp.Response {
	var body any

	req.MaxBodyBytes = config.Get().Contact.MaxBodyBytes

	if err := req.Post(&body); err != nil {
		return shttp.BadRequest(msgInvalidJSON)
	}

	sub, verr := contact.Parse(body)

	if verr != nil {
		slog.Debug(slog.LogOpts{
			Msg:   "contact submission rejected",
			Level: slog.DL2,
			Payload: []zap.Field{
				zap.String("request_id", req.RequestID()),
				zap.Strings("fields", verr.Fields()),
			},
		})

		return shttp.ValidationError(msgValidationFailed, verr)
	}

	status, err := contact.DefaultRelay().Send(req.Context(), sub)

	if err != nil {
		slog.ErrorFields("contact relay failed",
			zap.String("request_id", req.RequestID()),
			zap.Error(err),
		)

		return shttp.UnexpectedError(err, msgRelayFailed)
	}

	if status == contact.RelaySent {
		if webhook := config.Get().Contact.DiscordWebhook; webhook != "" {
			go notify(context.WithoutCancel(req.Context()), webhook, sub)
		}
	}

	return &shttp.Response{
		Status: http.StatusOK,
		Data: ContactResponse{
			OK:      true,
			Message: msgReceived,
			relayed: status == contact.RelaySent,
		},
	}
}

// notify runs in the background once a submission is relayed. Failures
// are logged only.
var notify = func(ctx context.Context, webhook string, sub *contact.Submission) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := contact.Notify(ctx, webhook, sub); err != nil {
		slog.Errorf("failed to notify discord about contact submission: %v", err)
	}
}

// withOutcome records the outcome of every submission, including those
// rejected by the rate limiter, and logs one line per request.
func withOutcome(handler shttp.RequestFunc) shttp.RequestFunc {
	return func(req *shttp.RequestContext) *shttp.Response {
		res := handler(req)

		if res == nil {
			return res
		}

		outcome := outcomeOf(res)
		tracking.RecordSubmission(outcome)

		slog.InfoFields("contact submission",
			zap.String("request_id", req.RequestID()),
			zap.String("client", limiter.ClientID(req.Request)),
			zap.String("outcome", outcome),
			zap.Int("status", res.Status),
			zap.Duration("duration", time.Since(req.StartTime)),
		)

		return res
	}
}

func outcomeOf(res *shttp.Response) string {
	switch data := res.Data.(type) {
	case ContactResponse:
		if data.relayed {
			return tracking.OutcomeSent
		}

		return tracking.OutcomeSkipped

	case shttp.ErrorBody:
		switch {
		case res.Status == http.StatusTooManyRequests:
			return tracking.OutcomeRateLimited
		case res.Status >= http.StatusInternalServerError:
			return tracking.OutcomeFailed
		case data.Issues != nil:
			return tracking.OutcomeInvalid
		}

		return tracking.OutcomeMalformed
	}

	return "unknown"
}
