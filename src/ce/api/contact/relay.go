package contact

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/foliosite/folio/src/ce/api/mailer"
	"github.com/foliosite/folio/src/lib/config"
	"github.com/foliosite/folio/src/lib/errors"
	"github.com/foliosite/folio/src/lib/slog"
	"github.com/foliosite/folio/src/lib/tracking"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RelayStatus describes what the relay did with a submission.
type RelayStatus string

const (
	// RelaySent means the transport accepted the message.
	RelaySent RelayStatus = "sent"

	// RelaySkipped means mail delivery is not configured or disabled.
	RelaySkipped RelayStatus = "skipped"
)

// NewTransport creates the transport for the given configuration.
// Tests replace it to capture outgoing messages.
var NewTransport = DefaultTransport

// DefaultTransport returns the smtp or ses transport selected by cnf.
func DefaultTransport(ctx context.Context, cnf *config.MailerConfig) (mailer.Transport, error) {
	switch cnf.Transport {
	case config.TransportSMTP:
		return &mailer.SMTPTransport{
			Host:        cnf.Host,
			Port:        cnf.Port,
			User:        cnf.User,
			Pass:        cnf.Pass,
			ImplicitTLS: cnf.ImplicitTLS(),
			AllowPlain:  cnf.AllowPlain,
		}, nil
	case config.TransportSES:
		return mailer.NewSESTransport(ctx, mailer.SESConfig{
			Region:          cnf.Region,
			AccessKeyID:     cnf.SESAccessKeyID,
			SecretAccessKey: cnf.SESSecretAccessKey,
		})
	default:
		return nil, errors.Wrapf(errors.ErrUnknownTransport, errors.ErrorTypeConfiguration, "transport=%s", cnf.Transport)
	}
}

// Relay forwards validated submissions to the site owner's mailbox.
type Relay struct {
	timeout  time.Duration
	throttle *rate.Limiter
}

var (
	_relay *Relay
	_rmux  sync.Mutex
)

// DefaultRelay returns the process wide relay configured from config.Get().
func DefaultRelay() *Relay {
	_rmux.Lock()
	defer _rmux.Unlock()

	if _relay == nil {
		conf := config.Get().Contact
		_relay = NewRelay(conf.RelayTimeout, conf.MailsPerMinute)
	}

	return _relay
}

// ResetDefaultRelay drops the process wide relay. Used by tests.
func ResetDefaultRelay() {
	_rmux.Lock()
	_relay = nil
	_rmux.Unlock()
}

// NewRelay returns a relay bounding every send by timeout and the overall
// throughput by mailsPerMinute. A non-positive mailsPerMinute disables
// the throttle.
func NewRelay(timeout time.Duration, mailsPerMinute int) *Relay {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	throttle := rate.NewLimiter(rate.Inf, 0)

	if mailsPerMinute > 0 {
		throttle = rate.NewLimiter(rate.Every(time.Minute/time.Duration(mailsPerMinute)), mailsPerMinute)
	}

	return &Relay{
		timeout:  timeout,
		throttle: throttle,
	}
}

// Send relays the submission using the mail configuration found in the
// environment at the time of the call. When the configuration is
// incomplete the submission is skipped and no error is returned, unless
// CONTACT_MAILER_ENABLED=true demands delivery.
func (r *Relay) Send(ctx context.Context, sub *Submission) (RelayStatus, error) {
	cnf := config.Mailer()

	if cnf.Enabled != nil && !*cnf.Enabled {
		return RelaySkipped, nil
	}

	if missing := cnf.Missing(); len(missing) > 0 {
		if cnf.Enabled != nil && *cnf.Enabled {
			return "", errors.Wrapf(errors.ErrMailerNotConfigured, errors.ErrorTypeConfiguration, "missing=%s", strings.Join(missing, ","))
		}

		slog.Debug(slog.LogOpts{
			Msg:   "mail delivery is not configured, skipping relay",
			Level: slog.DL1,
			Payload: []zap.Field{
				zap.Strings("missing", missing),
			},
		})

		return RelaySkipped, nil
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	transport, err := NewTransport(ctx, cnf)

	if err != nil {
		return "", err
	}

	if err := r.throttle.Wait(ctx); err != nil {
		return "", errors.Wrap(err, errors.ErrorTypeExternal, "outgoing mail throttle")
	}

	start := time.Now()
	err = transport.Send(ctx, Compose(cnf, sub))
	tracking.RecordRelay(transport.Name(), err, time.Since(start))

	if err != nil {
		return "", err
	}

	return RelaySent, nil
}

// Compose builds the notification mail for a submission.
func Compose(cnf *config.MailerConfig, sub *Submission) *mailer.Message {
	return &mailer.Message{
		From:    cnf.From,
		To:      cnf.To,
		ReplyTo: sub.Email,
		Subject: fmt.Sprintf("New portfolio contact from %s", sub.Name),
		Body:    fmt.Sprintf("From: %s <%s>\n\n%s", sub.Name, sub.Email, sub.Message),
	}
}
