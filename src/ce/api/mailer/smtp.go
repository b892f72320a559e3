package mailer

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/foliosite/folio/src/lib/errors"
)

// SMTPTransport sends mails through an authenticated SMTP server.
type SMTPTransport struct {
	Host string
	Port string
	User string
	Pass string

	// ImplicitTLS wraps the connection in TLS from the start (port 465).
	// Otherwise the connection is upgraded with STARTTLS, which the server
	// must support.
	ImplicitTLS bool

	// AllowPlain skips the STARTTLS upgrade on non implicit connections.
	// Only meant for local mail catchers.
	AllowPlain bool

	// TLSConfig overrides the default TLS configuration.
	TLSConfig *tls.Config

	// DialTimeout bounds connecting when ctx has no earlier deadline.
	DialTimeout time.Duration
}

// Name implements the Transport interface.
func (t *SMTPTransport) Name() string {
	return "smtp"
}

// Send implements the Transport interface.
func (t *SMTPTransport) Send(ctx context.Context, msg *Message) error {
	from, to, err := msg.Envelope()

	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfiguration, "invalid envelope")
	}

	data, err := msg.Bytes()

	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to compose message")
	}

	conn, err := t.dial(ctx)

	if err != nil {
		return errors.Wrapf(err, errors.ErrorTypeExternal, "failed to connect to smtp server: addr=%s", t.addr())
	}

	// The deadline aborts any blocking read or write once ctx expires.
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return errors.Wrap(err, errors.ErrorTypeExternal, "failed to set connection deadline")
		}
	}

	stop := context.AfterFunc(ctx, func() {
		conn.SetDeadline(time.Now())
	})

	defer stop()

	c, err := t.client(conn)

	if err == nil {
		defer c.Close()
		err = t.send(c, from, to, data)
	}

	if err != nil {
		if ctx.Err() != nil {
			return errors.Wrapf(ctx.Err(), errors.ErrorTypeExternal, "smtp delivery aborted: %v", err)
		}

		return errors.Wrap(err, errors.ErrorTypeExternal, "smtp delivery failed")
	}

	return nil
}

// client greets the server and upgrades the connection with STARTTLS
// unless it is already encrypted or AllowPlain is set.
func (t *SMTPTransport) client(conn net.Conn) (*smtp.Client, error) {
	if t.ImplicitTLS || t.AllowPlain {
		return smtp.NewClient(conn), nil
	}

	c, err := smtp.NewClientStartTLS(conn, t.tlsConfig())

	if err != nil {
		return nil, fmt.Errorf("STARTTLS failed: %w", err)
	}

	return c, nil
}

func (t *SMTPTransport) send(c *smtp.Client, from, to string, data []byte) error {
	hostname, err := os.Hostname()

	if err != nil || hostname == "" {
		hostname = "localhost"
	}

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if t.User != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return fmt.Errorf("server does not support authentication")
		}

		if err := c.Auth(sasl.NewPlainClient("", t.User, t.Pass)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(from, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	if err := c.Rcpt(to, nil); err != nil {
		return fmt.Errorf("RCPT TO failed: %w", err)
	}

	wc, err := c.Data()

	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}

	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send email data: %w", err)
	}

	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	// The message is accepted at this point, a failing QUIT is not an error.
	_ = c.Quit()

	return nil
}

func (t *SMTPTransport) dial(ctx context.Context) (net.Conn, error) {
	timeout := t.DialTimeout

	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	dialer := &net.Dialer{Timeout: timeout}

	if t.ImplicitTLS {
		td := &tls.Dialer{NetDialer: dialer, Config: t.tlsConfig()}
		return td.DialContext(ctx, "tcp", t.addr())
	}

	return dialer.DialContext(ctx, "tcp", t.addr())
}

func (t *SMTPTransport) tlsConfig() *tls.Config {
	if t.TLSConfig != nil {
		return t.TLSConfig
	}

	return &tls.Config{
		ServerName: t.Host,
		MinVersion: tls.VersionTLS12,
	}
}

func (t *SMTPTransport) addr() string {
	return net.JoinHostPort(t.Host, t.Port)
}
