package mailer

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a single plain-text mail.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	Body    string

	// Date defaults to the current time.
	Date time.Time

	// MessageID defaults to a random id on the sender's domain.
	MessageID string
}

// Bytes renders the message in RFC 5322 format with CRLF line endings.
// The subject is RFC 2047 encoded and the body quoted-printable encoded,
// so user supplied values can never start a new header line.
func (m *Message) Bytes() ([]byte, error) {
	from, err := mail.ParseAddress(m.From)

	if err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", m.From, err)
	}

	to, err := mail.ParseAddress(m.To)

	if err != nil {
		return nil, fmt.Errorf("invalid to address %q: %w", m.To, err)
	}

	date := m.Date

	if date.IsZero() {
		date = time.Now()
	}

	id := m.MessageID

	if id == "" {
		id = fmt.Sprintf("<%s@%s>", uuid.NewString(), domain(from.Address))
	}

	var buf bytes.Buffer

	header := func(k, v string) {
		fmt.Fprintf(&buf, "%s: %s\r\n", k, v)
	}

	header("From", from.String())
	header("To", to.String())

	if m.ReplyTo != "" {
		replyTo, err := mail.ParseAddress(m.ReplyTo)

		if err != nil {
			return nil, fmt.Errorf("invalid reply-to address %q: %w", m.ReplyTo, err)
		}

		header("Reply-To", replyTo.String())
	}

	header("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	header("Date", date.Format(time.RFC1123Z))
	header("Message-ID", id)
	header("MIME-Version", "1.0")
	header("Content-Type", "text/plain; charset=utf-8")
	header("Content-Transfer-Encoding", "quoted-printable")
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)

	if _, err := qp.Write([]byte(normalizeNewlines(m.Body))); err != nil {
		return nil, err
	}

	if err := qp.Close(); err != nil {
		return nil, err
	}

	buf.WriteString("\r\n")

	return buf.Bytes(), nil
}

// Envelope returns the bare addresses used for MAIL FROM and RCPT TO.
func (m *Message) Envelope() (from, to string, err error) {
	f, err := mail.ParseAddress(m.From)

	if err != nil {
		return "", "", fmt.Errorf("invalid from address %q: %w", m.From, err)
	}

	t, err := mail.ParseAddress(m.To)

	if err != nil {
		return "", "", fmt.Errorf("invalid to address %q: %w", m.To, err)
	}

	return f.Address, t.Address, nil
}

func domain(address string) string {
	if i := strings.LastIndex(address, "@"); i >= 0 {
		return address[i+1:]
	}

	return "localhost"
}

func normalizeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
