package mailer_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/foliosite/folio/src/ce/api/mailer"
	"github.com/foliosite/folio/src/lib/testutils"
	"github.com/stretchr/testify/suite"
)

type SMTPTransportSuite struct {
	suite.Suite
	server *testutils.SMTPServerInstance
}

func (s *SMTPTransportSuite) BeforeTest(_, _ string) {
	s.server = testutils.SMTPServer("mailer", "secret", testutils.WithStartTLS())
}

func (s *SMTPTransportSuite) AfterTest(_, _ string) {
	s.server.Close()
}

func (s *SMTPTransportSuite) transport() *mailer.SMTPTransport {
	return &mailer.SMTPTransport{
		Host: s.server.Host(),
		Port: s.server.Port(),
		User: "mailer",
		Pass: "secret",

		TLSConfig: s.server.ClientTLSConfig(),
	}
}

func (s *SMTPTransportSuite) message() *mailer.Message {
	return &mailer.Message{
		From:    "noreply@folio.dev",
		To:      "owner@folio.dev",
		ReplyTo: "ann@example.com",
		Subject: "New portfolio contact from Ann",
		Body:    "From: Ann <ann@example.com>\n\nHello there, I need a website.",
	}
}

func (s *SMTPTransportSuite) Test_Send() {
	tr := s.transport()
	s.Equal("smtp", tr.Name())
	s.NoError(tr.Send(context.Background(), s.message()))

	mails := s.server.Mails()
	s.Len(mails, 1)
	s.Equal("noreply@folio.dev", mails[0].From)
	s.Equal([]string{"owner@folio.dev"}, mails[0].To)
	s.Equal("mailer", mails[0].AuthUser)
	s.True(mails[0].TLS)

	data := string(mails[0].Data)
	s.Contains(data, "Reply-To: <ann@example.com>\r\n")
	s.Contains(data, "Subject: New portfolio contact from Ann\r\n")
	s.Contains(data, "Hello there, I need a website.")
}

func (s *SMTPTransportSuite) Test_ImplicitTLS() {
	server := testutils.SMTPServer("mailer", "secret", testutils.WithImplicitTLS())
	defer server.Close()

	tr := &mailer.SMTPTransport{
		Host:        server.Host(),
		Port:        server.Port(),
		User:        "mailer",
		Pass:        "secret",
		ImplicitTLS: true,
		TLSConfig:   server.ClientTLSConfig(),
	}

	s.NoError(tr.Send(context.Background(), s.message()))

	mails := server.Mails()
	s.Len(mails, 1)
	s.True(mails[0].TLS)
	s.Equal("mailer", mails[0].AuthUser)
	s.Empty(s.server.Mails())
}

func (s *SMTPTransportSuite) Test_StartTLSNotOffered() {
	server := testutils.SMTPServer("mailer", "secret")
	defer server.Close()

	tr := &mailer.SMTPTransport{
		Host: server.Host(),
		Port: server.Port(),
		User: "mailer",
		Pass: "secret",
	}

	err := tr.Send(context.Background(), s.message())
	s.Error(err)
	s.Contains(err.Error(), "STARTTLS failed")
	s.Empty(server.Mails())
}

func (s *SMTPTransportSuite) Test_AllowPlain() {
	server := testutils.SMTPServer("mailer", "secret")
	defer server.Close()

	tr := &mailer.SMTPTransport{
		Host:       server.Host(),
		Port:       server.Port(),
		User:       "mailer",
		Pass:       "secret",
		AllowPlain: true,
	}

	s.NoError(tr.Send(context.Background(), s.message()))

	mails := server.Mails()
	s.Len(mails, 1)
	s.False(mails[0].TLS)
}

func (s *SMTPTransportSuite) Test_UntrustedCertificate() {
	tr := s.transport()
	tr.TLSConfig = nil

	err := tr.Send(context.Background(), s.message())
	s.Error(err)
	s.Contains(err.Error(), "certificate")
	s.Empty(s.server.Mails())
}

func (s *SMTPTransportSuite) Test_InvalidCredentials() {
	tr := s.transport()
	tr.Pass = "wrong"

	err := tr.Send(context.Background(), s.message())
	s.Error(err)
	s.Contains(err.Error(), "AUTH failed")
	s.Empty(s.server.Mails())
}

func (s *SMTPTransportSuite) Test_Rejected() {
	s.server.RejectData = &smtp.SMTPError{Code: 554, EnhancedCode: smtp.EnhancedCode{5, 7, 1}, Message: "rejected"}

	err := s.transport().Send(context.Background(), s.message())
	s.Error(err)
	s.True(strings.Contains(err.Error(), "rejected"))
}

func (s *SMTPTransportSuite) Test_ConnectionRefused() {
	tr := s.transport()
	s.server.Close()

	s.Error(tr.Send(context.Background(), s.message()))
}

func (s *SMTPTransportSuite) Test_Timeout() {
	s.server.Delay = 2 * time.Second

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err := s.transport().Send(ctx, s.message())
	s.Error(err)
	s.Less(time.Since(start), 2*time.Second)
}

func TestSMTPTransport(t *testing.T) {
	suite.Run(t, &SMTPTransportSuite{})
}
